package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Categories written by the learning engine. They double as the journey entry type.
const (
	CategoryReading      = "tarot_reading"
	CategoryConversation = "conversation_learning"
	CategoryInsight      = "personalization_insight"
	CategoryGeneral      = "general_memory"
)

// Note is a portable record of one past interaction.
// Content always holds a JSON encoded Payload.
type Note struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Keywords  []string  `json:"keywords,omitempty"`
	Context   string    `json:"context,omitempty"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Payload is the structured content of a Note. A reading note carries the first three
// sections, a conversation note the next two and a question note the last two.
type Payload struct {
	ReadingSummary    *ReadingSummary    `json:"reading_summary,omitempty"`
	InteractionData   *InteractionData   `json:"interaction_data,omitempty"`
	LearningInsights  *LearningInsights  `json:"learning_insights,omitempty"`
	ConversationData  *ConversationData  `json:"conversation_data,omitempty"`
	EngagementMetrics *EngagementMetrics `json:"engagement_metrics,omitempty"`
	QuestionData      *QuestionData      `json:"question_data,omitempty"`
	InsightAnalysis   *InsightAnalysis   `json:"insight_analysis,omitempty"`
}

type ReadingSummary struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	SpreadType       string    `json:"spread_type"`
	Cards            []string  `json:"cards"`
	Narrative        string    `json:"narrative,omitempty"`
	Guidance         string    `json:"guidance,omitempty"`
	SpiritualInsight string    `json:"spiritual_insight,omitempty"`
}

// Feedback is the user's optional verdict on a reading.
type Feedback struct {
	Rating       int      `json:"rating,omitempty" validate:"gte=0,lte=5"`
	HelpfulCards []string `json:"helpful_cards,omitempty"`
	SessionNotes string   `json:"session_notes,omitempty"`
}

type InteractionData struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Reader    string    `json:"reader"`
	Feedback  *Feedback `json:"feedback"`
}

type LearningInsights struct {
	ThemesIdentified       []string `json:"themes_identified"`
	CardCombinations       []string `json:"card_combinations"`
	InterpretationQuality  float64  `json:"interpretation_quality"`
	PersonalizationApplied bool     `json:"personalization_applied"`
}

// RevealedCard summarizes the card shown during a conversation turn.
type RevealedCard struct {
	Card           string `json:"card"`
	Interpretation string `json:"interpretation,omitempty"`
}

type ConversationData struct {
	UserID            string        `json:"user_id"`
	SessionID         string        `json:"session_id"`
	TurnNumber        int           `json:"turn_number"`
	ConversationState string        `json:"conversation_state"`
	Dialogue          string        `json:"dialogue"`
	UserResponse      string        `json:"user_response,omitempty"`
	RevealedCard      *RevealedCard `json:"revealed_card,omitempty"`
}

type EngagementMetrics struct {
	DialogueLength  int    `json:"dialogue_length"`
	HasUserResponse bool   `json:"has_user_response"`
	ResponseQuality string `json:"response_quality,omitempty"`
}

type QuestionData struct {
	UserID       string `json:"user_id"`
	SessionID    string `json:"session_id"`
	Question     string `json:"question"`
	Response     string `json:"response"`
	QuestionType string `json:"question_type"`
	RelatedCard  string `json:"related_card,omitempty"`
}

type InsightAnalysis struct {
	ResponseSentiment string   `json:"response_sentiment"`
	InsightValue      bool     `json:"insight_value"`
	PotentialThemes   []string `json:"potential_themes"`
}

var ErrEmptyContent = errors.New("memory: empty note content")

// Encode serializes the payload into note content.
func (p *Payload) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}
	return string(data), nil
}

// ParsePayload decodes note content produced by Encode.
func ParsePayload(content string) (*Payload, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	var p Payload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return &p, nil
}

// Parsed pairs a note with its decoded payload.
type Parsed struct {
	Note    Note
	Payload *Payload
}

// ParseAll decodes every note, dropping the ones whose content is not a valid payload.
func ParseAll(notes []Note) []Parsed {
	parsed := make([]Parsed, 0, len(notes))
	for _, n := range notes {
		p, err := ParsePayload(n.Content)
		if err != nil {
			continue // skip malformed entries
		}
		parsed = append(parsed, Parsed{Note: n, Payload: p})
	}
	return parsed
}
