package learning

import (
	"sync"
	"time"

	"github.com/mystic-arcana/oracle/internal/memory"
	"github.com/mystic-arcana/oracle/internal/signals"
)

type EventType string

const (
	EventReadingCompleted    EventType = "reading_completed"
	EventConversationTurn    EventType = "conversation_turn"
	EventUserResponse        EventType = "user_response"
	EventCardRevealed        EventType = "card_revealed"
	EventQuestionAnswered    EventType = "question_answered"
	EventInteractiveResponse EventType = "interactive_response"
)

// EventContext carries the cross-cutting attributes used for pattern analysis.
type EventContext struct {
	SpreadType            string   `json:"spread_type"`
	CardsDrawn            []string `json:"cards_drawn"`
	InterpretationQuality float64  `json:"interpretation_quality,omitempty"`
	UserSatisfaction      int      `json:"user_satisfaction,omitempty"`
	ConversationState     string   `json:"conversation_state,omitempty"`
	TurnNumber            int      `json:"turn_number,omitempty"`
}

// Event is an immutable record of one interaction.
type Event struct {
	Type      EventType    `json:"event_type"`
	UserID    string       `json:"user_id"`
	SessionID string       `json:"session_id"`
	Data      any          `json:"data"`
	Timestamp time.Time    `json:"timestamp"`
	Context   EventContext `json:"context"`
}

type ReadingData struct {
	ReadingID           string           `json:"reading_id"`
	Cards               []string         `json:"cards"`
	SpreadType          string           `json:"spread_type"`
	NarrativeLength     int              `json:"narrative_length"`
	InterpretationCount int              `json:"interpretation_count"`
	Feedback            *memory.Feedback `json:"feedback,omitempty"`
}

type TurnData struct {
	ConversationState string               `json:"conversation_state"`
	TurnNumber        int                  `json:"turn_number"`
	Dialogue          string               `json:"dialogue"`
	UserResponse      string               `json:"user_response,omitempty"`
	RevealedCard      *memory.RevealedCard `json:"revealed_card,omitempty"`
	DialogueLength    int                  `json:"dialogue_length"`
	HasUserResponse   bool                 `json:"has_user_response"`
}

type ResponseData struct {
	ResponseText        string                `json:"response_text"`
	ResponseLength      int                   `json:"response_length"`
	OptionsCount        int                   `json:"options_count"`
	ResponseTimeMs      int                   `json:"response_time_ms,omitempty"`
	ResponseStyle       signals.ResponseStyle `json:"response_style"`
	SelectedFromOptions bool                  `json:"selected_from_options"`
}

type CardRevealData struct {
	CardName        string                  `json:"card_name"`
	CardIndex       int                     `json:"card_index"`
	EngagementLevel signals.EngagementLevel `json:"engagement_level"`
	Metrics         signals.CardMetrics     `json:"interaction_metrics"`
}

type QuestionData struct {
	Question        string            `json:"question"`
	Response        string            `json:"response"`
	QuestionType    string            `json:"question_type"`
	RelatedCard     string            `json:"related_card,omitempty"`
	Sentiment       signals.Sentiment `json:"response_sentiment"`
	ProvidesInsight bool              `json:"provides_new_insight"`
}

type InteractiveData struct {
	CardIndex int              `json:"card_index"`
	Card      string           `json:"card"`
	Question  string           `json:"question,omitempty"`
	Answer    string           `json:"answer"`
	Feedback  *memory.Feedback `json:"feedback"`
}

// Queue is the append-only, process-lifetime log of learning events.
type Queue struct {
	mu     sync.RWMutex
	events []Event
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Append(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, ev)
}

func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.events)
}

// Snapshot returns a copy of all events in append order.
func (q *Queue) Snapshot() []Event {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]Event, len(q.events))
	copy(out, q.events)
	return out
}

// Since returns the events of userID recorded strictly after t.
func (q *Queue) Since(userID string, t time.Time) []Event {
	q.mu.RLock()
	defer q.mu.RUnlock()
	var out []Event
	for _, ev := range q.events {
		if ev.UserID == userID && ev.Timestamp.After(t) {
			out = append(out, ev)
		}
	}
	return out
}
