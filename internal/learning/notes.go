package learning

import (
	"fmt"
	"strings"
	"time"

	"github.com/mystic-arcana/oracle/internal/memory"
	"github.com/mystic-arcana/oracle/internal/signals"
	"github.com/mystic-arcana/oracle/internal/tarot"
)

// ReadingQuality scores a completed reading in [0, 1] from its depth and interpretation confidence.
func ReadingQuality(r *tarot.Reading) float64 {
	quality := 0.5
	if len(r.Narrative) > 500 {
		quality += 0.2
	}
	if len(r.CardInterpretations) > 2 {
		quality += 0.1
	}
	if n := len(r.CardInterpretations); n > 0 {
		var sum float64
		for _, in := range r.CardInterpretations {
			sum += in.ConfidenceScore
		}
		quality += sum / float64(n) * 0.2
	}
	return min(quality, 1.0)
}

func personalizationApplied(r *tarot.Reading) bool {
	for _, in := range r.CardInterpretations {
		if in.ConfidenceScore > 0.8 {
			return true
		}
	}
	return false
}

func cardTag(name string) string {
	return "card_" + tarot.Slug(name)
}

func readingNote(reader, userID string, r *tarot.Reading, fb *memory.Feedback, now time.Time) (memory.Note, error) {
	cards := tarot.CardNames(r.Context.Cards)
	spread := string(r.Context.SpreadType)
	themes := signals.ExtractThemes(r.Narrative + " " + r.OverallGuidance)
	readerKey := strings.ToLower(reader)

	payload := memory.Payload{
		ReadingSummary: &memory.ReadingSummary{
			ID:               r.ID,
			SessionID:        r.Context.SessionID,
			Timestamp:        r.CreatedAt,
			SpreadType:       spread,
			Cards:            cards,
			Narrative:        r.Narrative,
			Guidance:         r.OverallGuidance,
			SpiritualInsight: r.SpiritualInsight,
		},
		InteractionData: &memory.InteractionData{
			UserID:    userID,
			SessionID: r.Context.SessionID,
			Reader:    readerKey,
			Feedback:  fb,
		},
		LearningInsights: &memory.LearningInsights{
			ThemesIdentified:       themes,
			CardCombinations:       signals.CardCombinations(cards),
			InterpretationQuality:  ReadingQuality(r),
			PersonalizationApplied: personalizationApplied(r),
		},
	}
	content, err := payload.Encode()
	if err != nil {
		return memory.Note{}, err
	}

	keywords := make([]string, 0, len(cards)+len(themes)+3)
	for _, c := range cards {
		keywords = append(keywords, tarot.Slug(c))
	}
	keywords = append(keywords, "spread_"+spread)
	keywords = append(keywords, themes...)
	keywords = append(keywords, readerKey+"_reading", "tarot_session")

	tags := []string{"user_interaction", "reading_completed", readerKey + "_session", "spread_" + spread}
	for i, c := range cards {
		if i == 3 {
			break
		}
		tags = append(tags, cardTag(c))
	}

	return memory.Note{
		UserID:    userID,
		Content:   content,
		Keywords:  keywords,
		Context:   fmt.Sprintf("Tarot reading session with %s for %s spread", reader, spread),
		Category:  memory.CategoryReading,
		Tags:      tags,
		Timestamp: now,
	}, nil
}

func conversationNote(reader string, ev Event, d TurnData) (memory.Note, error) {
	readerKey := strings.ToLower(reader)
	var quality string
	if d.UserResponse != "" {
		quality = string(signals.AnalyzeResponseStyle(d.UserResponse))
	}
	payload := memory.Payload{
		ConversationData: &memory.ConversationData{
			UserID:            ev.UserID,
			SessionID:         ev.SessionID,
			TurnNumber:        d.TurnNumber,
			ConversationState: d.ConversationState,
			Dialogue:          d.Dialogue,
			UserResponse:      d.UserResponse,
			RevealedCard:      d.RevealedCard,
		},
		EngagementMetrics: &memory.EngagementMetrics{
			DialogueLength:  d.DialogueLength,
			HasUserResponse: d.HasUserResponse,
			ResponseQuality: quality,
		},
	}
	content, err := payload.Encode()
	if err != nil {
		return memory.Note{}, err
	}

	keywords := []string{
		"conversation_turn",
		"state_" + d.ConversationState,
		fmt.Sprintf("turn_%d", d.TurnNumber),
	}
	if d.RevealedCard != nil && d.RevealedCard.Card != "" {
		keywords = append(keywords, cardTag(d.RevealedCard.Card))
	}
	keywords = append(keywords, readerKey+"_interaction")

	return memory.Note{
		UserID:    ev.UserID,
		Content:   content,
		Keywords:  keywords,
		Context:   fmt.Sprintf("Conversation turn %d in state %s", d.TurnNumber, d.ConversationState),
		Category:  memory.CategoryConversation,
		Tags:      []string{"real_time_learning", "conversation_turn", readerKey + "_interaction"},
		Timestamp: ev.Timestamp,
	}, nil
}

func questionNote(ev Event, d QuestionData) (memory.Note, error) {
	payload := memory.Payload{
		QuestionData: &memory.QuestionData{
			UserID:       ev.UserID,
			SessionID:    ev.SessionID,
			Question:     d.Question,
			Response:     d.Response,
			QuestionType: d.QuestionType,
			RelatedCard:  d.RelatedCard,
		},
		InsightAnalysis: &memory.InsightAnalysis{
			ResponseSentiment: string(d.Sentiment),
			InsightValue:      d.ProvidesInsight,
			PotentialThemes:   signals.ExtractThemes(d.Response),
		},
	}
	content, err := payload.Encode()
	if err != nil {
		return memory.Note{}, err
	}

	keywords := []string{"interactive_question", "type_" + d.QuestionType}
	if d.RelatedCard != "" {
		keywords = append(keywords, cardTag(d.RelatedCard))
	}
	keywords = append(keywords, "user_insight")

	return memory.Note{
		UserID:    ev.UserID,
		Content:   content,
		Keywords:  keywords,
		Context:   fmt.Sprintf("Interactive question of type %s", d.QuestionType),
		Category:  memory.CategoryInsight,
		Tags:      []string{"interactive_learning", "user_insight", "personalization_data"},
		Timestamp: ev.Timestamp,
	}, nil
}

func interactiveNote(reader string, ev Event, d InteractiveData) (memory.Note, error) {
	readerKey := strings.ToLower(reader)
	payload := memory.Payload{
		InteractionData: &memory.InteractionData{
			UserID:    ev.UserID,
			SessionID: ev.SessionID,
			Reader:    readerKey,
			Feedback:  d.Feedback,
		},
		QuestionData: &memory.QuestionData{
			UserID:       ev.UserID,
			SessionID:    ev.SessionID,
			Question:     d.Question,
			Response:     d.Answer,
			QuestionType: "interactive",
			RelatedCard:  d.Card,
		},
		InsightAnalysis: &memory.InsightAnalysis{
			ResponseSentiment: string(signals.AnalyzeResponseSentiment(d.Answer)),
			InsightValue:      signals.AssessInsightValue(d.Answer),
			PotentialThemes:   signals.ExtractThemes(d.Answer),
		},
	}
	content, err := payload.Encode()
	if err != nil {
		return memory.Note{}, err
	}
	return memory.Note{
		UserID:    ev.UserID,
		Content:   content,
		Keywords:  []string{"interactive_response", cardTag(d.Card), readerKey + "_interaction"},
		Context:   fmt.Sprintf("Interactive response for card %d (%s)", d.CardIndex+1, d.Card),
		Category:  memory.CategoryInsight,
		Tags:      []string{"interactive_learning", "user_interaction", readerKey + "_session"},
		Timestamp: ev.Timestamp,
	}, nil
}
