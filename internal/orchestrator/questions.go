package orchestrator

import (
	"fmt"

	"github.com/mystic-arcana/oracle/internal/tarot"
)

// Choice is a selectable answer offered with a turn.
type Choice struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

func choice(value, text string) Choice {
	return Choice{ID: value, Text: text, Value: value}
}

// Question is put to the user after a card has been interpreted.
type Question struct {
	Question string   `json:"question"`
	Options  []Choice `json:"options"`
	Theme    string   `json:"theme"`
}

var cardQuestions = map[string]Question{
	"The Hermit": {
		Question: "Does this card's theme of introspection deeply resonate with you right now?",
		Options:  []Choice{choice("deeply", "Yes, deeply"), choice("somewhat", "Somewhat"), choice("not_at_all", "Not at all")},
		Theme:    "introspection",
	},
	"The Tower": {
		Question: "Are you currently experiencing or anticipating significant changes in your life?",
		Options:  []Choice{choice("major_changes", "Yes, major changes"), choice("small_shifts", "Small shifts only"), choice("stable_period", "Life feels stable")},
		Theme:    "transformation",
	},
	"The Star": {
		Question: "How connected do you feel to your sense of hope and inspiration lately?",
		Options:  []Choice{choice("very_connected", "Very connected"), choice("seeking_hope", "Seeking more hope"), choice("feeling_lost", "Feeling a bit lost")},
		Theme:    "hope",
	},
	"Ace of Swords": {
		Question: "Are you experiencing new clarity or breakthrough thoughts recently?",
		Options:  []Choice{choice("clear_breakthrough", "Yes, clear breakthroughs"), choice("some_clarity", "Some new clarity"), choice("still_confused", "Still seeking clarity")},
		Theme:    "clarity",
	},
}

// QuestionFor returns the card's own question, or a generic one by arcana.
func QuestionFor(card tarot.Card) Question {
	if q, ok := cardQuestions[card.Name]; ok {
		return q
	}
	if card.Arcana == tarot.ArcanaMajor {
		return Question{
			Question: fmt.Sprintf("How strongly does the spiritual message of %s speak to your current life situation?", card.Name),
			Options:  []Choice{choice("very_relevant", "Very relevant"), choice("somewhat_relevant", "Somewhat relevant"), choice("exploring", "Still exploring this")},
			Theme:    "spiritual_relevance",
		}
	}
	return Question{
		Question: fmt.Sprintf("Does the practical guidance of %s align with your current needs?", card.Name),
		Options:  []Choice{choice("perfectly_aligned", "Perfectly aligned"), choice("partially_helpful", "Partially helpful"), choice("need_different_guidance", "Need different guidance")},
		Theme:    "practical_alignment",
	}
}

var answerResponses = map[string]string{
	"deeply":                  "I feel the deep resonance between your soul and this card's message. This alignment suggests you are truly ready to receive its wisdom.",
	"somewhat":                "The subtle connection you feel is the beginning of understanding. Sometimes wisdom reveals itself gradually.",
	"not_at_all":              "Even when a card's message seems distant, it often carries seeds of truth that will bloom when the time is right.",
	"major_changes":           "Your awareness of these changes shows you are consciously participating in your transformation journey.",
	"small_shifts":            "Small shifts often herald greater changes to come. You are being prepared gently.",
	"stable_period":           "Stability creates the foundation from which meaningful growth can emerge when you are ready.",
	"very_connected":          "Your strong connection to hope is a precious gift that will guide you through any challenge.",
	"seeking_hope":            "The very act of seeking hope is itself a form of hope. You are closer than you think.",
	"feeling_lost":            "In moments of feeling lost, we are actually being called to discover new directions. Trust the process.",
	"clear_breakthrough":      "These breakthroughs are gifts from your higher wisdom. Honor them by taking inspired action.",
	"some_clarity":            "Some new clarity builds upon the last. You are gathering the pieces of a greater understanding.",
	"still_confused":          "Confusion often precedes the greatest insights. Be patient with yourself as clarity emerges.",
	"very_relevant":           "This strong relevance indicates you are in perfect alignment with this card's timing and message.",
	"somewhat_relevant":       "The partial relevance suggests there are layers of meaning yet to be discovered.",
	"exploring":               "Your willingness to explore shows an open heart. This is where wisdom enters.",
	"perfectly_aligned":       "Perfect alignment is a rare gift. Trust this guidance completely.",
	"partially_helpful":       "Partial help often leads to complete understanding as you integrate the wisdom.",
	"need_different_guidance": "Sometimes we need to hear what we don't expect to find what we truly need.",
}

const defaultAnswerResponse = "Your response reveals the unique way you process wisdom. This itself is valuable insight."

// ResponseTo acknowledges an answer to an interactive question.
func ResponseTo(answer string) string {
	if r, ok := answerResponses[answer]; ok {
		return r
	}
	return defaultAnswerResponse
}
