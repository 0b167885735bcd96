package tarot

import "time"

// ReadingContext describes who asked for a reading and what was drawn.
// An empty UserID denotes a guest.
type ReadingContext struct {
	SessionID  string     `json:"session_id"`
	UserID     string     `json:"user_id,omitempty"`
	SpreadType SpreadType `json:"spread_type" validate:"required"`
	Question   string     `json:"question,omitempty"`
	Cards      []Card     `json:"cards,omitempty"`
}

// Interpretation is the personalized guidance produced for one card.
type Interpretation struct {
	BaseInterpretation   string   `json:"base_interpretation"`
	PersonalizedGuidance string   `json:"personalized_guidance"`
	SpiritualWisdom      string   `json:"spiritual_wisdom"`
	PracticalAdvice      string   `json:"practical_advice"`
	ReaderNotes          string   `json:"reader_notes"`
	ConfidenceScore      float64  `json:"confidence_score"`
	SourceReferences     []string `json:"source_references"`
}

// Reading is the complete synthesized output of a session.
type Reading struct {
	ID                  string           `json:"id"`
	Narrative           string           `json:"narrative"`
	CardInterpretations []Interpretation `json:"card_interpretations"`
	OverallGuidance     string           `json:"overall_guidance"`
	SpiritualInsight    string           `json:"spiritual_insight"`
	ReaderSignature     string           `json:"reader_signature"`
	Context             ReadingContext   `json:"session_context"`
	CreatedAt           time.Time        `json:"created_at"`
}
