package nats

import (
	"fmt"
	"time"
)

// Stream names.
const (
	StreamEvents = "ORACLE_EVENTS"
)

// Subject constants.
const (
	SubjectLearningPrefix = "oracle.events.learning" // oracle.events.learning.{event_type}
	SubjectLevelChange    = "oracle.events.level"
)

// LearningEvent is published for every interaction the learning engine records.
type LearningEvent struct {
	EventType         string    `json:"event_type"`
	UserID            string    `json:"user_id"`
	SessionID         string    `json:"session_id"`
	SpreadType        string    `json:"spread_type,omitempty"`
	CardsDrawn        []string  `json:"cards_drawn,omitempty"`
	ConversationState string    `json:"conversation_state,omitempty"`
	TurnNumber        int       `json:"turn_number,omitempty"`
	UserSatisfaction  int       `json:"user_satisfaction,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// LevelChangeEvent is published when a user reaches a higher engagement level.
type LevelChangeEvent struct {
	UserID        string    `json:"user_id"`
	PreviousLevel int       `json:"previous_level"`
	NewLevel      int       `json:"new_level"`
	ThresholdName string    `json:"threshold_name"`
	Timestamp     time.Time `json:"timestamp"`
}

// MsgID identifies a level-up for JetStream de-duplication.
func (e LevelChangeEvent) MsgID() string {
	return fmt.Sprintf("level:%s:%d", e.UserID, e.NewLevel)
}
