package orchestrator

import (
	"slices"
	"sync"
	"time"

	"github.com/mystic-arcana/oracle/internal/metrics"
	"github.com/mystic-arcana/oracle/internal/tarot"
)

// UserResponse is one input the user gave, tagged with the state it was given in.
type UserResponse struct {
	State     State     `json:"state"`
	Input     string    `json:"input"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one reading conversation. Interpretations[i] is set once card i
// has passed its interpreting state. CardIndex always equals CardIndex(State).
type Session struct {
	ID              string                  `json:"session_id"`
	UserID          string                  `json:"user_id,omitempty"`
	SpreadType      tarot.SpreadType        `json:"spread_type"`
	Cards           []tarot.Card            `json:"cards"`
	State           State                   `json:"current_state"`
	CardIndex       int                     `json:"current_card_index"`
	Responses       []UserResponse          `json:"user_responses"`
	Interpretations []*tarot.Interpretation `json:"card_interpretations"`
	Context         tarot.ReadingContext    `json:"context"`
	Turns           int                     `json:"turns"`
	StartTime       time.Time               `json:"start_time"`
	UpdatedAt       time.Time               `json:"updated_at"`
	FinalReading    *tarot.Reading          `json:"final_reading,omitempty"`
}

func (s *Session) clone() *Session {
	c := *s
	c.Cards = slices.Clone(s.Cards)
	c.Responses = slices.Clone(s.Responses)
	c.Interpretations = slices.Clone(s.Interpretations)
	c.Context.Cards = slices.Clone(s.Context.Cards)
	return &c
}

// SessionStore holds live sessions for the lifetime of the process.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns a copy of the session, so callers can work on it without
// affecting the stored one until Commit.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.clone(), true
}

// Commit stores sess provided the stored session is still in state from, or
// absent when from is the initial state.
func (s *SessionStore) Commit(sess *Session, from State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[sess.ID]
	switch {
	case ok && current.State != from:
		return ErrStateMismatch
	case !ok && from != StateAwaitingDraw:
		return ErrSessionNotFound
	}

	s.sessions[sess.ID] = sess.clone()
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return nil
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

// Sweep drops sessions not updated since cutoff and returns how many were removed.
func (s *SessionStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return removed
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
