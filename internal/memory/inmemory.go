package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryClient keeps notes in process. It backs the "inmemory" memory driver and tests.
type InMemoryClient struct {
	mu    sync.RWMutex
	notes map[string][]Note
	now   func() time.Time
}

func NewInMemoryClient() *InMemoryClient {
	return &InMemoryClient{
		notes: make(map[string][]Note),
		now:   time.Now,
	}
}

func (c *InMemoryClient) Record(_ context.Context, note Note) error {
	if _, err := NewRecordRequest(note); err != nil {
		return err
	}
	if note.UserID == "" {
		return fmt.Errorf("note has no user id")
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.Timestamp.IsZero() {
		note.Timestamp = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes[note.UserID] = append(c.notes[note.UserID], note)
	return nil
}

func (c *InMemoryClient) Journey(_ context.Context, userID string) ([]Note, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Note, len(c.notes[userID]))
	copy(out, c.notes[userID])
	return out, nil
}
