package journey

import (
	"context"
	"sync"

	"github.com/mystic-arcana/oracle/internal/memory"
)

// InMemoryRepository backs the "inmemory" journey driver. Entries are lost on restart.
type InMemoryRepository struct {
	mu         sync.RWMutex
	entries    map[string][]memory.JourneyEntry
	maxEntries int
}

func NewInMemoryRepository(maxEntries int) *InMemoryRepository {
	return &InMemoryRepository{
		entries:    make(map[string][]memory.JourneyEntry),
		maxEntries: maxEntries,
	}
}

func (r *InMemoryRepository) Append(_ context.Context, entry *memory.JourneyEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := append(r.entries[entry.UserID], *entry)
	if r.maxEntries > 0 && len(list) > r.maxEntries {
		list = append([]memory.JourneyEntry(nil), list[len(list)-r.maxEntries:]...)
	}
	r.entries[entry.UserID] = list
	return nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]memory.JourneyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]memory.JourneyEntry, len(r.entries[userID]))
	copy(out, r.entries[userID])
	return out, nil
}
