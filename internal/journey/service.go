package journey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	"github.com/mystic-arcana/oracle/internal/memory"
	"github.com/mystic-arcana/oracle/internal/metrics"
)

var ErrMissingFields = errors.New("userId and entryType are required")

type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newID returns a ULID, so ids of one user sort in creation order.
func (s *Service) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Record stores a new entry stamped with a fresh id and the current time.
func (s *Service) Record(ctx context.Context, req memory.RecordRequest) (*memory.JourneyEntry, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, ErrMissingFields
	}

	data := req.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}

	now := s.now().UTC()
	entry := &memory.JourneyEntry{
		ID:              s.newID(now),
		UserID:          req.UserID,
		EntryType:       req.EntryType,
		Data:            data,
		SynthesisPrompt: req.SynthesisPrompt,
		CreatedAt:       now,
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording journey entry: %w", err)
	}

	metrics.JourneyEntriesTotal.WithLabelValues(entry.EntryType).Inc()
	slog.Debug("journey entry recorded", "user_id", entry.UserID, "entry_type", entry.EntryType)
	return entry, nil
}

// Journey returns every kept entry of a user, oldest first. An unknown user has an empty journey.
func (s *Service) Journey(ctx context.Context, userID string) ([]memory.JourneyEntry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading journey: %w", err)
	}
	if entries == nil {
		entries = []memory.JourneyEntry{}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}
