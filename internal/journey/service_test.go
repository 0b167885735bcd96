package journey

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mystic-arcana/oracle/internal/memory"
)

type stubRepository struct {
	entries []memory.JourneyEntry
	err     error
}

func (r *stubRepository) Append(context.Context, *memory.JourneyEntry) error { return r.err }

func (r *stubRepository) ListByUser(context.Context, string) ([]memory.JourneyEntry, error) {
	return r.entries, r.err
}

func tickingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestService_Record(t *testing.T) {
	svc := NewService(NewInMemoryRepository(10), WithClock(tickingClock(base)))

	got, err := svc.Record(context.Background(), memory.RecordRequest{
		UserID:          "user-1",
		EntryType:       memory.CategoryReading,
		Data:            json.RawMessage(`{"card":"The Star"}`),
		SynthesisPrompt: "three-card reading",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, memory.CategoryReading, got.EntryType)
	assert.Equal(t, "three-card reading", got.SynthesisPrompt)
	assert.Equal(t, base.Add(time.Second), got.CreatedAt)

	entries, err := svc.Journey(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, got.ID, entries[0].ID)
}

func TestService_RecordWithoutData(t *testing.T) {
	svc := NewService(NewInMemoryRepository(10))

	got, err := svc.Record(context.Background(), memory.RecordRequest{UserID: "user-1", EntryType: "general"})
	require.NoError(t, err)
	assert.Equal(t, "null", string(got.Data))
}

func TestService_RecordMissingFields(t *testing.T) {
	svc := NewService(NewInMemoryRepository(10))

	tests := []struct {
		name string
		req  memory.RecordRequest
	}{
		{"no user", memory.RecordRequest{EntryType: "general"}},
		{"no entry type", memory.RecordRequest{UserID: "user-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrMissingFields)
		})
	}
}

func TestService_RecordRepositoryError(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewService(&stubRepository{err: boom})

	_, err := svc.Record(context.Background(), memory.RecordRequest{UserID: "user-1", EntryType: "general"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMissingFields)
}

func TestService_JourneyAscending(t *testing.T) {
	repo := &stubRepository{entries: []memory.JourneyEntry{
		{ID: "late", CreatedAt: base.Add(time.Hour)},
		{ID: "early", CreatedAt: base},
		{ID: "middle", CreatedAt: base.Add(time.Minute)},
	}}
	svc := NewService(repo)

	entries, err := svc.Journey(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"early", "middle", "late"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestService_JourneyUnknownUser(t *testing.T) {
	svc := NewService(&stubRepository{})

	entries, err := svc.Journey(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestService_IDsFollowCreationOrder(t *testing.T) {
	frozen := func() time.Time { return base }
	svc := NewService(NewInMemoryRepository(10), WithClock(frozen))
	ctx := context.Background()

	var ids []string
	for range 3 {
		e, err := svc.Record(ctx, memory.RecordRequest{UserID: "user-1", EntryType: "general"})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	assert.IsIncreasing(t, ids)

	// Same timestamp everywhere: the id breaks the tie.
	shuffled := &stubRepository{entries: []memory.JourneyEntry{
		{ID: ids[2], CreatedAt: base}, {ID: ids[0], CreatedAt: base}, {ID: ids[1], CreatedAt: base},
	}}
	entries, err := NewService(shuffled).Journey(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, ids, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}
