package journey

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mystic-arcana/oracle/internal/learning"
	"github.com/mystic-arcana/oracle/internal/memory"
	inats "github.com/mystic-arcana/oracle/internal/nats"
)

type fakeMsg struct {
	jetstream.Msg
	data                []byte
	acked, naked, termd bool
}

func (m *fakeMsg) Data() []byte { return m.data }

func (m *fakeMsg) Ack() error {
	m.acked = true
	return nil
}

func (m *fakeMsg) Nak() error {
	m.naked = true
	return nil
}

func (m *fakeMsg) Term() error {
	m.termd = true
	return nil
}

func levelChange(t *testing.T) *fakeMsg {
	t.Helper()
	data, err := json.Marshal(inats.LevelChangeEvent{
		UserID:        "user-1",
		PreviousLevel: 1,
		NewLevel:      2,
		ThresholdName: "Seeker",
		Timestamp:     base,
	})
	require.NoError(t, err)
	return &fakeMsg{data: data}
}

func TestMilestoneRecorder_RecordsLevelChange(t *testing.T) {
	svc := NewService(NewInMemoryRepository(10))
	rec := NewMilestoneRecorder(svc, nil)

	msg := levelChange(t)
	rec.handle(context.Background(), msg)
	assert.True(t, msg.acked)

	entries, err := svc.Journey(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, EntryTypeMilestone, entries[0].EntryType)
	assert.Equal(t, "Reached engagement level 2 (Seeker)", entries[0].SynthesisPrompt)

	var data map[string]inats.LevelChangeEvent
	require.NoError(t, json.Unmarshal(entries[0].Data, &data))
	assert.Equal(t, 2, data["level_change"].NewLevel)
	assert.True(t, data["level_change"].Timestamp.Equal(base))
}

func TestMilestoneRecorder_MalformedEventTerminated(t *testing.T) {
	rec := NewMilestoneRecorder(NewService(NewInMemoryRepository(10)), nil)

	msg := &fakeMsg{data: []byte("{")}
	rec.handle(context.Background(), msg)
	assert.True(t, msg.termd)
	assert.False(t, msg.acked)
}

func TestMilestoneRecorder_StoreFailureRedelivered(t *testing.T) {
	rec := NewMilestoneRecorder(NewService(&stubRepository{err: assert.AnError}), nil)

	msg := levelChange(t)
	rec.handle(context.Background(), msg)
	assert.True(t, msg.naked)
	assert.False(t, msg.acked)
}

func TestMilestones_DoNotCountAsEngagement(t *testing.T) {
	req, err := milestoneRequest(inats.LevelChangeEvent{UserID: "user-1", NewLevel: 3, Timestamp: time.Now()})
	require.NoError(t, err)

	note := memory.JourneyEntry{UserID: "user-1", EntryType: req.EntryType, Data: req.Data}.ToNote()
	m := learning.AnalyzeEngagementMetrics([]memory.Note{note})
	assert.Zero(t, m.CompletedReadings)
	assert.Zero(t, m.ConversationTurns)
	assert.Zero(t, m.QuestionsAnswered)
}
