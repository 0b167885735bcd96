package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	subjects []string
	payloads [][]byte
	opts     [][]jetstream.PublishOpt
	err      error
}

func (f *fakeStream) Publish(_ context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subjects = append(f.subjects, subject)
	f.opts = append(f.opts, opts)
	f.payloads = append(f.payloads, payload)
	return &jetstream.PubAck{Stream: StreamEvents}, nil
}

func TestPublisher_LearningEventSubject(t *testing.T) {
	fs := &fakeStream{}
	p := NewPublisher(fs)

	err := p.PublishLearningEvent(context.Background(), LearningEvent{
		EventType: "conversation_turn",
		UserID:    "u1",
		SessionID: "s1",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, fs.subjects, 1)
	assert.Equal(t, "oracle.events.learning.conversation_turn", fs.subjects[0])
	assert.Empty(t, fs.opts[0])

	var got LearningEvent
	require.NoError(t, json.Unmarshal(fs.payloads[0], &got))
	assert.Equal(t, "u1", got.UserID)
}

func TestPublisher_LevelChange(t *testing.T) {
	fs := &fakeStream{}
	p := NewPublisher(fs)

	require.NoError(t, p.PublishLevelChange(context.Background(), LevelChangeEvent{
		UserID: "u1", PreviousLevel: 1, NewLevel: 2, ThresholdName: "Curious Student",
	}))
	assert.Equal(t, []string{SubjectLevelChange}, fs.subjects)
	assert.Len(t, fs.opts[0], 1, "level changes carry a message id")
}

func TestLevelChangeEvent_MsgID(t *testing.T) {
	e := LevelChangeEvent{UserID: "u1", PreviousLevel: 2, NewLevel: 3}
	assert.Equal(t, "level:u1:3", e.MsgID())

	e.PreviousLevel = 1
	assert.Equal(t, "level:u1:3", e.MsgID(), "id depends only on the reached level")
}

func TestPublisher_WrapsErrors(t *testing.T) {
	p := NewPublisher(&fakeStream{err: errors.New("no responders")})

	err := p.PublishLevelChange(context.Background(), LevelChangeEvent{UserID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), SubjectLevelChange)
}
