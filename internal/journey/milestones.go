package journey

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/mystic-arcana/oracle/internal/memory"
	inats "github.com/mystic-arcana/oracle/internal/nats"
)

const EntryTypeMilestone = "engagement_milestone"

// MilestoneRecorder consumes level-change events and records each one in the
// user's journey.
type MilestoneRecorder struct {
	service   *Service
	consumers *inats.ConsumerManager
}

func NewMilestoneRecorder(service *Service, consumers *inats.ConsumerManager) *MilestoneRecorder {
	return &MilestoneRecorder{service: service, consumers: consumers}
}

// Start runs the consume loop until ctx is cancelled.
func (m *MilestoneRecorder) Start(ctx context.Context) error {
	consumer, err := m.consumers.EnsureConsumer(ctx, "journey-milestones", inats.SubjectLevelChange)
	if err != nil {
		return err
	}

	slog.Info("milestone recorder started", "consumer", "journey-milestones")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("milestone recorder: fetching events", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			m.handle(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (m *MilestoneRecorder) handle(ctx context.Context, msg jetstream.Msg) {
	var event inats.LevelChangeEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		slog.Error("milestone recorder: unmarshaling event", "error", err)
		_ = msg.Term()
		return
	}

	req, err := milestoneRequest(event)
	if err != nil {
		slog.Error("milestone recorder: building entry", "user_id", event.UserID, "error", err)
		_ = msg.Term()
		return
	}

	if _, err := m.service.Record(ctx, req); err != nil {
		slog.Error("milestone recorder: recording entry", "user_id", event.UserID, "error", err)
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()
	slog.Debug("milestone recorder: recorded level change", "user_id", event.UserID, "level", event.NewLevel)
}

func milestoneRequest(event inats.LevelChangeEvent) (memory.RecordRequest, error) {
	data, err := json.Marshal(map[string]inats.LevelChangeEvent{"level_change": event})
	if err != nil {
		return memory.RecordRequest{}, fmt.Errorf("marshaling level change: %w", err)
	}
	return memory.RecordRequest{
		UserID:          event.UserID,
		EntryType:       EntryTypeMilestone,
		Data:            data,
		SynthesisPrompt: fmt.Sprintf("Reached engagement level %d (%s)", event.NewLevel, event.ThresholdName),
	}, nil
}
