package learning

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/mystic-arcana/oracle/internal/memory"
	"github.com/mystic-arcana/oracle/internal/metrics"
	inats "github.com/mystic-arcana/oracle/internal/nats"
)

// EventPublisher broadcasts learning activity. *nats.Publisher satisfies it.
type EventPublisher interface {
	PublishLearningEvent(ctx context.Context, event inats.LearningEvent) error
	PublishLevelChange(ctx context.Context, event inats.LevelChangeEvent) error
}

// Sink delivers events and their memory notes on a best-effort basis.
// Deliver never returns an error; failures are logged and dropped.
type Sink struct {
	memory    memory.Client
	publisher EventPublisher
	written   atomic.Int64
}

func NewSink(mem memory.Client, publisher EventPublisher) *Sink {
	return &Sink{memory: mem, publisher: publisher}
}

func (s *Sink) Deliver(ctx context.Context, ev Event, note *memory.Note) {
	metrics.LearningEventsTotal.WithLabelValues(string(ev.Type)).Inc()

	if note != nil && s.memory != nil {
		if err := s.memory.Record(ctx, *note); err != nil {
			slog.Warn("learning: memory write failed",
				"event_type", ev.Type, "user_id", ev.UserID, "session_id", ev.SessionID, "error", err)
		} else {
			s.written.Add(1)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishLearningEvent(ctx, toStreamEvent(ev)); err != nil {
			slog.Warn("learning: publishing event failed", "event_type", ev.Type, "user_id", ev.UserID, "error", err)
		}
	}
}

// DeliverLevelChange announces a level increase.
func (s *Sink) DeliverLevelChange(ctx context.Context, ev inats.LevelChangeEvent) {
	metrics.LevelUpsTotal.WithLabelValues(strconv.Itoa(ev.NewLevel)).Inc()
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLevelChange(ctx, ev); err != nil {
		slog.Warn("learning: publishing level change failed", "user_id", ev.UserID, "error", err)
	}
}

// NotesWritten is the number of notes the memory service accepted.
func (s *Sink) NotesWritten() int64 {
	return s.written.Load()
}

func toStreamEvent(ev Event) inats.LearningEvent {
	return inats.LearningEvent{
		EventType:         string(ev.Type),
		UserID:            ev.UserID,
		SessionID:         ev.SessionID,
		SpreadType:        ev.Context.SpreadType,
		CardsDrawn:        ev.Context.CardsDrawn,
		ConversationState: ev.Context.ConversationState,
		TurnNumber:        ev.Context.TurnNumber,
		UserSatisfaction:  ev.Context.UserSatisfaction,
		Timestamp:         ev.Timestamp,
	}
}
