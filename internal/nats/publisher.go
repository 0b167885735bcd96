package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// StreamPublisher is the part of jetstream.JetStream the Publisher uses.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher emits learning and engagement events onto ORACLE_EVENTS.
type Publisher struct {
	js StreamPublisher
}

func NewPublisher(js StreamPublisher) *Publisher {
	return &Publisher{js: js}
}

// PublishLearningEvent publishes under oracle.events.learning.{event_type}.
func (p *Publisher) PublishLearningEvent(ctx context.Context, event LearningEvent) error {
	return p.publish(ctx, SubjectLearningPrefix+"."+event.EventType, event)
}

// PublishLevelChange publishes a level-up. The message id is derived from
// the user and the reached level, so a retried publish inside the stream's
// duplicate window yields a single milestone.
func (p *Publisher) PublishLevelChange(ctx context.Context, event LevelChangeEvent) error {
	return p.publish(ctx, SubjectLevelChange, event, jetstream.WithMsgID(event.MsgID()))
}

func (p *Publisher) publish(ctx context.Context, subject string, event any, opts ...jetstream.PublishOpt) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event for %s: %w", subject, err)
	}
	if _, err := p.js.Publish(ctx, subject, payload, opts...); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
