package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// FetchTimeout bounds one pull of a consume loop.
const FetchTimeout = 5 * time.Second

const (
	consumerAckWait    = 30 * time.Second
	consumerMaxDeliver = 5
)

// ConsumerManager creates durable pull consumers on ORACLE_EVENTS.
type ConsumerManager struct {
	js jetstream.JetStream
}

func NewConsumerManager(js jetstream.JetStream) *ConsumerManager {
	return &ConsumerManager{js: js}
}

// EnsureConsumer creates or updates the durable consumer name. A message
// nak'd more than consumerMaxDeliver times is dropped.
func (cm *ConsumerManager) EnsureConsumer(ctx context.Context, name, filterSubject string) (jetstream.Consumer, error) {
	consumer, err := cm.js.CreateOrUpdateConsumer(ctx, StreamEvents, jetstream.ConsumerConfig{
		Durable:       name,
		FilterSubject: filterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       consumerAckWait,
		MaxDeliver:    consumerMaxDeliver,
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring consumer %s on %s: %w", name, StreamEvents, err)
	}
	return consumer, nil
}
