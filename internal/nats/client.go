package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mystic-arcana/oracle/internal/config"
)

// eventsStream holds every oracle event for a month. The duplicate window
// lets level-up publishes be retried without double milestones.
var eventsStream = jetstream.StreamConfig{
	Name:       StreamEvents,
	Subjects:   []string{"oracle.events.>"},
	Retention:  jetstream.LimitsPolicy,
	MaxAge:     30 * 24 * time.Hour,
	Duplicates: 2 * time.Minute,
}

// Client is a JetStream-enabled NATS connection.
type Client struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// NewClient connects as name and makes sure ORACLE_EVENTS exists.
func NewClient(ctx context.Context, cfg config.NATSConfig, name string) (*Client, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "client", name, "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "client", name, "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}
	if _, err := js.CreateOrUpdateStream(ctx, eventsStream); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensuring stream %s: %w", eventsStream.Name, err)
	}

	slog.Info("nats ready", "client", name, "url", cfg.URL, "stream", eventsStream.Name)
	return &Client{conn: nc, js: js}, nil
}

func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

func (c *Client) Healthy() bool {
	return c.conn.IsConnected()
}

// Ping is a readiness check; it fails while the connection is down.
func (c *Client) Ping(_ context.Context) error {
	if !c.Healthy() {
		return fmt.Errorf("nats: connection %s", c.conn.Status())
	}
	return nil
}

// Close drains pending publishes before closing.
func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		slog.Warn("draining nats connection", "error", err)
	}
}
