// Package interpretation turns a drawn card, its base meaning and the user's memory
// into personalized guidance.
package interpretation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mystic-arcana/oracle/internal/metrics"
)

// Hook is an optional personalization hint attached to a base interpretation.
type Hook struct {
	Interpretation string `json:"interpretation"`
	Theme          string `json:"theme,omitempty"`
}

// Entry is a base interpretation for one (card, spread, position).
type Entry struct {
	ID                   string `json:"id"`
	CardName             string `json:"card_name"`
	SpreadType           string `json:"spread_type"`
	PositionName         string `json:"position_name"`
	BaseMeaning          string `json:"base_meaning"`
	PersonalizationHooks []Hook `json:"personalization_hooks,omitempty"`
	SpiritualWisdom      string `json:"spiritual_wisdom,omitempty"`
	ActionableReflection string `json:"actionable_reflection,omitempty"`
}

// Lookup finds base interpretations. A miss returns (nil, nil).
type Lookup interface {
	Find(ctx context.Context, card, spread, position string) (*Entry, error)
}

// PostgresLookup reads the tarot_interpretations table.
type PostgresLookup struct {
	pool *pgxpool.Pool
}

func NewPostgresLookup(pool *pgxpool.Pool) *PostgresLookup {
	return &PostgresLookup{pool: pool}
}

func (l *PostgresLookup) Find(ctx context.Context, card, spread, position string) (*Entry, error) {
	query := `
		SELECT id::text, card_name, spread_type, position_name, base_meaning,
		       personalization_hooks, COALESCE(spiritual_wisdom, ''), COALESCE(actionable_reflection, '')
		FROM tarot_interpretations
		WHERE card_name = $1 AND spread_type = $2 AND position_name = $3
		LIMIT 1`

	e := &Entry{}
	err := l.pool.QueryRow(ctx, query, card, spread, position).Scan(
		&e.ID, &e.CardName, &e.SpreadType, &e.PositionName, &e.BaseMeaning,
		&e.PersonalizationHooks, &e.SpiritualWisdom, &e.ActionableReflection)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.InterpretationLookupsTotal.WithLabelValues("miss").Inc()
			return nil, nil
		}
		metrics.InterpretationLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("querying interpretation for %s: %w", card, err)
	}
	metrics.InterpretationLookupsTotal.WithLabelValues("hit").Inc()
	return e, nil
}

// CachedLookup keeps found entries in Redis. Misses are not cached so that newly
// added interpretations are picked up immediately.
type CachedLookup struct {
	next   Lookup
	client *redis.Client
	ttl    time.Duration
}

func NewCachedLookup(next Lookup, client *redis.Client, ttl time.Duration) *CachedLookup {
	return &CachedLookup{next: next, client: client, ttl: ttl}
}

func cacheKey(card, spread, position string) string {
	return fmt.Sprintf("interpretation:%s:%s:%s", spread, position, card)
}

func (l *CachedLookup) Find(ctx context.Context, card, spread, position string) (*Entry, error) {
	key := cacheKey(card, spread, position)

	val, err := l.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var e Entry
		if jsonErr := json.Unmarshal([]byte(val), &e); jsonErr == nil {
			metrics.InterpretationLookupsTotal.WithLabelValues("cached").Inc()
			return &e, nil
		}
		slog.Warn("interpretation: dropping malformed cache entry", "key", key)
		l.client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		slog.Warn("interpretation: cache read failed", "key", key, "error", err)
	}

	e, err := l.next.Find(ctx, card, spread, position)
	if err != nil || e == nil {
		return e, err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return e, nil
	}
	if err := l.client.Set(ctx, key, data, l.ttl).Err(); err != nil {
		slog.Warn("interpretation: cache write failed", "key", key, "error", err)
	}
	return e, nil
}

// StaticLookup serves entries from memory. It backs tests and deployments without a database.
type StaticLookup map[string]*Entry

func StaticKey(card, spread, position string) string {
	return cacheKey(card, spread, position)
}

func (l StaticLookup) Find(_ context.Context, card, spread, position string) (*Entry, error) {
	return l[StaticKey(card, spread, position)], nil
}
