package journey

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mystic-arcana/oracle/internal/memory"
)

// RedisRepository keeps each journey as a capped list under journey:{userID}.
// A positive ttl expires a journey that has not been written to for that long.
type RedisRepository struct {
	client     redis.Cmdable
	maxEntries int
	ttl        time.Duration
}

func NewRedisRepository(client redis.Cmdable, maxEntries int, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, maxEntries: maxEntries, ttl: ttl}
}

func journeyKey(userID string) string {
	return fmt.Sprintf("journey:%s", userID)
}

func (r *RedisRepository) Append(ctx context.Context, entry *memory.JourneyEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling journey entry: %w", err)
	}

	key := journeyKey(entry.UserID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.LTrim(ctx, key, int64(-r.maxEntries), -1)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending to %s: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) ListByUser(ctx context.Context, userID string) ([]memory.JourneyEntry, error) {
	key := journeyKey(userID)
	items, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	entries := make([]memory.JourneyEntry, 0, len(items))
	for _, item := range items {
		var e memory.JourneyEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			slog.Warn("journey: skipping malformed entry", "key", key, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
