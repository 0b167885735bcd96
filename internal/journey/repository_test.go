package journey

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mystic-arcana/oracle/internal/memory"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

var base = time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

func entry(userID string, n int) *memory.JourneyEntry {
	return &memory.JourneyEntry{
		ID:        fmt.Sprintf("e%d", n),
		UserID:    userID,
		EntryType: memory.CategoryGeneral,
		Data:      json.RawMessage(fmt.Sprintf(`{"n":%d}`, n)),
		CreatedAt: base.Add(time.Duration(n) * time.Minute),
	}
}

func TestRepositories(t *testing.T) {
	repos := map[string]func(t *testing.T) Repository{
		"inmemory": func(t *testing.T) Repository { return NewInMemoryRepository(3) },
		"redis": func(t *testing.T) Repository {
			_, client := setupRedis(t)
			return NewRedisRepository(client, 3, time.Hour)
		},
	}

	for name, newRepo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("unknown user is empty", func(t *testing.T) {
				entries, err := newRepo(t).ListByUser(ctx, "nobody")
				require.NoError(t, err)
				assert.Empty(t, entries)
			})

			t.Run("keeps insertion order per user", func(t *testing.T) {
				repo := newRepo(t)
				require.NoError(t, repo.Append(ctx, entry("user-1", 1)))
				require.NoError(t, repo.Append(ctx, entry("user-2", 2)))
				require.NoError(t, repo.Append(ctx, entry("user-1", 3)))

				entries, err := repo.ListByUser(ctx, "user-1")
				require.NoError(t, err)
				require.Len(t, entries, 2)
				assert.Equal(t, "e1", entries[0].ID)
				assert.Equal(t, "e3", entries[1].ID)
				assert.JSONEq(t, `{"n":3}`, string(entries[1].Data))
				assert.True(t, entries[1].CreatedAt.Equal(base.Add(3*time.Minute)))
			})

			t.Run("keeps only the newest entries", func(t *testing.T) {
				repo := newRepo(t)
				for n := 1; n <= 5; n++ {
					require.NoError(t, repo.Append(ctx, entry("user-1", n)))
				}

				entries, err := repo.ListByUser(ctx, "user-1")
				require.NoError(t, err)
				require.Len(t, entries, 3)
				assert.Equal(t, "e3", entries[0].ID)
				assert.Equal(t, "e5", entries[2].ID)
			})
		})
	}
}

func TestRedisRepository_TTL(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewRedisRepository(client, 10, 90*time.Minute)

	require.NoError(t, repo.Append(context.Background(), entry("user-1", 1)))
	assert.Equal(t, 90*time.Minute, mr.TTL("journey:user-1"))
}

func TestRedisRepository_NoTTL(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewRedisRepository(client, 10, 0)

	require.NoError(t, repo.Append(context.Background(), entry("user-1", 1)))
	assert.Zero(t, mr.TTL("journey:user-1"))
}

func TestRedisRepository_SkipsMalformedEntries(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewRedisRepository(client, 10, 0)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, entry("user-1", 1)))
	_, err := mr.Push("journey:user-1", "not json")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, entry("user-1", 2)))

	entries, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e2", entries[1].ID)
}

func TestRedisRepository_Unavailable(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewRedisRepository(client, 10, 0)
	mr.Close()

	assert.Error(t, repo.Append(context.Background(), entry("user-1", 1)))
	_, err := repo.ListByUser(context.Background(), "user-1")
	assert.Error(t, err)
}
