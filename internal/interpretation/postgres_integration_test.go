//go:build integration

package interpretation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mystic-arcana/oracle/internal/database/dbtest"
)

func TestPostgresLookup(t *testing.T) {
	pool := dbtest.StartPostgres(t)
	lookup := NewPostgresLookup(pool)
	ctx := context.Background()

	t.Run("seeded entry", func(t *testing.T) {
		e, err := lookup.Find(ctx, "The Tower", "three-card", "Past")
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.NotEmpty(t, e.ID)
		assert.Contains(t, e.BaseMeaning, "structure you relied on")
		require.Len(t, e.PersonalizationHooks, 1)
		assert.Equal(t, "transformation", e.PersonalizationHooks[0].Theme)
		assert.Equal(t, "Liberation often arrives disguised as loss.", e.SpiritualWisdom)
	})

	t.Run("null columns read as empty", func(t *testing.T) {
		e, err := lookup.Find(ctx, "Ace of Swords", "single", "Your Guidance")
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Empty(t, e.SpiritualWisdom)
		assert.NotEmpty(t, e.ActionableReflection)
	})

	t.Run("empty hooks", func(t *testing.T) {
		e, err := lookup.Find(ctx, "The Hermit", "three-card", "Present")
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Empty(t, e.PersonalizationHooks)
	})

	t.Run("miss", func(t *testing.T) {
		e, err := lookup.Find(ctx, "The Tower", "celtic-cross", "Past")
		require.NoError(t, err)
		assert.Nil(t, e)
	})

	t.Run("cached over postgres", func(t *testing.T) {
		mr, client := setupRedis(t)
		cached := NewCachedLookup(lookup, client, time.Hour)

		first, err := cached.Find(ctx, "The Star", "three-card", "Future")
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.True(t, mr.Exists(cacheKey("The Star", "three-card", "Future")))

		_, err = pool.Exec(ctx, `DELETE FROM tarot_interpretations WHERE card_name = 'The Star'`)
		require.NoError(t, err)

		second, err := cached.Find(ctx, "The Star", "three-card", "Future")
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)
	})
}
