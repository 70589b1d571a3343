package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_Allow(t *testing.T) {
	s, client := newTestClient(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	t.Run("allows requests within limit", func(t *testing.T) {
		for i := int64(1); i <= 3; i++ {
			result, err := store.Allow(ctx, "user1:events", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d should be allowed", i)
			assert.Equal(t, int64(3), result.Limit)
			assert.Equal(t, 3-i, result.Remaining)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		result, err := store.Allow(ctx, "user1:events", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, int64(0), result.Remaining)
	})

	t.Run("different keys are independent", func(t *testing.T) {
		result, err := store.Allow(ctx, "user2:events", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, int64(4), result.Remaining)
	})

	t.Run("counter key expires", func(t *testing.T) {
		_, err := store.Allow(ctx, "user3:compute", 1, time.Minute)
		require.NoError(t, err)

		keys := s.Keys()
		require.NotEmpty(t, keys)
		for _, k := range keys {
			assert.Greater(t, s.TTL(k), time.Duration(0), "key %s should carry a TTL", k)
		}
	})

	t.Run("new window resets the counter", func(t *testing.T) {
		fixed := time.Unix(1_700_000_000, 0)
		store.now = func() time.Time { return fixed }

		_, err := store.Allow(ctx, "user4:compute", 1, time.Minute)
		require.NoError(t, err)
		result, err := store.Allow(ctx, "user4:compute", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)

		store.now = func() time.Time { return fixed.Add(time.Minute) }
		result, err = store.Allow(ctx, "user4:compute", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, fixed.Add(2*time.Minute).Unix()/60*60, result.ResetAt)
	})
}
