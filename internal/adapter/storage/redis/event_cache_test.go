package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestEventCache_SetAndGet(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewEventCache(client)
	ctx := context.Background()

	payload := []byte(`{"event_id":"e1","splits":[]}`)

	result, err := cache.Get(ctx, "e1")
	assert.NoError(t, err)
	assert.Nil(t, result, "miss should return nil")

	require.NoError(t, cache.Set(ctx, "e1", payload, time.Hour))

	result, err = cache.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, payload, result)
}

func TestEventCache_KeyPrefix(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewEventCache(client)

	require.NoError(t, cache.Set(context.Background(), "e7", []byte("x"), time.Hour))
	assert.True(t, s.Exists("event:e7"))
}

func TestEventCache_TTLExpiry(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewEventCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "e1", []byte("data"), time.Second))

	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, "e1")
	assert.NoError(t, err)
	assert.Nil(t, result, "expired key should return nil")
}

func TestEventCache_Invalidate(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewEventCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "e1", []byte("data"), time.Hour))
	require.NoError(t, cache.Invalidate(ctx, "e1"))

	result, err := cache.Get(ctx, "e1")
	assert.NoError(t, err)
	assert.Nil(t, result)

	assert.NoError(t, cache.Invalidate(ctx, "never-cached"))
}

func TestEventCache_ServerDown(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewEventCache(client)
	s.Close()

	_, err := cache.Get(context.Background(), "e1")
	assert.Error(t, err)
}
