package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventCache implements ports.EventCache using Redis strings.
type EventCache struct {
	client *goredis.Client
	prefix string
}

// NewEventCache creates a new Redis-backed event payload cache.
func NewEventCache(client *goredis.Client) *EventCache {
	return &EventCache{
		client: client,
		prefix: "event:",
	}
}

// Get retrieves a cached payload by event id.
// Returns nil, nil if the key does not exist.
func (c *EventCache) Get(ctx context.Context, eventID string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+eventID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis event cache get: %w", err)
	}
	return val, nil
}

// Set stores a payload with TTL.
func (c *EventCache) Set(ctx context.Context, eventID string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+eventID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis event cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached payload. Missing keys are not an error.
func (c *EventCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, c.prefix+eventID).Err(); err != nil {
		return fmt.Errorf("redis event cache del: %w", err)
	}
	return nil
}
