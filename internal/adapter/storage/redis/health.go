package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// HealthCheck reports whether the Redis instance behind the event cache,
// nonce store and rate limiter answers.
type HealthCheck struct {
	client *goredis.Client
}

func NewHealthCheck(client *goredis.Client) *HealthCheck {
	return &HealthCheck{client: client}
}

// Ping implements ports.HealthChecker. Errors name the address so a
// degraded /health response points at the right instance.
func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", h.client.Options().Addr, err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "redis"
}
