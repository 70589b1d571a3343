package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// NonceStore remembers webhook nonces for the replay window so a signed
// change notification from the backend is accepted at most once.
// Keys look like "ledgersplit:nonce:<scope>:<nonce>".
type NonceStore struct {
	client *goredis.Client
	prefix string
}

// NewNonceStore creates a Redis-backed webhook nonce store.
func NewNonceStore(client *goredis.Client) *NonceStore {
	return &NonceStore{
		client: client,
		prefix: "ledgersplit:nonce:",
	}
}

// CheckAndSet reserves nonce within scope for ttl with SET NX. It reports
// true the first time a nonce is seen and false on replay. The ttl must
// cover the accepted timestamp drift; a non-positive ttl would keep the key
// forever and is refused.
func (s *NonceStore) CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error) {
	if nonce == "" {
		return false, errors.New("redis nonce check: empty nonce")
	}
	if ttl <= 0 {
		return false, fmt.Errorf("redis nonce check: ttl must be positive, got %s", ttl)
	}

	result, err := s.client.SetArgs(ctx, s.key(scope, nonce), 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis nonce check: %w", err)
	}
	return result == "OK", nil
}

func (s *NonceStore) key(scope, nonce string) string {
	return s.prefix + scope + ":" + nonce
}
