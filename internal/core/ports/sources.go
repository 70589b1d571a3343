package ports

//go:generate mockgen -source=sources.go -destination=mocks/mock_sources.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"ledgersplit/internal/core/domain"
)

var (
	// ErrEventNotFound is returned when the backend has no such event,
	// or does not let the caller see it.
	ErrEventNotFound = errors.New("event not found")
	// ErrBackendUnavailable is returned for transport failures and
	// unexpected backend statuses.
	ErrBackendUnavailable = errors.New("event backend unavailable")
	// ErrBackendUnauthorized is returned when the backend rejects the caller's token.
	ErrBackendUnauthorized = errors.New("event backend rejected credentials")
)

// Caller identifies who a backend call is made for. The token is forwarded
// as-is so the backend applies its own authorization.
type Caller struct {
	UserID string
	Token  string
}

// EventSource reads events from the external backend.
type EventSource interface {
	// GetEvent returns the event with its participants and splits.
	GetEvent(ctx context.Context, caller Caller, eventID string) (*domain.Event, error)
	// ListEvents returns the caller's events. Splits may be absent.
	ListEvents(ctx context.Context, caller Caller) ([]domain.Event, error)
}

// EventCache stores raw backend event payloads.
type EventCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, eventID string) ([]byte, error)
	Set(ctx context.Context, eventID string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, eventID string) error
}

// NonceStore manages nonce uniqueness for replay attack prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}
