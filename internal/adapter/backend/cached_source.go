package backend

import (
	"context"
	"time"

	"ledgersplit/internal/core/domain"
	"ledgersplit/internal/core/ports"
	"ledgersplit/pkg/metrics"

	"github.com/rs/zerolog"
)

// CachedEventSource keeps raw event payloads in an EventCache in front of
// the backend. Only payloads are cached; balances are derived on every call.
//
// A cached event is served only to callers listed as its participants.
// Anyone else goes to the backend so its authorization still applies.
type CachedEventSource struct {
	client  *Client
	cache   ports.EventCache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewCachedEventSource wraps client with cache. A zero ttl disables caching.
func NewCachedEventSource(client *Client, cache ports.EventCache, ttl time.Duration, m *metrics.Metrics, log zerolog.Logger) *CachedEventSource {
	return &CachedEventSource{
		client:  client,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		log:     log,
	}
}

// GetEvent implements ports.EventSource.
func (s *CachedEventSource) GetEvent(ctx context.Context, caller ports.Caller, eventID string) (*domain.Event, error) {
	if s.ttl <= 0 {
		return s.client.GetEvent(ctx, caller, eventID)
	}

	if event := s.lookup(ctx, caller, eventID); event != nil {
		return event, nil
	}

	body, err := s.client.FetchEventPayload(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	event, err := decodeEvent(body)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, eventID, body, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("event cache: store failed")
	}
	return event, nil
}

// ListEvents implements ports.EventSource. Event lists are never cached.
func (s *CachedEventSource) ListEvents(ctx context.Context, caller ports.Caller) ([]domain.Event, error) {
	return s.client.ListEvents(ctx, caller)
}

func (s *CachedEventSource) lookup(ctx context.Context, caller ports.Caller, eventID string) *domain.Event {
	body, err := s.cache.Get(ctx, eventID)
	if err != nil {
		s.metrics.Cache(metrics.CacheError)
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("event cache: lookup failed, falling back to backend")
		return nil
	}
	if body == nil {
		s.metrics.Cache(metrics.CacheMiss)
		return nil
	}

	event, err := ParseEvent(body)
	if err != nil {
		s.metrics.Cache(metrics.CacheError)
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("event cache: dropping unreadable entry")
		if err := s.cache.Invalidate(ctx, eventID); err != nil {
			s.log.Warn().Err(err).Str("event_id", eventID).Msg("event cache: invalidate failed")
		}
		return nil
	}
	if !event.HasParticipant(caller.UserID) {
		s.metrics.Cache(metrics.CacheMiss)
		return nil
	}

	s.metrics.Cache(metrics.CacheHit)
	return event
}
