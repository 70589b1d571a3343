package service

import (
	"context"
	"fmt"

	"ledgersplit/internal/core/domain"
	"ledgersplit/internal/core/ports"
	"ledgersplit/pkg/apperror"
	"ledgersplit/pkg/metrics"

	"github.com/rs/zerolog"
)

// WebhookServiceImpl implements ports.WebhookService.
// Every notification drops the cached payload of its event, so the next
// read recomputes from fresh backend data.
type WebhookServiceImpl struct {
	cache   ports.EventCache
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewWebhookService creates a new WebhookServiceImpl. A nil cache makes
// notifications a no-op apart from logging.
func NewWebhookService(cache ports.EventCache, m *metrics.Metrics, log zerolog.Logger) *WebhookServiceImpl {
	return &WebhookServiceImpl{
		cache:   cache,
		metrics: m,
		log:     log,
	}
}

// HandleChange invalidates the cached event named by the notification.
// Unknown change types are still honored; the backend may add new ones.
func (s *WebhookServiceImpl) HandleChange(ctx context.Context, n *domain.ChangeNotification) error {
	if n == nil || n.EventID == "" {
		return apperror.Validation("event_id is required")
	}

	s.metrics.Webhook(string(n.ChangeType))
	if !n.ChangeType.IsKnown() {
		s.log.Warn().
			Str("change_type", string(n.ChangeType)).
			Str("event_id", n.EventID).
			Msg("unknown change type, invalidating anyway")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, n.EventID); err != nil {
			return apperror.ErrCacheError(fmt.Errorf("invalidating event %s: %w", n.EventID, err))
		}
	}

	s.log.Info().
		Str("change_type", string(n.ChangeType)).
		Str("event_id", n.EventID).
		Msg("event cache invalidated")
	return nil
}
