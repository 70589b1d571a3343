package service

import (
	"context"
	"errors"
	"fmt"

	"ledgersplit/internal/core/domain"
	"ledgersplit/internal/core/ledger"
	"ledgersplit/internal/core/ports"
	"ledgersplit/pkg/apperror"
	"ledgersplit/pkg/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// BalanceServiceImpl implements ports.BalanceService on top of an event source.
type BalanceServiceImpl struct {
	source      ports.EventSource
	maxParallel int
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// NewBalanceService creates a new BalanceServiceImpl.
// maxParallel bounds concurrent backend fetches when listing summaries.
func NewBalanceService(
	source ports.EventSource,
	maxParallel int,
	m *metrics.Metrics,
	log zerolog.Logger,
) *BalanceServiceImpl {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &BalanceServiceImpl{
		source:      source,
		maxParallel: maxParallel,
		metrics:     m,
		log:         log,
	}
}

// GetEventSummary fetches an event and derives its balances and settlement plan.
func (s *BalanceServiceImpl) GetEventSummary(ctx context.Context, caller ports.Caller, eventID string) (*domain.EventSummary, error) {
	event, err := s.source.GetEvent(ctx, caller, eventID)
	if err != nil {
		return nil, s.mapSourceError(err, eventID)
	}
	return s.summarize(event)
}

// ListEventSummaries summarizes every event visible to the caller.
// Events that disappear between the list and the fetch are skipped.
func (s *BalanceServiceImpl) ListEventSummaries(ctx context.Context, caller ports.Caller) ([]domain.EventSummary, error) {
	events, err := s.source.ListEvents(ctx, caller)
	if err != nil {
		return nil, s.mapSourceError(err, "")
	}

	results := make([]*domain.EventSummary, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i := range events {
		eventID := events[i].ID
		g.Go(func() error {
			event, err := s.source.GetEvent(gctx, caller, eventID)
			if errors.Is(err, ports.ErrEventNotFound) {
				s.log.Warn().Str("event_id", eventID).Msg("event vanished while listing, skipping")
				return nil
			}
			if err != nil {
				return s.mapSourceError(err, eventID)
			}
			summary, err := s.summarize(event)
			if err != nil {
				return err
			}
			results[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries := make([]domain.EventSummary, 0, len(results))
	for _, r := range results {
		if r != nil {
			summaries = append(summaries, *r)
		}
	}
	return summaries, nil
}

// GetSettlementPlan returns only the suggested transfers for an event.
func (s *BalanceServiceImpl) GetSettlementPlan(ctx context.Context, caller ports.Caller, eventID string) ([]domain.Transfer, error) {
	summary, err := s.GetEventSummary(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	if !summary.IsBalanced() {
		return nil, apperror.ErrImbalancedLedger(&ledger.ImbalancedLedgerError{Sum: *summary.Imbalance})
	}
	return summary.Transfers, nil
}

// ComputeSummary summarizes an event supplied by the caller without touching the backend.
func (s *BalanceServiceImpl) ComputeSummary(_ context.Context, event *domain.Event) (*domain.EventSummary, error) {
	return s.summarize(event)
}

func (s *BalanceServiceImpl) summarize(event *domain.Event) (*domain.EventSummary, error) {
	summary, err := ledger.Summarize(event)
	if err != nil {
		s.metrics.Summary(metrics.OutcomeInvalid)
		if errors.Is(err, ledger.ErrInvalidInput) {
			return nil, apperror.ErrInvalidLedgerInput(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("summarizing event: %w", err))
	}

	switch {
	case !summary.IsBalanced():
		s.metrics.Summary(metrics.OutcomeImbalanced)
		s.log.Error().
			Str("event_id", summary.EventID).
			Str("sum", summary.Imbalance.String()).
			Msg("balances do not sum to zero, upstream data is inconsistent")
	case summary.IsSettled:
		s.metrics.Summary(metrics.OutcomeSettled)
	default:
		s.metrics.Summary(metrics.OutcomeUnsettled)
	}
	return summary, nil
}

func (s *BalanceServiceImpl) mapSourceError(err error, eventID string) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		s.metrics.Summary(metrics.OutcomeInvalid)
		return apperror.ErrInvalidLedgerInput(err)
	case errors.Is(err, ports.ErrEventNotFound):
		return apperror.ErrEventNotFound(eventID)
	case errors.Is(err, ports.ErrBackendUnauthorized):
		return apperror.ErrInvalidToken()
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("backend timed out")
		return apperror.ErrBackendTimeout(err)
	case errors.Is(err, ports.ErrBackendUnavailable):
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("backend unavailable")
		return apperror.ErrBackendUnavailable(err)
	default:
		return apperror.InternalError(err)
	}
}
