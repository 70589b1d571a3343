package service

import (
	"context"
	"fmt"
	"time"

	"ledgersplit/internal/core/domain"
	"ledgersplit/internal/core/ledger"
	"ledgersplit/internal/core/ports"
	"ledgersplit/pkg/apperror"
	"ledgersplit/pkg/metrics"

	"github.com/rs/zerolog"
)

// SnapshotServiceImpl implements ports.SnapshotService.
type SnapshotServiceImpl struct {
	balances  ports.BalanceService
	repo      ports.SnapshotRepository
	listLimit int
	metrics   *metrics.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// NewSnapshotService creates a new SnapshotServiceImpl.
// listLimit caps how many snapshots a single List call returns.
func NewSnapshotService(
	balances ports.BalanceService,
	repo ports.SnapshotRepository,
	listLimit int,
	m *metrics.Metrics,
	log zerolog.Logger,
) *SnapshotServiceImpl {
	if listLimit < 1 {
		listLimit = 50
	}
	return &SnapshotServiceImpl{
		balances:  balances,
		repo:      repo,
		listLimit: listLimit,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// Record computes the event's current summary and stores it as a snapshot.
// Imbalanced ledgers are refused so history never holds inconsistent data.
func (s *SnapshotServiceImpl) Record(ctx context.Context, caller ports.Caller, eventID string) (*domain.BalanceSnapshot, error) {
	summary, err := s.balances.GetEventSummary(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	if !summary.IsBalanced() {
		return nil, apperror.ErrImbalancedLedger(&ledger.ImbalancedLedgerError{Sum: *summary.Imbalance})
	}

	snapshot := domain.NewBalanceSnapshot(summary, caller.UserID, s.now().UTC())
	if err := s.repo.Create(ctx, snapshot); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("creating snapshot: %w", err))
	}

	s.log.Info().
		Str("snapshot_id", snapshot.ID.String()).
		Str("event_id", eventID).
		Str("user_id", caller.UserID).
		Bool("settled", snapshot.IsSettled).
		Msg("balance snapshot recorded")

	return snapshot, nil
}

// List returns the newest snapshots of an event. The caller must still be
// able to see the event in the backend.
func (s *SnapshotServiceImpl) List(ctx context.Context, caller ports.Caller, eventID string, limit int) ([]domain.BalanceSnapshot, error) {
	if _, err := s.balances.GetEventSummary(ctx, caller, eventID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > s.listLimit {
		limit = s.listLimit
	}

	snapshots, err := s.repo.ListByEvent(ctx, eventID, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("listing snapshots: %w", err))
	}
	if snapshots == nil {
		snapshots = []domain.BalanceSnapshot{}
	}
	return snapshots, nil
}

// Prune deletes snapshots older than retention. A non-positive retention keeps everything.
func (s *SnapshotServiceImpl) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}

	cutoff := s.now().UTC().Add(-retention)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("pruning snapshots: %w", err))
	}

	s.metrics.SnapshotsPruned(deleted)
	s.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("snapshots pruned")
	return deleted, nil
}
