package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"ledgersplit/internal/core/domain"

	"github.com/google/uuid"
)

// SnapshotRepository defines persistence operations for balance snapshots.
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *domain.BalanceSnapshot) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BalanceSnapshot, error)
	// ListByEvent returns the newest snapshots first.
	ListByEvent(ctx context.Context, eventID string, limit int) ([]domain.BalanceSnapshot, error)
	// DeleteOlderThan removes snapshots created before cutoff and returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditRepository defines persistence for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}
