package postgres

import (
	"context"
	"errors"
	"fmt"
)

// HealthCheck verifies that PostgreSQL answers and that the snapshot and
// audit tables created by EnsureSchema are present.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

const healthQuery = `SELECT to_regclass('balance_snapshots') IS NOT NULL, to_regclass('audit_logs') IS NOT NULL`

// Ping implements ports.HealthChecker.
func (h *HealthCheck) Ping(ctx context.Context) error {
	var snapshots, audit bool
	if err := h.pool.QueryRow(ctx, healthQuery).Scan(&snapshots, &audit); err != nil {
		return fmt.Errorf("postgres health: %w", err)
	}

	var missing []error
	if !snapshots {
		missing = append(missing, errors.New("table balance_snapshots missing"))
	}
	if !audit {
		missing = append(missing, errors.New("table audit_logs missing"))
	}
	return errors.Join(missing...)
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
