package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ledgersplit/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const snapshotColumns = `id, event_id, recorded_by, split_count, total_spent::text, is_settled, balances, transfers, created_at`

// SnapshotRepo implements ports.SnapshotRepository.
// Balances and transfers are stored as JSONB with amounts as decimal strings.
type SnapshotRepo struct {
	pool Pool
}

// NewSnapshotRepo creates a new SnapshotRepo.
func NewSnapshotRepo(pool Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// Create inserts a snapshot.
func (r *SnapshotRepo) Create(ctx context.Context, s *domain.BalanceSnapshot) error {
	balances, err := json.Marshal(s.Balances)
	if err != nil {
		return fmt.Errorf("encode snapshot balances: %w", err)
	}
	transfers, err := json.Marshal(s.Transfers)
	if err != nil {
		return fmt.Errorf("encode snapshot transfers: %w", err)
	}

	query := `INSERT INTO balance_snapshots (id, event_id, recorded_by, split_count, total_spent, is_settled, balances, transfers, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.pool.Exec(ctx, query,
		s.ID, s.EventID, s.RecordedBy, s.SplitCount, s.TotalSpent.String(),
		s.IsSettled, balances, transfers, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetByID fetches a snapshot. Returns nil, nil when it does not exist.
func (r *SnapshotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BalanceSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM balance_snapshots WHERE id = $1`

	s, err := scanSnapshot(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot by id: %w", err)
	}
	return s, nil
}

// ListByEvent returns up to limit snapshots for an event, newest first.
func (r *SnapshotRepo) ListByEvent(ctx context.Context, eventID string, limit int) ([]domain.BalanceSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM balance_snapshots
		WHERE event_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]domain.BalanceSnapshot, 0)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// DeleteOlderThan removes snapshots created before cutoff.
func (r *SnapshotRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM balance_snapshots WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSnapshot(row pgx.Row) (*domain.BalanceSnapshot, error) {
	var (
		s          domain.BalanceSnapshot
		totalSpent string
		balances   []byte
		transfers  []byte
	)
	err := row.Scan(
		&s.ID, &s.EventID, &s.RecordedBy, &s.SplitCount, &totalSpent,
		&s.IsSettled, &balances, &transfers, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if s.TotalSpent, err = decimal.NewFromString(totalSpent); err != nil {
		return nil, fmt.Errorf("decode total_spent: %w", err)
	}
	if err := json.Unmarshal(balances, &s.Balances); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}
	if err := json.Unmarshal(transfers, &s.Transfers); err != nil {
		return nil, fmt.Errorf("decode transfers: %w", err)
	}
	return &s, nil
}
