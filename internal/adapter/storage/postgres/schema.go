package postgres

import (
	"context"
	"fmt"
)

// schema is idempotent; it runs on every start.
const schema = `
CREATE TABLE IF NOT EXISTS balance_snapshots (
	id          UUID PRIMARY KEY,
	event_id    TEXT NOT NULL,
	recorded_by TEXT NOT NULL,
	split_count INTEGER NOT NULL,
	total_spent NUMERIC(20, 4) NOT NULL,
	is_settled  BOOLEAN NOT NULL,
	balances    JSONB NOT NULL,
	transfers   JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_balance_snapshots_event ON balance_snapshots (event_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_balance_snapshots_created ON balance_snapshots (created_at);

CREATE TABLE IF NOT EXISTS audit_logs (
	id            UUID PRIMARY KEY,
	user_id       TEXT,
	action        TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_id   TEXT,
	details       TEXT,
	ip_address    TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs (created_at);
`

// EnsureSchema creates the tables and indexes if they are missing.
func EnsureSchema(ctx context.Context, pool Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
