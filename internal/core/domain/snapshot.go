package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceSnapshot is a point-in-time record of an event's computed balances.
// Snapshots are history only; live balances are always recomputed.
type BalanceSnapshot struct {
	ID         uuid.UUID       `json:"id"`
	EventID    string          `json:"event_id"`
	RecordedBy string          `json:"recorded_by"`
	SplitCount int             `json:"split_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	IsSettled  bool            `json:"is_settled"`
	Balances   Balances        `json:"balances"`
	Transfers  []Transfer      `json:"transfers"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewBalanceSnapshot captures summary as recorded by userID.
func NewBalanceSnapshot(summary *EventSummary, userID string, now time.Time) *BalanceSnapshot {
	transfers := summary.Transfers
	if transfers == nil {
		transfers = []Transfer{}
	}
	return &BalanceSnapshot{
		ID:         uuid.New(),
		EventID:    summary.EventID,
		RecordedBy: userID,
		SplitCount: summary.SplitCount,
		TotalSpent: summary.TotalSpent,
		IsSettled:  summary.IsSettled,
		Balances:   summary.Balances,
		Transfers:  transfers,
		CreatedAt:  now,
	}
}
