package domain

import "github.com/shopspring/decimal"

// Balance is a participant's net position.
// Positive means the participant is owed money, negative means they owe money.
type Balance struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Balances is an ordered balance mapping, one entry per declared participant.
type Balances []Balance

// Get returns the balance for userID.
func (b Balances) Get(userID string) (decimal.Decimal, bool) {
	for _, entry := range b {
		if entry.UserID == userID {
			return entry.Amount, true
		}
	}
	return decimal.Zero, false
}

// Sum returns the sum of all balances. Zero for a consistent ledger.
func (b Balances) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, entry := range b {
		sum = sum.Add(entry.Amount)
	}
	return sum
}

// Map returns the balances keyed by user ID.
func (b Balances) Map() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(b))
	for _, entry := range b {
		m[entry.UserID] = entry.Amount
	}
	return m
}

// Transfer is a suggested payment that moves balances toward zero.
type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// EventSummary is everything the dashboard renders for one event.
// Transfers is nil when the ledger is imbalanced; Imbalance then holds the offending sum.
type EventSummary struct {
	EventID      string           `json:"event_id"`
	EventName    string           `json:"event_name"`
	Dismissed    bool             `json:"dismissed"`
	Participants []Participant    `json:"participants"`
	SplitCount   int              `json:"split_count"`
	TotalSpent   decimal.Decimal  `json:"total_spent"`
	Balances     Balances         `json:"balances"`
	IsSettled    bool             `json:"is_settled"`
	Transfers    []Transfer       `json:"transfers,omitempty"`
	Imbalance    *decimal.Decimal `json:"imbalance,omitempty"`
}

// IsBalanced returns true if the transfer plan could be computed.
func (s *EventSummary) IsBalanced() bool {
	return s.Imbalance == nil
}
