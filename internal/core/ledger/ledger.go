// Package ledger turns an event's participants and splits into net balances,
// a settlement status and a simplified transfer plan.
//
// Everything here is a pure function over its arguments: no I/O, no logging,
// no shared state. Callers may invoke it concurrently across events.
package ledger

import (
	"errors"

	"ledgersplit/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Tolerance is the rounding slack, in currency units, used for every
// "is this zero" decision.
var Tolerance = decimal.New(1, -2)

func withinTolerance(v decimal.Decimal) bool {
	return v.Abs().LessThan(Tolerance)
}

// ComputeBalances returns each declared participant's net balance, in
// declared order. Payers and shares that reference undeclared participants
// are skipped.
func ComputeBalances(participantIDs []string, splits []domain.Split) domain.Balances {
	balances := make(domain.Balances, 0, len(participantIDs))
	index := make(map[string]int, len(participantIDs))
	for _, id := range participantIDs {
		if _, dup := index[id]; dup {
			continue
		}
		index[id] = len(balances)
		balances = append(balances, domain.Balance{UserID: id, Amount: decimal.Zero})
	}

	for _, s := range splits {
		if i, ok := index[s.PaidBy]; ok {
			balances[i].Amount = balances[i].Amount.Add(s.Amount)
		}
		for _, share := range s.Shares {
			if i, ok := index[share.UserID]; ok {
				balances[i].Amount = balances[i].Amount.Sub(share.AmountOwed)
			}
		}
	}

	return balances
}

// IsSettled reports whether every balance is within Tolerance of zero.
// An event without splits is never settled.
func IsSettled(balances domain.Balances, splitCount int) bool {
	if splitCount == 0 {
		return false
	}
	return allWithinTolerance(balances)
}

// Summarize validates the event and derives its full summary.
// An imbalanced ledger is reported through EventSummary.Imbalance, not as an error.
func Summarize(e *domain.Event) (*domain.EventSummary, error) {
	if err := Validate(e); err != nil {
		return nil, err
	}

	balances := ComputeBalances(e.ParticipantIDs(), e.Splits)
	summary := &domain.EventSummary{
		EventID:      e.ID,
		EventName:    e.Name,
		Dismissed:    e.Dismissed,
		Participants: e.Participants,
		SplitCount:   len(e.Splits),
		TotalSpent:   e.TotalSpent(),
		Balances:     balances,
		IsSettled:    IsSettled(balances, len(e.Splits)),
	}

	transfers, err := SimplifyTransfers(balances)
	var imbalanced *ImbalancedLedgerError
	switch {
	case errors.As(err, &imbalanced):
		sum := imbalanced.Sum
		summary.Imbalance = &sum
	case err != nil:
		return nil, err
	default:
		summary.Transfers = transfers
	}

	return summary, nil
}
