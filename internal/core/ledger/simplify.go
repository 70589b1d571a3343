package ledger

import (
	"sort"

	"ledgersplit/internal/core/domain"

	"github.com/shopspring/decimal"
)

type party struct {
	pos       int
	userID    string
	remaining decimal.Decimal // magnitude still to pay or receive
}

type plannedTransfer struct {
	from, to int
	transfer domain.Transfer
}

// SimplifyTransfers suggests payments that bring every balance to zero.
//
// The largest debtor is repeatedly matched with the largest creditor; equal
// magnitudes go to the participant listed first. The result is ordered by
// debtor position, then creditor position, and holds at most
// len(balances)-1 transfers. Balances that do not sum to zero within
// Tolerance yield an *ImbalancedLedgerError.
//
// Sub-tolerance balances still take part in matching, since several of them
// can add up to a real debt. A party leaves the pool only once its remaining
// amount is within Tolerance. Settled balances produce no transfers.
func SimplifyTransfers(balances domain.Balances) ([]domain.Transfer, error) {
	if sum := balances.Sum(); !withinTolerance(sum) {
		return nil, &ImbalancedLedgerError{Sum: sum}
	}
	if allWithinTolerance(balances) {
		return []domain.Transfer{}, nil
	}

	var debtors, creditors []*party
	for i, b := range balances {
		switch {
		case b.Amount.IsZero():
		case b.Amount.IsNegative():
			debtors = append(debtors, &party{pos: i, userID: b.UserID, remaining: b.Amount.Neg()})
		default:
			creditors = append(creditors, &party{pos: i, userID: b.UserID, remaining: b.Amount})
		}
	}

	var planned []plannedTransfer
	for len(debtors) > 0 && len(creditors) > 0 {
		di, ci := largest(debtors), largest(creditors)
		debtor, creditor := debtors[di], creditors[ci]

		amount := decimal.Min(debtor.remaining, creditor.remaining)
		planned = append(planned, plannedTransfer{
			from: debtor.pos,
			to:   creditor.pos,
			transfer: domain.Transfer{
				From:   debtor.userID,
				To:     creditor.userID,
				Amount: amount,
			},
		})

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)
		if withinTolerance(debtor.remaining) {
			debtors = remove(debtors, di)
		}
		if withinTolerance(creditor.remaining) {
			creditors = remove(creditors, ci)
		}
	}

	sort.SliceStable(planned, func(i, j int) bool {
		if planned[i].from != planned[j].from {
			return planned[i].from < planned[j].from
		}
		return planned[i].to < planned[j].to
	})

	transfers := make([]domain.Transfer, 0, len(planned))
	for _, p := range planned {
		transfers = append(transfers, p.transfer)
	}
	return transfers, nil
}

func allWithinTolerance(balances domain.Balances) bool {
	for _, b := range balances {
		if !withinTolerance(b.Amount) {
			return false
		}
	}
	return true
}

// largest returns the index of the party with the greatest remaining
// magnitude; the earliest one wins ties.
func largest(parties []*party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		if parties[i].remaining.GreaterThan(parties[best].remaining) {
			best = i
		}
	}
	return best
}

func remove(parties []*party, i int) []*party {
	return append(parties[:i], parties[i+1:]...)
}
