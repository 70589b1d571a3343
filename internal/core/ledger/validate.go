package ledger

import (
	"fmt"
	"strconv"

	"ledgersplit/internal/core/domain"
)

// Validate rejects malformed event input before accumulation.
// Unknown participant references are not errors; see ComputeBalances.
func Validate(e *domain.Event) error {
	if e == nil {
		return &ValidationError{Field: "event", Reason: "missing"}
	}

	for i := range e.Splits {
		if err := validateSplit(&e.Splits[i], i); err != nil {
			return err
		}
	}
	return nil
}

func validateSplit(s *domain.Split, pos int) error {
	ref := s.ID
	if ref == "" {
		ref = "#" + strconv.Itoa(pos)
	}

	if s.Amount.IsNegative() {
		return &ValidationError{SplitID: ref, Field: "amount", Reason: "must not be negative"}
	}

	for _, share := range s.Shares {
		if share.AmountOwed.IsNegative() {
			return &ValidationError{
				SplitID: ref,
				Field:   "amount_owed",
				Reason:  fmt.Sprintf("must not be negative (participant %q)", share.UserID),
			}
		}
	}

	total := s.SharesTotal()
	if !withinTolerance(total.Sub(s.Amount)) {
		return &ValidationError{
			SplitID: ref,
			Field:   "split_participants",
			Reason:  fmt.Sprintf("shares sum to %s, expected %s", total.String(), s.Amount.String()),
		}
	}
	return nil
}
