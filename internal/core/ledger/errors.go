package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput matches every *ValidationError.
	ErrInvalidInput = errors.New("invalid ledger input")
	// ErrImbalancedLedger matches every *ImbalancedLedgerError.
	ErrImbalancedLedger = errors.New("imbalanced ledger")
)

// ValidationError describes malformed event input.
type ValidationError struct {
	SplitID string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.SplitID == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("split %s: %s: %s", e.SplitID, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ImbalancedLedgerError is returned when balances do not sum to zero.
// It signals upstream data corruption: money was created or destroyed.
type ImbalancedLedgerError struct {
	Sum decimal.Decimal
}

func (e *ImbalancedLedgerError) Error() string {
	return fmt.Sprintf("imbalanced ledger: balances sum to %s", e.Sum.String())
}

func (e *ImbalancedLedgerError) Is(target error) bool {
	return target == ErrImbalancedLedger
}
