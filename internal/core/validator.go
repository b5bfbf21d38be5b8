package core

import (
	"fmt"
	"time"
)

// Validator inspects a transaction before it is stored. The store accepts
// anything when no validator is installed.
type Validator func(Transaction) error

// StrictValidator rejects negative amounts, unknown types, unparseable dates
// and expenses without tags.
func StrictValidator(loc *time.Location) Validator {
	return func(tx Transaction) error {
		if !tx.Type.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidType, tx.Type)
		}
		if tx.Amount < 0 {
			return ErrInvalidAmount
		}
		if _, err := ParseDate(tx.Date, loc); err != nil {
			return err
		}
		if tx.Type == Expense && len(tx.Tags) == 0 {
			return ErrMissingTag
		}
		return nil
	}
}
