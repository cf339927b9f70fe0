// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the costing engine. Callers branch on these
// with errors.Is; none of them is ever downgraded to a default value.
var (
	// ErrNotFound indicates a referenced product or batch does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrBatchInUse rejects deleting a batch that has recorded consumption.
	// The cost basis attached to historical sales must survive.
	ErrBatchInUse = errors.New("batch has recorded consumption")

	// ErrInsufficientStock rejects a consumption larger than the product's
	// total available quantity. No batch is mutated when it is returned.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConcurrencyConflict surfaces a lost update detected by the
	// persistence layer after the internal retry has been exhausted.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// ValidationError describes malformed input to a lifecycle operation.
// The caller corrects the named field and retries.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
