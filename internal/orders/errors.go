package orders

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError means the request itself is malformed; retrying the
// same request cannot succeed.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// NotFoundError means a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InsufficientStockError carries enough context for the caller to retry
// with a reduced quantity.
type InsufficientStockError struct {
	ProductID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %s, available %s",
		e.ProductID, e.Requested, e.Available)
}

// StorageError wraps a backing-store failure. The transaction is rolled
// back before it surfaces, so the caller may treat it as retryable.
type StorageError struct {
	Err error
}

func (e StorageError) Error() string { return fmt.Sprintf("storage failure: %v", e.Err) }
func (e StorageError) Unwrap() error { return e.Err }
