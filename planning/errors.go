/*
errors.go - Centralized error types for the planning engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Service packages wrap these errors with additional context; the API
  layer maps the predicates at the bottom onto HTTP status codes.

ERROR CATEGORIES:
  1. Validation errors - The request itself is malformed (bad quantity, bad date)
  2. Conflict errors   - The request is well-formed but the state refuses it
  3. Not-found errors  - A referenced component or order does not exist

USAGE:
  Callers distinguish categories, not individual failures:

    if planning.IsConflict(err) {
        // another receipt already won; surface 409
    }

SEE ALSO:
  - ledger.go: Uses the duplicate receipt errors
  - orders.go: Purchase order status transitions
*/
package planning

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrOrderNotFound is returned when a referenced purchase order doesn't exist.
	ErrOrderNotFound = errors.New("purchase order not found")

	// ErrOrderNotPending is returned when a lifecycle action requires a pending
	// order but the order has already been received or cancelled.
	ErrOrderNotPending = errors.New("purchase order is not pending")

	// ErrComponentNotFound is returned when a referenced component doesn't exist.
	ErrComponentNotFound = errors.New("component not found")

	// ErrInvalidQuantity is returned when a quantity is zero or negative where
	// a positive amount is required.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidDate is returned when a date cannot be parsed or is missing.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInsufficientStock is returned when an operation would drive on-hand
	// inventory negative where that is not allowed (e.g., undoing a receipt
	// after the stock has been consumed).
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateOrderNumber is returned when creating a purchase order whose
	// number already exists.
	ErrDuplicateOrderNumber = errors.New("duplicate purchase order number")

	// ErrDuplicateReceipt is returned when a second po_receipt event is
	// appended for the same purchase order. Exactly one receipt may exist.
	ErrDuplicateReceipt = errors.New("purchase order already has a receipt")

	// ErrDuplicateEvent is returned when an event with the same ID already
	// exists. Expected behavior for retried writes.
	ErrDuplicateEvent = errors.New("duplicate event id")

	// ErrInvalidPeriod is returned when a window is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrUnknownEventType is returned when an event carries a type outside the
	// closed set.
	ErrUnknownEventType = errors.New("unknown event type")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a malformed request. Cause is one of the
// validation sentinels so errors.Is works through it.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// ConflictError reports a request refused by current state. Cause is one of
// the conflict sentinels.
type ConflictError struct {
	Order   OrderID
	Status  OrderStatus
	Message string
	Cause   error
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("order %s in status %q refuses the operation", e.Order, e.Status)
}

func (e *ConflictError) Unwrap() error { return e.Cause }

// DuplicateReceiptError reports a second receipt attempt against an order
// that already has one.
type DuplicateReceiptError struct {
	Order         OrderID
	ExistingEvent EventID
}

func (e *DuplicateReceiptError) Error() string {
	return fmt.Sprintf("receipt already recorded for order %s (event: %s)", e.Order, e.ExistingEvent)
}

func (e *DuplicateReceiptError) Unwrap() error { return ErrDuplicateReceipt }

// InvalidDateError reports an unparseable date string.
type InvalidDateError struct {
	Input string
	Cause error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q", e.Input)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// InsufficientStockError reports a reversal or consumption the current
// balance cannot cover.
type InsufficientStockError struct {
	Component ComponentID
	Available Quantity
	Requested Quantity
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %v, requested %v",
		e.Component, e.Available.Value, e.Requested.Value)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is due to a malformed request.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrUnknownEventType)
}

// IsConflict returns true if the error is due to state refusing the request.
func IsConflict(err error) bool {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return true
	}
	return errors.Is(err, ErrOrderNotPending) ||
		errors.Is(err, ErrDuplicateOrderNumber) ||
		errors.Is(err, ErrDuplicateReceipt) ||
		errors.Is(err, ErrDuplicateEvent)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrComponentNotFound)
}
