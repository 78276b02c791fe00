package domain

import "fmt"

// Error types for consistent error handling across the service.
// All are non-fatal: the ledger and every account stay usable after any
// of these is returned.

// ErrInvalidAmount indicates a non-positive amount was supplied.
type ErrInvalidAmount struct {
	Amount float64
}

func (e *ErrInvalidAmount) Error() string {
	return fmt.Sprintf("invalid amount: %.2f (must be > 0)", e.Amount)
}

// ErrInsufficientFunds indicates a withdrawal exceeds the current balance.
type ErrInsufficientFunds struct {
	Available float64
	Required  float64
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: available=%.2f required=%.2f", e.Available, e.Required)
}

// ErrAccountNotFound indicates an operation references an unknown account id.
type ErrAccountNotFound struct {
	ID string
}

func (e *ErrAccountNotFound) Error() string {
	return fmt.Sprintf("account not found: %s", e.ID)
}

// ErrNothingToUndo indicates undo was requested with an empty history.
type ErrNothingToUndo struct{}

func (e *ErrNothingToUndo) Error() string {
	return "nothing to undo"
}

// ErrUndoRejected indicates the inverse of the most recent operation could
// not be applied; the operation remains on history unchanged.
type ErrUndoRejected struct {
	Operation string
	Err       error
}

func (e *ErrUndoRejected) Error() string {
	return fmt.Sprintf("undo rejected [%s]: %v", e.Operation, e.Err)
}

func (e *ErrUndoRejected) Unwrap() error {
	return e.Err
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}
