package circulation

import (
	"errors"
	"fmt"
)

// Error sentinels forming the circulation error taxonomy. Every error returned
// by a decision or storage operation wraps exactly one of these, so callers
// can classify failures with errors.Is and map them to transport status codes.
var (
	// ErrNotFound signals that a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation signals malformed or missing operation input.
	ErrValidation = errors.New("validation failed")

	// ErrIneligible signals a business rule that blocks the operation.
	ErrIneligible = errors.New("ineligible")

	// ErrConflict signals a state collision, such as a duplicate issued loan
	// or a reservation held by another member.
	ErrConflict = errors.New("conflict")

	// ErrMisconfiguration signals missing or invalid policy configuration.
	ErrMisconfiguration = errors.New("misconfiguration")

	// ErrInvalidState signals an operation applied to a record in the wrong
	// lifecycle state, such as returning an already returned loan.
	ErrInvalidState = errors.New("invalid state")

	// ErrConcurrencyConflict signals that a guarded row changed between the
	// snapshot read and the transactional apply. Handlers retry on it.
	ErrConcurrencyConflict = errors.New("concurrency conflict, a guarded row was modified concurrently")
)

// NotFoundError builds an ErrNotFound with an operator-facing message.
func NotFoundError(format string, args ...any) error {
	return errors.Join(ErrNotFound, fmt.Errorf(format, args...))
}

// ValidationError builds an ErrValidation with an operator-facing message.
func ValidationError(format string, args ...any) error {
	return errors.Join(ErrValidation, fmt.Errorf(format, args...))
}

// IneligibleError builds an ErrIneligible with an operator-facing message.
func IneligibleError(format string, args ...any) error {
	return errors.Join(ErrIneligible, fmt.Errorf(format, args...))
}

// ConflictError builds an ErrConflict with an operator-facing message.
func ConflictError(format string, args ...any) error {
	return errors.Join(ErrConflict, fmt.Errorf(format, args...))
}

// MisconfigurationError builds an ErrMisconfiguration with an operator-facing message.
func MisconfigurationError(format string, args ...any) error {
	return errors.Join(ErrMisconfiguration, fmt.Errorf(format, args...))
}

// InvalidStateError builds an ErrInvalidState with an operator-facing message.
func InvalidStateError(format string, args ...any) error {
	return errors.Join(ErrInvalidState, fmt.Errorf(format, args...))
}
