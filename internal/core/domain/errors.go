package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName indicates a handler name is already registered.
	ErrDuplicateName = errors.New("duplicate handler name")

	// ErrQueryRejected indicates the safe query gateway refused a query
	// at validation time. Always handler-local and recoverable, never a
	// crash.
	ErrQueryRejected = errors.New("query rejected")

	// ErrQueryTimeout indicates a query exceeded its wall-clock budget
	// and was cancelled without returning rows.
	ErrQueryTimeout = errors.New("query timeout")

	// ErrStoreUnavailable indicates the underlying data store cannot be
	// reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrHandlerTimeout indicates a handler exceeded its per-call budget.
	ErrHandlerTimeout = errors.New("handler timeout")

	// ErrLLMUnavailable indicates no language model service is
	// configured. Composition falls back to deterministic formatting.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// QueryRejectedError carries the specific validation failure reason.
// It unwraps to ErrQueryRejected so callers can match with errors.Is.
type QueryRejectedError struct {
	// Reason explains why the query was refused.
	Reason string
}

// Error implements the error interface.
func (e *QueryRejectedError) Error() string {
	return fmt.Sprintf("query rejected: %s", e.Reason)
}

// Unwrap allows errors.Is(err, ErrQueryRejected) to match.
func (e *QueryRejectedError) Unwrap() error {
	return ErrQueryRejected
}

// RejectQuery builds a QueryRejectedError with a formatted reason.
func RejectQuery(format string, args ...any) error {
	return &QueryRejectedError{Reason: fmt.Sprintf(format, args...)}
}
