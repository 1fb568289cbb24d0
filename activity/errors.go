/*
errors.go - Centralized error types for the activity engine

PURPOSE:
  All error types in one place. Callers classify failures with errors.Is
  and the predicates below; nothing in this package panics or swallows a
  store error on a write path.

ERROR CATEGORIES:
  1. Auth errors   - Missing user identity (fail fast, never retried)
  2. Domain errors - Benign conflicts, missing rows
  3. Store errors  - Transient backend failures, surfaced to the caller
  4. Input errors  - Malformed years/dates/week starts

SEE ALSO:
  - ledger.go:  Write-path propagation rules
  - service.go: Read-path degradation rules
*/
package activity

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotAuthenticated is returned when no user identity was supplied.
	// Every operation in this package fails fast on it; none retry.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrConflict is returned on a duplicate CompletionLog insert for the
	// same (entity, date). Benign: it means "already complete", and toggle
	// paths normalize it rather than surfacing it.
	ErrConflict = errors.New("completion already recorded")

	// ErrNotFound is returned when a referenced log or rollup doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps transient backend failures. The caller owns
	// the retry policy: at most a single authoritative re-fetch, never an
	// unbounded loop inside this package.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidRange is returned for malformed calendar input. Fatal to the
	// call, not recoverable.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidKind is returned for an entity kind outside {habit, task}.
	ErrInvalidKind = errors.New("invalid entity kind")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RangeError reports which calendar input was malformed.
type RangeError struct {
	Field string
	Value string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: %s=%q", e.Field, e.Value)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// StoreError wraps a backend failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store unavailable: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return ErrStoreUnavailable }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid caller input
// rather than a backend failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrConflict)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable reports whether the error is a transient store failure that
// a single caller-driven re-fetch might resolve.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
