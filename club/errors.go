/*
errors.go - Centralized error taxonomy for the club engine

PURPOSE:
  All error categories in one place. Pure computation in this module never
  returns these for malformed-but-present data (it degrades to defaults);
  only side-effecting operations (create/update/delete/upload) surface them.

ERROR CATEGORIES:
  ValidationError  - bad local input, caught before any network call
  ConflictError    - upstream rejected a uniqueness/state constraint
  NotFoundError    - referenced entity no longer exists upstream
  TransportError   - network failure, timeout or unexpected status
  IntegrityWarning - NON-FATAL: a local join could not resolve a reference;
                     logged, the entry is dropped, processing continues

USAGE:
  Callers should match with errors.Is against the sentinels:

    if errors.Is(err, club.ErrNotFound) { ... }

SEE ALSO:
  - clubapi: maps HTTP responses onto this taxonomy
  - enrollment: emits IntegrityWarnings for orphaned enrollments
*/
package club

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when local input fails validation before
	// any network round trip is attempted.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when the upstream rejects a mutation due to a
	// uniqueness or state constraint (duplicate enrollment, already paid).
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned when a referenced entity no longer exists
	// upstream.
	ErrNotFound = errors.New("not found")

	// ErrTransport is returned for network failures, timeouts and
	// unexpected upstream statuses.
	ErrTransport = errors.New("transport failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a local input problem, field by field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d field(s))", e.Message, len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError with optional field details.
func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// ConflictError describes an upstream constraint rejection.
type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError identifies the missing entity.
type NotFoundError struct {
	Resource string
	ID       ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TransportError wraps the underlying network or decoding failure.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return ErrTransport }

// IntegrityWarning is NOT an error in the control-flow sense: derived views
// drop the offending entry and keep going. It exists as a type so callers
// can log the data-integrity signal uniformly.
type IntegrityWarning struct {
	Kind    string // e.g. "orphaned_enrollment", "end_before_start"
	Detail  string
	Subject ID
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("%s: %s (subject %s)", w.Kind, w.Detail, w.Subject)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable reports whether the operation might succeed if retried as-is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsClientError reports whether the failure is due to the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict)
}

// IsNotFound reports whether the failure is a missing upstream entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
