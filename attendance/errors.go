/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers should use errors.Is / errors.As rather than string matching.

ERROR CATEGORIES:
  1. Input errors - Malformed month, invalid status (client's fault)
  2. Configuration errors - No default policy for a category (operator's fault)
  3. Apply-time conflicts - Stale client data, already-applied months

PROPAGATION POLICY:
  Batch operations (validate, apply, bulk-mark) return partial results with
  per-item outcomes. Only structurally invalid top-level input aborts the
  whole call (ErrInvalidMonth). ErrPolicyNotFound is fatal: a missing
  category default is a configuration bug, not a retryable condition.

SEE ALSO:
  - engine.go: Returns warnings instead of failing the batch
  - ledger.go: Reports conflicts per-entry, never raises them
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidMonth is returned for a malformed month string. The whole
	// call aborts; there is no partial report.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrPolicyNotFound is returned when no default policy exists for an
	// employee category. This is a configuration error, fatal and not retried.
	ErrPolicyNotFound = errors.New("no default policy for category")

	// ErrInvalidStatus is returned for a status outside the closed enum.
	ErrInvalidStatus = errors.New("invalid attendance status")

	// ErrEmployeeNotFound is returned when a referenced employee does not
	// exist in the directory.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrAlreadyApplied is returned by the ledger store when a penalty entry
	// already exists for the (employee, month) idempotency key. Apply treats
	// this as a reported no-op, never as a failure.
	ErrAlreadyApplied = errors.New("penalty already applied for month")

	// ErrStaleConflict is returned when a submitted penalty does not match
	// the server-side recomputation. The caller must re-validate and retry.
	ErrStaleConflict = errors.New("submitted penalty does not match recomputed value")

	// ErrRateNotFound is returned when no per-day penalty rate is configured
	// for an employee.
	ErrRateNotFound = errors.New("no penalty rate configured for employee")

	// ErrInvalidPolicy is returned when a policy fails validation
	// (grace bounds, check-in/check-out ordering).
	ErrInvalidPolicy = errors.New("invalid policy")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidMonthError reports a malformed month input.
type InvalidMonthError struct {
	Raw string
}

func (e *InvalidMonthError) Error() string {
	return fmt.Sprintf("invalid month %q (use YYYY-MM)", e.Raw)
}

func (e *InvalidMonthError) Unwrap() error { return ErrInvalidMonth }

// InvalidStatusError reports a status outside the closed enum.
type InvalidStatusError struct {
	Raw string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid attendance status %q", e.Raw)
}

func (e *InvalidStatusError) Unwrap() error { return ErrInvalidStatus }

// PolicyNotFoundError reports a missing category default.
type PolicyNotFoundError struct {
	Category Category
}

func (e *PolicyNotFoundError) Error() string {
	return fmt.Sprintf("no default attendance policy for category %q", e.Category)
}

func (e *PolicyNotFoundError) Unwrap() error { return ErrPolicyNotFound }

// StaleConflictError reports the mismatch between submitted and recomputed
// penalty values for an apply entry.
type StaleConflictError struct {
	EmployeeID        EmployeeID
	Month             Month
	SubmittedDays     int
	RecomputedDays    int
	SubmittedAmount   Money
	RecomputedAmount  Money
}

func (e *StaleConflictError) Error() string {
	return fmt.Sprintf("stale penalty for %s %s: submitted %d days / %s, recomputed %d days / %s",
		e.EmployeeID, e.Month, e.SubmittedDays, e.SubmittedAmount, e.RecomputedDays, e.RecomputedAmount)
}

func (e *StaleConflictError) Unwrap() error { return ErrStaleConflict }

// PolicyValidationError reports which field of a policy failed validation.
type PolicyValidationError struct {
	Field   string
	Message string
}

func (e *PolicyValidationError) Error() string {
	return fmt.Sprintf("invalid policy: %s %s", e.Field, e.Message)
}

func (e *PolicyValidationError) Unwrap() error { return ErrInvalidPolicy }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidPolicy) ||
		errors.Is(err, ErrStaleConflict)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRateNotFound)
}

// IsFatalConfig returns true for configuration errors that should surface
// as 5xx and never be retried.
func IsFatalConfig(err error) bool {
	return errors.Is(err, ErrPolicyNotFound)
}
