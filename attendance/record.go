package attendance

import "time"

// =============================================================================
// ATTENDANCE RECORD - One row per (employee, date)
// =============================================================================

// AttendanceRecord is a single day's attendance for one employee. Records
// are upserted, never duplicated per (employee, date). They originate from
// self-check-in, HR bulk marking, or leave-approval side-effects.
type AttendanceRecord struct {
	ID           string
	EmployeeID   EmployeeID
	Date         time.Time // day granularity, UTC
	CheckIn      *time.Time
	CheckOut     *time.Time
	Status       WorkStatus
	WorkLocation string
	Source       RecordSource
	UpdatedAt    time.Time
}

// CountsAsWorkingDayExclusion reports whether the record removes its date
// from the working-day denominator. Holiday and approved leave days are not
// measured; they are neither present nor absent.
func (r AttendanceRecord) CountsAsWorkingDayExclusion() bool {
	return r.Status == StatusHoliday || r.Status == StatusOnLeave
}

// =============================================================================
// EMPLOYEE - Directory entry (master data is an external concern; only the
// attributes the engine needs are modeled here)
// =============================================================================

type Employee struct {
	ID         EmployeeID
	Name       string
	Code       string
	Department string
	Category   Category
	Active     bool
}

// =============================================================================
// PENALTY LEDGER ENTRY - Applied penalty, at most one per (employee, month)
// =============================================================================

// PenaltyLedgerEntry is an applied monthly penalty. The (employee, month)
// pair is the idempotency key, enforced by a unique constraint at the
// storage layer.
type PenaltyLedgerEntry struct {
	ID          string
	EmployeeID  EmployeeID
	Month       Month
	PenaltyDays int
	Amount      Money
	AppliedAt   time.Time
	AppliedBy   string
}

// =============================================================================
// VALIDATION RESULT - Derived, recomputable, persisted only via the ledger
// =============================================================================

// ValidationResult is a pure function of policy + records for one employee
// and month. Recomputing with the same inputs yields identical output,
// except that Status becomes applied once a ledger entry exists.
type ValidationResult struct {
	EmployeeID        EmployeeID
	Month             Month
	PresentDays       int
	AbsentDays        int
	HalfDays          int
	WFHDays           int
	LateDays          int
	GraceDaysUsed     int
	GraceDaysAllowed  int
	PenaltyDays       int
	PendingPenalty    Money
	Status            ValidationStatus
	HasCustomPolicy   bool
}
