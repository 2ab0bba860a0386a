/*
store.go - Persistence interfaces for the attendance engine

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  RecordStore:       Attendance records, upserted per (employee, date)
  PolicyStore:       Category defaults + per-employee overrides
  LedgerStore:       Applied penalties, append-only per (employee, month)
  EmployeeDirectory: Read-only employee master attributes
  RateSource:        Per-day penalty rates (external payroll configuration)

IDEMPOTENCY:
  LedgerStore.InsertEntry must enforce the (employee, month) uniqueness at the
  storage layer - a unique-constraint insert, not an application-level
  check-then-write. Two concurrent Apply calls for the same employee/month
  must not both succeed.

UPSERT PRECEDENCE:
  RecordStore.UpsertRecord applies the source precedence rule: an HR write always
  replaces the existing row; a self-check-in write never replaces an HR row
  for the same key. Each upsert is atomic per (employee, date).

IMPLEMENTATIONS:
  - store/sqlite:           Production SQLite
  - attendance/store:       In-memory for testing/dev
*/
package attendance

import (
	"context"
	"time"
)

// =============================================================================
// RECORD STORE
// =============================================================================

// UpsertOutcome reports what a single record upsert did.
type UpsertOutcome string

const (
	UpsertCreated UpsertOutcome = "created"
	UpsertUpdated UpsertOutcome = "updated"
	UpsertSkipped UpsertOutcome = "skipped" // lower-precedence write against an HR row
)

// RecordStore persists attendance records, one per (employee, date).
type RecordStore interface {
	// UpsertRecord writes a record, applying source precedence atomically.
	UpsertRecord(ctx context.Context, rec AttendanceRecord) (UpsertOutcome, error)

	// GetRecord returns the record for (employee, date), or nil if none.
	GetRecord(ctx context.Context, employeeID EmployeeID, date time.Time) (*AttendanceRecord, error)

	// ListRecordsByMonth returns all records in the month, ordered by
	// employee then date.
	ListRecordsByMonth(ctx context.Context, month Month) ([]AttendanceRecord, error)

	// ListEmployeeRecords returns one employee's records in the month, by date.
	ListEmployeeRecords(ctx context.Context, employeeID EmployeeID, month Month) ([]AttendanceRecord, error)
}

// =============================================================================
// POLICY STORE
// =============================================================================

// PolicyStore persists category defaults and per-employee overrides.
type PolicyStore interface {
	// GetDefaultPolicy returns the active default for a category, nil if none.
	GetDefaultPolicy(ctx context.Context, category Category) (*AttendancePolicy, error)

	// ListDefaultPolicies returns all active category defaults.
	ListDefaultPolicies(ctx context.Context) ([]AttendancePolicy, error)

	// SaveDefaultPolicy replaces the active default for its category.
	SaveDefaultPolicy(ctx context.Context, policy AttendancePolicy) error

	// GetOverride returns the active override for an employee, nil if none.
	GetOverride(ctx context.Context, employeeID EmployeeID) (*CustomPolicyOverride, error)

	// ListOverrides returns all active overrides.
	ListOverrides(ctx context.Context) ([]CustomPolicyOverride, error)

	// SaveOverride replaces any prior override for the employee.
	SaveOverride(ctx context.Context, override CustomPolicyOverride) error

	// DeleteOverride removes an employee's override. Deleting a missing
	// override is not an error; resolution falls back to the default.
	DeleteOverride(ctx context.Context, employeeID EmployeeID) error
}

// =============================================================================
// LEDGER STORE
// =============================================================================

// LedgerStore persists applied penalties. Append-only: entries are never
// updated or deleted (administrative resets are out of scope).
type LedgerStore interface {
	// InsertEntry persists an entry. Returns ErrAlreadyApplied when an entry
	// for (entry.EmployeeID, entry.Month) already exists; the uniqueness must
	// be enforced by the storage layer, not checked in application code.
	InsertEntry(ctx context.Context, entry PenaltyLedgerEntry) error

	// GetEntry returns the entry for (employee, month), or nil if none.
	GetEntry(ctx context.Context, employeeID EmployeeID, month Month) (*PenaltyLedgerEntry, error)

	// ListEntriesByMonth returns all entries for the month, ordered by employee.
	ListEntriesByMonth(ctx context.Context, month Month) ([]PenaltyLedgerEntry, error)
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// EmployeeDirectory is the read side of employee master data. CRUD on
// employees is an external collaborator; the engine only reads.
type EmployeeDirectory interface {
	// GetEmployee returns an employee by ID, or nil if unknown.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	// ListActiveEmployees returns all employees with active employment.
	ListActiveEmployees(ctx context.Context) ([]Employee, error)
}

// =============================================================================
// RATE SOURCE
// =============================================================================

// RateSource provides the per-day penalty rate for an employee. Rates come
// from payroll configuration, which is external; this interface is the seam.
type RateSource interface {
	// PerDayRate returns the monetary deduction per penalty day.
	// Returns ErrRateNotFound when no rate is configured.
	PerDayRate(ctx context.Context, employeeID EmployeeID) (Money, error)
}
