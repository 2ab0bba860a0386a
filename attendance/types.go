/*
Package attendance provides the attendance policy validation and penalty engine.

PURPOSE:
  This package contains the domain types and algorithms for reconciling raw
  attendance events against configurable work-time policies: lateness and
  grace-day aggregation over a month, monetary penalty computation, and
  exactly-once penalty application to a payroll-affecting ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - WorkStatus: Closed enum of attendance statuses (present, absent, ...)
  - Money: A decimal currency amount (never float)
  - EmployeeID / Category: Type-safe identifiers
  - RecordSource: Who wrote an attendance record (HR vs self-check-in)

DESIGN PRINCIPLES:
  1. Purity: Validation is a pure function of policy + records
  2. Precision: Uses decimal.Decimal for all monetary amounts
  3. Type Safety: Closed status enum with exhaustive matching
  4. Idempotency: Penalty application keyed by (employee, month)

SEE ALSO:
  - policy.go: Policy definitions and resolution
  - engine.go: Monthly validation engine
  - ledger.go: Idempotent penalty ledger
*/
package attendance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string

// Category scopes default policies. An employee belongs to exactly one
// category, derived from department/role in the employee directory.
type Category string

const (
	CategoryConsulting    Category = "consulting"
	CategoryNonConsulting Category = "non_consulting"
)

func (c Category) Valid() bool {
	return c == CategoryConsulting || c == CategoryNonConsulting
}

// =============================================================================
// WORK STATUS - Closed attendance status enum
// =============================================================================

type WorkStatus string

const (
	StatusPresent      WorkStatus = "present"
	StatusAbsent       WorkStatus = "absent"
	StatusHalfDay      WorkStatus = "half_day"
	StatusWorkFromHome WorkStatus = "work_from_home"
	StatusOnLeave      WorkStatus = "on_leave"
	StatusHoliday      WorkStatus = "holiday"
)

// AllStatuses returns every valid work status.
func AllStatuses() []WorkStatus {
	return []WorkStatus{
		StatusPresent, StatusAbsent, StatusHalfDay,
		StatusWorkFromHome, StatusOnLeave, StatusHoliday,
	}
}

// ParseStatus converts a raw string to a WorkStatus.
// Returns ErrInvalidStatus for anything outside the closed set.
func ParseStatus(s string) (WorkStatus, error) {
	status := WorkStatus(s)
	for _, known := range AllStatuses() {
		if status == known {
			return status, nil
		}
	}
	return "", &InvalidStatusError{Raw: s}
}

// =============================================================================
// RECORD SOURCE - Write precedence between HR and self-check-in
// =============================================================================

// RecordSource tags who created an attendance record. HR-originated writes
// take precedence: a self-check-in never overwrites an HR row for the same
// (employee, date).
type RecordSource string

const (
	SourceSelf  RecordSource = "self"
	SourceHR    RecordSource = "hr"
	SourceLeave RecordSource = "leave" // leave-approval side-effect (external)
)

// Outranks reports whether a write from source s may replace an existing
// record written by prior.
func (s RecordSource) Outranks(prior RecordSource) bool {
	if s == SourceHR {
		return true
	}
	return prior != SourceHR
}

// =============================================================================
// MONEY - Currency amount backed by decimal
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money          { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int) Money       { return Money{Value: decimal.NewFromInt(int64(value))} }
func ZeroMoney() Money                      { return Money{Value: decimal.Zero} }
func (m Money) Add(o Money) Money           { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool          { return m.Value.Equal(o.Value) }
func (m Money) Float64() float64            { f, _ := m.Value.Float64(); return f }
func (m Money) String() string              { return m.Value.StringFixed(2) }

// RoundCurrency rounds to the smallest currency unit (2 decimal places)
// using round-half-up.
func (m Money) RoundCurrency() Money {
	return Money{Value: m.Value.Round(2)}
}

// ParseMoney parses a decimal string.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney(), fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{Value: d}, nil
}

// MustParseMoney parses a decimal string, returning zero on failure.
// Used when scanning stored amounts that were written by this package.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney()
	}
	return Money{Value: d}
}

// =============================================================================
// VALIDATION STATUS - Outcome of a monthly validation per employee
// =============================================================================

type ValidationStatus string

const (
	ValidationClean          ValidationStatus = "clean"
	ValidationPenaltyPending ValidationStatus = "penalty_pending"
	ValidationApplied        ValidationStatus = "applied"
)
