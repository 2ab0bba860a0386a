/*
policy.go - Work-time policy definitions and resolution

PURPOSE:
  Defines the rules an employee's attendance is measured against: check-in
  and check-out boundaries, the per-day grace period, the monthly grace-day
  allowance, and the working-week shape. Resolution maps (employee, date)
  to exactly one effective policy.

KEY CONCEPTS:
  - AttendancePolicy: The category default (consulting / non_consulting)
  - CustomPolicyOverride: An employee-specific replacement, at most one active
  - EffectivePolicy: What the validation engine actually measures against
  - Resolver: override-first lookup with a per-run cache

PRECEDENCE:
  A custom override takes strict precedence over the category default.
  An override carries no working-day set, so the default's working days
  (and WFH exemption) continue to apply underneath it. Deleting the
  override reverts the employee to the category default.

GRACE SEMANTICS:
  Grace period: per-day allowed lateness (minutes) before a day is "late".
  Grace days:   late days per month tolerated before penalties begin.
  Grace days are consumed, not capped for reporting:
    penalty_days     = max(0, late_days - grace_days_allowed)
    grace_days_used  = min(late_days, grace_days_allowed)
*/
package attendance

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// ATTENDANCE POLICY - Category default
// =============================================================================

// AttendancePolicy is the default work-time policy for one employee
// category. One active version at a time; updated only via explicit admin
// action, and always passed into each validation run as a value rather than
// held as ambient global state.
type AttendancePolicy struct {
	Category           Category
	CheckIn            ClockTime
	CheckOut           ClockTime
	GracePeriodMinutes int
	GraceDaysPerMonth  int
	WorkingDays        WeekdaySet

	// ExemptWFH exempts work_from_home records from the lateness check.
	// When false, WFH is measured identically to present.
	ExemptWFH bool

	Version   int
	UpdatedAt time.Time
}

// Validate enforces the structural policy invariants shared by defaults
// and overrides.
func (p AttendancePolicy) Validate() error {
	if err := validatePolicyFields(p.CheckIn, p.CheckOut, p.GracePeriodMinutes, p.GraceDaysPerMonth); err != nil {
		return err
	}
	if !p.Category.Valid() {
		return &PolicyValidationError{Field: "category", Message: "must be consulting or non_consulting"}
	}
	if p.WorkingDays.IsEmpty() {
		return &PolicyValidationError{Field: "working_days", Message: "must not be empty"}
	}
	return nil
}

func validatePolicyFields(checkIn, checkOut ClockTime, graceMinutes, graceDays int) error {
	if graceMinutes < 0 || graceMinutes > 60 {
		return &PolicyValidationError{Field: "grace_period_minutes", Message: "must be in [0,60]"}
	}
	if graceDays < 0 || graceDays > 10 {
		return &PolicyValidationError{Field: "grace_days_per_month", Message: "must be in [0,10]"}
	}
	if checkIn >= checkOut {
		return &PolicyValidationError{Field: "check_in_time", Message: "must be before check_out_time"}
	}
	return nil
}

// =============================================================================
// CUSTOM POLICY OVERRIDE - Employee-specific replacement
// =============================================================================

// CustomPolicyOverride replaces the category default for a single employee.
// At most one active override per employee; SetCustomPolicy replaces any
// prior override wholesale rather than merging.
type CustomPolicyOverride struct {
	EmployeeID         EmployeeID
	CheckIn            ClockTime
	CheckOut           ClockTime
	GracePeriodMinutes int
	GraceDaysPerMonth  int
	Reason             string
	SetBy              string
	SetAt              time.Time
}

func (o CustomPolicyOverride) Validate() error {
	if o.EmployeeID == "" {
		return &PolicyValidationError{Field: "employee_id", Message: "is required"}
	}
	return validatePolicyFields(o.CheckIn, o.CheckOut, o.GracePeriodMinutes, o.GraceDaysPerMonth)
}

// =============================================================================
// EFFECTIVE POLICY - What the engine measures against
// =============================================================================

// EffectivePolicy is the resolved ruleset for one (employee, date).
// Exactly one effective policy resolves for any such pair.
type EffectivePolicy struct {
	CheckIn            ClockTime
	CheckOut           ClockTime
	GracePeriodMinutes int
	GraceDaysPerMonth  int
	WorkingDays        WeekdaySet
	ExemptWFH          bool

	// Custom is true when a per-employee override produced this policy.
	Custom bool
}

// effectiveFromDefault projects a category default into an effective policy.
func effectiveFromDefault(p AttendancePolicy) EffectivePolicy {
	return EffectivePolicy{
		CheckIn:            p.CheckIn,
		CheckOut:           p.CheckOut,
		GracePeriodMinutes: p.GracePeriodMinutes,
		GraceDaysPerMonth:  p.GraceDaysPerMonth,
		WorkingDays:        p.WorkingDays,
		ExemptWFH:          p.ExemptWFH,
	}
}

// effectiveFromOverride layers an override on top of the category default.
// Working days and the WFH exemption are not overridable and stay with the
// default.
func effectiveFromOverride(o CustomPolicyOverride, base AttendancePolicy) EffectivePolicy {
	return EffectivePolicy{
		CheckIn:            o.CheckIn,
		CheckOut:           o.CheckOut,
		GracePeriodMinutes: o.GracePeriodMinutes,
		GraceDaysPerMonth:  o.GraceDaysPerMonth,
		WorkingDays:        base.WorkingDays,
		ExemptWFH:          base.ExemptWFH,
		Custom:             true,
	}
}

// IsWorkingDay reports whether the date is a working day under this policy.
func (p EffectivePolicy) IsWorkingDay(date time.Time) bool {
	return p.WorkingDays.Contains(date.Weekday())
}

// LatenessMinutes returns max(0, check_in - policy.check_in) for an actual
// check-in timestamp.
func (p EffectivePolicy) LatenessMinutes(checkIn time.Time) int {
	m := p.CheckIn.MinutesAfter(checkIn)
	if m < 0 {
		return 0
	}
	return m
}

// IsLate reports whether a check-in exceeds the per-day grace period.
func (p EffectivePolicy) IsLate(checkIn time.Time) bool {
	return p.LatenessMinutes(checkIn) > p.GracePeriodMinutes
}

// =============================================================================
// RESOLVER - (employee, date) -> effective policy
// =============================================================================

// Resolver resolves the effective policy for an employee. Constructing one
// Resolver per validation run gives a cache that cannot outlive the run, so
// override changes between runs are always observed. The snapshot loads once
// under a sync.Once; a Resolver is safe to share across the run's workers.
type Resolver struct {
	policies  PolicyStore
	directory EmployeeDirectory

	loadOnce  sync.Once
	loadErr   error
	defaults  map[Category]*AttendancePolicy
	overrides map[EmployeeID]*CustomPolicyOverride
}

// NewResolver creates a resolver over the given stores. The cache starts
// cold and fills on first use.
func NewResolver(policies PolicyStore, directory EmployeeDirectory) *Resolver {
	return &Resolver{
		policies:  policies,
		directory: directory,
		defaults:  make(map[Category]*AttendancePolicy),
		overrides: make(map[EmployeeID]*CustomPolicyOverride),
	}
}

// Resolve returns the effective policy for (employee, date).
// A custom override wins; otherwise the employee's category default applies.
// Fails with PolicyNotFoundError only when no default exists for the
// category, which is a configuration error.
func (r *Resolver) Resolve(ctx context.Context, employeeID EmployeeID, date time.Time) (EffectivePolicy, error) {
	if err := r.load(ctx); err != nil {
		return EffectivePolicy{}, err
	}

	emp, err := r.directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return EffectivePolicy{}, err
	}
	if emp == nil {
		return EffectivePolicy{}, ErrEmployeeNotFound
	}

	base, ok := r.defaults[emp.Category]
	if !ok {
		return EffectivePolicy{}, &PolicyNotFoundError{Category: emp.Category}
	}

	if override, ok := r.overrides[employeeID]; ok {
		return effectiveFromOverride(*override, *base), nil
	}
	return effectiveFromDefault(*base), nil
}

// load snapshots defaults and overrides once per resolver lifetime. The
// sync.Once makes concurrent first calls safe: one goroutine fills the maps,
// the rest block until the snapshot (or its error) is ready.
func (r *Resolver) load(ctx context.Context) error {
	r.loadOnce.Do(func() {
		defaults, err := r.policies.ListDefaultPolicies(ctx)
		if err != nil {
			r.loadErr = err
			return
		}
		for i := range defaults {
			p := defaults[i]
			r.defaults[p.Category] = &p
		}

		overrides, err := r.policies.ListOverrides(ctx)
		if err != nil {
			r.loadErr = err
			return
		}
		for i := range overrides {
			o := overrides[i]
			r.overrides[o.EmployeeID] = &o
		}
	})
	return r.loadErr
}
