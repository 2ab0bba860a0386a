/*
engine.go - Monthly attendance validation

PURPOSE:
  Aggregates one month of attendance records per employee against the
  resolved work-time policy, producing a ValidationResult per employee:
  present/absent counts, late days, grace-day consumption, penalty days
  and the pending monetary penalty. Validation is read-only; nothing is
  persisted until HR applies penalties through the ledger.

ALGORITHM (per employee):
  1. Resolve the effective policy (override-first).
  2. Enumerate the month's dates that are working days under that policy,
     excluding dates recorded as holiday or on_leave.
  3. A working day with no record, or a record marked absent, counts as an
     absent day. Absence never feeds lateness; absence deductions are a
     separate external policy.
  4. A record with a check-in is late when lateness exceeds the grace
     period. WFH is measured identically to present unless the policy
     exempts it. Half days with a check-in are measured the same way.
  5. penalty_days = max(0, late_days - grace_days_allowed)
     grace_days_used = min(late_days, grace_days_allowed)
  6. Status is clean or penalty_pending from the recomputation, but
     applied whenever a ledger entry exists - the ledger is authoritative
     once a month has been charged.

CONCURRENCY:
  Each employee's aggregation depends only on that employee's policy and
  records, so the engine fans out over a bounded worker pool. The policy
  resolver snapshot is built per run and never outlives the call.

FAILURE MODES:
  - Unknown employee in the records: warning entry, batch continues.
  - Missing category default: fatal, the whole call fails (config bug).
  - Malformed month: fatal, no partial report.
*/
package attendance

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// =============================================================================
// ENGINE
// =============================================================================

// DefaultConcurrency bounds the validation worker pool when no explicit
// limit is configured.
const DefaultConcurrency = 8

// Engine validates a month of attendance for all employees.
type Engine struct {
	Records    RecordStore
	Policies   PolicyStore
	Directory  EmployeeDirectory
	Ledger     LedgerStore
	Calculator *Calculator

	// Concurrency bounds the worker pool; <= 0 means DefaultConcurrency.
	Concurrency int
}

func NewEngine(records RecordStore, policies PolicyStore, directory EmployeeDirectory, ledger LedgerStore, calc *Calculator) *Engine {
	return &Engine{
		Records:    records,
		Policies:   policies,
		Directory:  directory,
		Ledger:     ledger,
		Calculator: calc,
	}
}

// ValidationWarning is a non-fatal, per-employee problem encountered
// during a run. Warnings never abort the batch.
type ValidationWarning struct {
	EmployeeID EmployeeID
	Message    string
}

// ValidationReport is the outcome of one validation run.
type ValidationReport struct {
	Month    Month
	Results  []ValidationResult
	Warnings []ValidationWarning
}

// Summary aggregates for the HR review screen.
type ValidationSummary struct {
	TotalEmployees        int
	Clean                 int
	PenaltyPending        int
	Applied               int
	TotalPendingPenalties Money
}

func (r ValidationReport) Summary() ValidationSummary {
	s := ValidationSummary{TotalEmployees: len(r.Results), TotalPendingPenalties: ZeroMoney()}
	for _, res := range r.Results {
		switch res.Status {
		case ValidationClean:
			s.Clean++
		case ValidationPenaltyPending:
			s.PenaltyPending++
			s.TotalPendingPenalties = s.TotalPendingPenalties.Add(res.PendingPenalty)
		case ValidationApplied:
			s.Applied++
		}
	}
	return s
}

// =============================================================================
// VALIDATE
// =============================================================================

// Validate computes the month's validation results for every employee with
// at least one attendance record or active employment. Pure with respect to
// stores: it reads, it never writes.
func (e *Engine) Validate(ctx context.Context, month Month) (*ValidationReport, error) {
	if month.IsZero() {
		return nil, &InvalidMonthError{Raw: month.String()}
	}

	scope, err := e.employeesInScope(ctx, month)
	if err != nil {
		return nil, err
	}

	resolver := NewResolver(e.Policies, e.Directory)
	if err := resolver.load(ctx); err != nil {
		return nil, err
	}

	type outcome struct {
		result  *ValidationResult
		warning *ValidationWarning
		err     error
	}

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(scope) && len(scope) > 0 {
		concurrency = len(scope)
	}

	ids := make(chan EmployeeID)
	outcomes := make(chan outcome, len(scope))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				res, warn, err := e.validateEmployee(ctx, resolver, id, month)
				outcomes <- outcome{result: res, warning: warn, err: err}
			}
		}()
	}

	go func() {
		defer close(ids)
		for _, id := range scope {
			select {
			case ids <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	report := &ValidationReport{Month: month}
	var firstErr error
	for o := range outcomes {
		if o.err != nil {
			if firstErr == nil {
				firstErr = o.err
			}
			continue
		}
		// A warning can ride alongside a result (e.g. a missing rate); only
		// a skipped employee arrives as a warning with no result at all.
		if o.warning != nil {
			report.Warnings = append(report.Warnings, *o.warning)
		}
		if o.result != nil {
			report.Results = append(report.Results, *o.result)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Workers finish in arbitrary order; the report is deterministic.
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].EmployeeID < report.Results[j].EmployeeID
	})
	sort.Slice(report.Warnings, func(i, j int) bool {
		return report.Warnings[i].EmployeeID < report.Warnings[j].EmployeeID
	})
	return report, nil
}

// ValidateEmployee recomputes a single employee's result for a month.
// This is the server-side recomputation the apply step trusts over
// client-submitted numbers.
func (e *Engine) ValidateEmployee(ctx context.Context, employeeID EmployeeID, month Month) (*ValidationResult, error) {
	if month.IsZero() {
		return nil, &InvalidMonthError{Raw: month.String()}
	}
	resolver := NewResolver(e.Policies, e.Directory)
	res, _, err := e.validateEmployee(ctx, resolver, employeeID, month)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrEmployeeNotFound
	}
	return res, nil
}

// employeesInScope returns the union of employees with records in the month
// and active employees. Record-only IDs missing from the directory surface
// later as warnings, not here.
func (e *Engine) employeesInScope(ctx context.Context, month Month) ([]EmployeeID, error) {
	seen := make(map[EmployeeID]bool)
	var scope []EmployeeID

	active, err := e.Directory.ListActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}
	for _, emp := range active {
		if !seen[emp.ID] {
			seen[emp.ID] = true
			scope = append(scope, emp.ID)
		}
	}

	records, err := e.Records.ListRecordsByMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if !seen[rec.EmployeeID] {
			seen[rec.EmployeeID] = true
			scope = append(scope, rec.EmployeeID)
		}
	}

	sort.Slice(scope, func(i, j int) bool { return scope[i] < scope[j] })
	return scope, nil
}

// =============================================================================
// PER-EMPLOYEE AGGREGATION
// =============================================================================

func (e *Engine) validateEmployee(ctx context.Context, resolver *Resolver, employeeID EmployeeID, month Month) (*ValidationResult, *ValidationWarning, error) {
	policy, err := resolver.Resolve(ctx, employeeID, month.Start())
	if errors.Is(err, ErrEmployeeNotFound) {
		// Records referencing an unknown employee must not sink the batch.
		return nil, &ValidationWarning{
			EmployeeID: employeeID,
			Message:    "employee not found in directory; skipped",
		}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	records, err := e.Records.ListEmployeeRecords(ctx, employeeID, month)
	if err != nil {
		return nil, nil, err
	}

	byDate := make(map[string]AttendanceRecord, len(records))
	for _, rec := range records {
		byDate[DayOf(rec.Date).Format("2006-01-02")] = rec
	}

	result := ValidationResult{
		EmployeeID:       employeeID,
		Month:            month,
		GraceDaysAllowed: policy.GraceDaysPerMonth,
		PendingPenalty:   ZeroMoney(),
		HasCustomPolicy:  policy.Custom,
	}

	for _, day := range month.Days() {
		rec, hasRecord := byDate[day.Format("2006-01-02")]

		// Holiday/leave days leave the denominator even on working weekdays.
		if hasRecord && rec.CountsAsWorkingDayExclusion() {
			continue
		}
		if !policy.IsWorkingDay(day) {
			continue
		}

		if !hasRecord || rec.Status == StatusAbsent {
			result.AbsentDays++
			continue
		}

		switch rec.Status {
		case StatusPresent:
			result.PresentDays++
		case StatusHalfDay:
			result.HalfDays++
		case StatusWorkFromHome:
			result.WFHDays++
		}

		if rec.CheckIn == nil {
			continue
		}
		if rec.Status == StatusWorkFromHome && policy.ExemptWFH {
			continue
		}
		if policy.IsLate(*rec.CheckIn) {
			result.LateDays++
		}
	}

	result.GraceDaysUsed = minInt(result.LateDays, policy.GraceDaysPerMonth)
	result.PenaltyDays = maxInt(0, result.LateDays-policy.GraceDaysPerMonth)

	// A missing rate blanks the amount, not the counts: the HR report still
	// carries the employee's present/absent/late numbers alongside a warning.
	var warn *ValidationWarning
	if result.PenaltyDays > 0 {
		amount, err := e.Calculator.Calculate(ctx, employeeID, result.PenaltyDays)
		switch {
		case errors.Is(err, ErrRateNotFound):
			warn = &ValidationWarning{
				EmployeeID: employeeID,
				Message:    "no penalty rate configured; pending amount unavailable",
			}
		case err != nil:
			return nil, nil, err
		default:
			result.PendingPenalty = amount
		}
	}

	if result.PenaltyDays == 0 {
		result.Status = ValidationClean
	} else {
		result.Status = ValidationPenaltyPending
	}

	// Once a ledger entry exists the month is charged; nothing is pending
	// regardless of what recomputation says.
	entry, err := e.Ledger.GetEntry(ctx, employeeID, month)
	if err != nil {
		return nil, nil, err
	}
	if entry != nil {
		result.Status = ValidationApplied
		result.PendingPenalty = ZeroMoney()
	}

	return &result, warn, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
