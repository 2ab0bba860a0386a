package attendance_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/attendance/store"
)

// April 2025 runs Tuesday the 1st through Wednesday the 30th: 22 weekdays.
var april = attendance.NewMonth(2025, time.April)

// newFixture seeds the in-memory store with both category defaults and a
// consulting employee emp-ana with a 500/day penalty rate.
func newFixture(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	ctx := context.Background()

	policies := []attendance.AttendancePolicy{
		{
			Category:           attendance.CategoryConsulting,
			CheckIn:            attendance.MustClockTime("09:00"),
			CheckOut:           attendance.MustClockTime("18:00"),
			GracePeriodMinutes: 15,
			GraceDaysPerMonth:  3,
			WorkingDays:        attendance.MondayToFriday(),
		},
		{
			Category:           attendance.CategoryNonConsulting,
			CheckIn:            attendance.MustClockTime("09:30"),
			CheckOut:           attendance.MustClockTime("18:30"),
			GracePeriodMinutes: 10,
			GraceDaysPerMonth:  2,
			WorkingDays:        attendance.MondayToFriday(),
		},
	}
	for _, p := range policies {
		if err := m.SaveDefaultPolicy(ctx, p); err != nil {
			t.Fatalf("Failed to seed policy: %v", err)
		}
	}

	m.PutEmployee(attendance.Employee{
		ID: "emp-ana", Name: "Ana", Category: attendance.CategoryConsulting, Active: true,
	})
	m.PutRate("emp-ana", attendance.NewMoneyFromInt(500))
	return m
}

func newEngine(m *store.Memory) *attendance.Engine {
	return attendance.NewEngine(m, m, m, m, attendance.NewCalculator(m))
}

// mark writes one HR-sourced record.
func mark(t *testing.T, m *store.Memory, id attendance.EmployeeID, day time.Time, status attendance.WorkStatus, checkIn string) {
	t.Helper()
	rec := attendance.AttendanceRecord{
		ID:         uuid.NewString(),
		EmployeeID: id,
		Date:       day,
		Status:     status,
		Source:     attendance.SourceHR,
		UpdatedAt:  time.Now().UTC(),
	}
	if checkIn != "" {
		at := attendance.MustClockTime(checkIn).On(day)
		rec.CheckIn = &at
	}
	if _, err := m.UpsertRecord(context.Background(), rec); err != nil {
		t.Fatalf("Failed to mark %s on %s: %v", id, day.Format("2006-01-02"), err)
	}
}

// markWeekdaysPresent marks every weekday of April present. lateOn maps a
// day-of-month to a late check-in time; every other day checks in at the
// given time.
func markWeekdaysPresent(t *testing.T, m *store.Memory, id attendance.EmployeeID, checkIn string, lateOn map[int]string) {
	t.Helper()
	for _, day := range april.Days() {
		wd := day.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		in := checkIn
		if late, ok := lateOn[day.Day()]; ok {
			in = late
		}
		mark(t, m, id, day, attendance.StatusPresent, in)
	}
}

func resultFor(t *testing.T, report *attendance.ValidationReport, id attendance.EmployeeID) attendance.ValidationResult {
	t.Helper()
	for _, res := range report.Results {
		if res.EmployeeID == id {
			return res
		}
	}
	t.Fatalf("No result for %s in report", id)
	return attendance.ValidationResult{}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate_CleanWithinGraceAllowance(t *testing.T) {
	// GIVEN: 2 late days against a 3-day grace allowance
	m := newFixture(t)
	markWeekdaysPresent(t, m, "emp-ana", "09:05", map[int]string{7: "09:40", 15: "09:25"})

	// WHEN: Validating the month
	report, err := newEngine(m).Validate(context.Background(), april)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// THEN: Grace absorbs the lateness; no penalty
	res := resultFor(t, report, "emp-ana")
	if res.PresentDays != 22 || res.AbsentDays != 0 {
		t.Errorf("Expected 22 present / 0 absent, got %d / %d", res.PresentDays, res.AbsentDays)
	}
	if res.LateDays != 2 {
		t.Errorf("Expected 2 late days, got %d", res.LateDays)
	}
	if res.GraceDaysUsed != 2 || res.GraceDaysAllowed != 3 {
		t.Errorf("Expected grace 2/3, got %d/%d", res.GraceDaysUsed, res.GraceDaysAllowed)
	}
	if res.PenaltyDays != 0 || !res.PendingPenalty.IsZero() {
		t.Errorf("Expected no penalty, got %d days / %s", res.PenaltyDays, res.PendingPenalty)
	}
	if res.Status != attendance.ValidationClean {
		t.Errorf("Expected clean, got %s", res.Status)
	}
}

func TestValidate_PenaltyBeyondGraceAllowance(t *testing.T) {
	// GIVEN: 5 late days, 3 grace days, 500/day rate
	m := newFixture(t)
	markWeekdaysPresent(t, m, "emp-ana", "09:00", map[int]string{
		2: "09:30", 8: "09:45", 14: "10:00", 21: "09:20", 28: "11:00",
	})

	// WHEN: Validating the month
	report, err := newEngine(m).Validate(context.Background(), april)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// THEN: penalty_days = 5 - 3 = 2, amount = 2 x 500
	res := resultFor(t, report, "emp-ana")
	if res.LateDays != 5 {
		t.Fatalf("Expected 5 late days, got %d", res.LateDays)
	}
	if res.GraceDaysUsed != 3 {
		t.Errorf("Expected all 3 grace days consumed, got %d", res.GraceDaysUsed)
	}
	if res.PenaltyDays != 2 {
		t.Errorf("Expected 2 penalty days, got %d", res.PenaltyDays)
	}
	if !res.PendingPenalty.Equal(attendance.NewMoneyFromInt(1000)) {
		t.Errorf("Expected pending penalty 1000.00, got %s", res.PendingPenalty)
	}
	if res.Status != attendance.ValidationPenaltyPending {
		t.Errorf("Expected penalty_pending, got %s", res.Status)
	}

	summary := report.Summary()
	if summary.PenaltyPending != 1 || !summary.TotalPendingPenalties.Equal(attendance.NewMoneyFromInt(1000)) {
		t.Errorf("Summary mismatch: %+v", summary)
	}
}

func TestValidate_CustomPolicyChangesOutcome(t *testing.T) {
	// GIVEN: Two employees checking in at 10:45 every working day; one has
	// an 11:00 custom policy, the other measures against the 09:00 default
	m := newFixture(t)
	m.PutEmployee(attendance.Employee{
		ID: "emp-bo", Name: "Bo", Category: attendance.CategoryConsulting, Active: true,
	})
	m.PutRate("emp-bo", attendance.NewMoneyFromInt(500))

	if err := m.SaveOverride(context.Background(), attendance.CustomPolicyOverride{
		EmployeeID:         "emp-ana",
		CheckIn:            attendance.MustClockTime("11:00"),
		CheckOut:           attendance.MustClockTime("20:00"),
		GracePeriodMinutes: 15,
		GraceDaysPerMonth:  3,
		Reason:             "evening shift",
		SetBy:              "hr-lead",
		SetAt:              time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Failed to save override: %v", err)
	}

	markWeekdaysPresent(t, m, "emp-ana", "10:45", nil)
	markWeekdaysPresent(t, m, "emp-bo", "10:45", nil)

	// WHEN: Validating the month
	report, err := newEngine(m).Validate(context.Background(), april)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// THEN: Identical check-ins, opposite outcomes
	ana := resultFor(t, report, "emp-ana")
	if ana.LateDays != 0 || ana.Status != attendance.ValidationClean {
		t.Errorf("Override holder should be clean, got %d late / %s", ana.LateDays, ana.Status)
	}
	if !ana.HasCustomPolicy {
		t.Error("Expected HasCustomPolicy for the override holder")
	}

	bo := resultFor(t, report, "emp-bo")
	if bo.LateDays != 22 {
		t.Errorf("Default holder should be late all 22 days, got %d", bo.LateDays)
	}
	if bo.Status != attendance.ValidationPenaltyPending || bo.HasCustomPolicy {
		t.Errorf("Default holder: status %s, custom %v", bo.Status, bo.HasCustomPolicy)
	}
}

func TestValidate_AbsencesAndExclusions(t *testing.T) {
	// GIVEN: A month with one week marked and the rest empty:
	// Mon 7 present, Tue 8 absent, Wed 9 holiday, Thu 10 on_leave, Fri 11 half day
	m := newFixture(t)
	day := func(d int) time.Time { return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC) }
	mark(t, m, "emp-ana", day(7), attendance.StatusPresent, "09:00")
	mark(t, m, "emp-ana", day(8), attendance.StatusAbsent, "")
	mark(t, m, "emp-ana", day(9), attendance.StatusHoliday, "")
	mark(t, m, "emp-ana", day(10), attendance.StatusOnLeave, "")
	mark(t, m, "emp-ana", day(11), attendance.StatusHalfDay, "10:00")

	// WHEN: Validating the month
	report, err := newEngine(m).Validate(context.Background(), april)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// THEN: Holiday and leave leave the denominator; every unmarked weekday
	// and the explicit absent day count as absent; the late half day counts
	// toward lateness
	res := resultFor(t, report, "emp-ana")
	if res.PresentDays != 1 || res.HalfDays != 1 {
		t.Errorf("Expected 1 present / 1 half, got %d / %d", res.PresentDays, res.HalfDays)
	}
	// 22 weekdays - 1 present - 1 half - 2 excluded = 18 unmarked, + 1 marked absent
	if res.AbsentDays != 19 {
		t.Errorf("Expected 19 absent days, got %d", res.AbsentDays)
	}
	if res.LateDays != 1 {
		t.Errorf("Late half day should count, got %d late days", res.LateDays)
	}
}

func TestValidate_WFHExemption(t *testing.T) {
	// GIVEN: A policy exempting WFH from lateness, one late WFH day
	m := store.NewMemory()
	ctx := context.Background()
	policy := attendance.AttendancePolicy{
		Category:           attendance.CategoryConsulting,
		CheckIn:            attendance.MustClockTime("09:00"),
		CheckOut:           attendance.MustClockTime("18:00"),
		GracePeriodMinutes: 15,
		GraceDaysPerMonth:  3,
		WorkingDays:        attendance.MondayToFriday(),
		ExemptWFH:          true,
	}
	if err := m.SaveDefaultPolicy(ctx, policy); err != nil {
		t.Fatalf("Failed to seed policy: %v", err)
	}
	m.PutEmployee(attendance.Employee{
		ID: "emp-ana", Category: attendance.CategoryConsulting, Active: true,
	})

	day := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	mark(t, m, "emp-ana", day, attendance.StatusWorkFromHome, "10:30")

	// WHEN: Validating the month
	report, err := newEngine(m).Validate(ctx, april)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// THEN: The day counts as WFH but never as late
	res := resultFor(t, report, "emp-ana")
	if res.WFHDays != 1 {
		t.Errorf("Expected 1 WFH day, got %d", res.WFHDays)
	}
	if res.LateDays != 0 {
		t.Errorf("Exempt WFH must not be late, got %d late days", res.LateDays)
	}
}

func TestValidate_WFHMeasuredWithoutExemption(t *testing.T) {
	// GIVEN: The default policy (no WFH exemption), one late WFH day
	m := newFixture(t)
	day := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	mark(t, m, "emp-ana", day, attendance.StatusWorkFromHome, "10:30")

	report, err := newEngine(m).Validate(context.Background(), april)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	res := resultFor(t, report, "emp-ana")
	if res.LateDays != 1 {
		t.Errorf("Non-exempt WFH is measured like present, got %d late days", res.LateDays)
	}
}

func TestValidate_UnknownEmployeeWarns(t *testing.T) {
	// GIVEN: A record for an employee missing from the directory
	m := newFixture(t)
	day := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	mark(t, m, "emp-ghost", day, attendance.StatusPresent, "09:00")
	mark(t, m, "emp-ana", day, attendance.StatusPresent, "09:00")

	// WHEN: Validating the month
	report, err := newEngine(m).Validate(context.Background(), april)
	if err != nil {
		t.Fatalf("Batch must continue past unknown employees: %v", err)
	}

	// THEN: The known employee has a result, the unknown one a warning
	if len(report.Warnings) != 1 || report.Warnings[0].EmployeeID != "emp-ghost" {
		t.Fatalf("Expected one warning for emp-ghost, got %+v", report.Warnings)
	}
	resultFor(t, report, "emp-ana")
	for _, res := range report.Results {
		if res.EmployeeID == "emp-ghost" {
			t.Error("Unknown employee must not produce a result")
		}
	}
}

func TestValidate_MissingCategoryDefaultIsFatal(t *testing.T) {
	// GIVEN: An active employee whose category has no default policy
	m := store.NewMemory()
	m.PutEmployee(attendance.Employee{
		ID: "emp-ana", Category: attendance.CategoryConsulting, Active: true,
	})

	// WHEN: Validating
	_, err := newEngine(m).Validate(context.Background(), april)

	// THEN: The whole call fails as a configuration error
	if err == nil {
		t.Fatal("Expected fatal configuration error, got none")
	}
	if !attendance.IsFatalConfig(err) {
		t.Errorf("Expected a fatal config error, got %v", err)
	}
}

func TestValidate_MissingRateKeepsCounts(t *testing.T) {
	// GIVEN: An employee with penalty days but no configured rate
	m := newFixture(t)
	m.PutEmployee(attendance.Employee{
		ID: "emp-norate", Category: attendance.CategoryConsulting, Active: true,
	})
	markWeekdaysPresent(t, m, "emp-norate", "10:00", nil) // 22 late days

	report, err := newEngine(m).Validate(context.Background(), april)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// THEN: A warning flags the missing rate
	found := false
	for _, w := range report.Warnings {
		if w.EmployeeID == "emp-norate" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a warning for the rate-less employee, got %+v", report.Warnings)
	}

	// AND: The attendance counts still make the report; only the amount blanks
	res := resultFor(t, report, "emp-norate")
	if res.PresentDays != 22 || res.LateDays != 22 {
		t.Errorf("Expected 22 present / 22 late, got %d / %d", res.PresentDays, res.LateDays)
	}
	if res.PenaltyDays != 19 {
		t.Errorf("Expected 19 penalty days, got %d", res.PenaltyDays)
	}
	if !res.PendingPenalty.IsZero() {
		t.Errorf("Expected zero pending penalty without a rate, got %s", res.PendingPenalty)
	}
	if res.Status != attendance.ValidationPenaltyPending {
		t.Errorf("Expected penalty_pending status, got %s", res.Status)
	}
}

func TestValidate_ReadOnly(t *testing.T) {
	// GIVEN: A month that computes a pending penalty
	m := newFixture(t)
	markWeekdaysPresent(t, m, "emp-ana", "10:00", nil)
	engine := newEngine(m)
	ctx := context.Background()

	// WHEN: Validating twice
	first, err := engine.Validate(ctx, april)
	if err != nil {
		t.Fatalf("First validate failed: %v", err)
	}
	second, err := engine.Validate(ctx, april)
	if err != nil {
		t.Fatalf("Second validate failed: %v", err)
	}

	// THEN: Identical results, and nothing landed in the ledger
	a := resultFor(t, first, "emp-ana")
	b := resultFor(t, second, "emp-ana")
	if a.PenaltyDays != b.PenaltyDays || !a.PendingPenalty.Equal(b.PendingPenalty) || a.Status != b.Status {
		t.Errorf("Validation is not repeatable: %+v vs %+v", a, b)
	}

	entries, err := m.ListEntriesByMonth(ctx, april)
	if err != nil {
		t.Fatalf("ListEntriesByMonth failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Validation must not write to the ledger, found %d entries", len(entries))
	}
}

func TestValidate_AppliedMonthStaysApplied(t *testing.T) {
	// GIVEN: A ledger entry already exists for the month
	m := newFixture(t)
	markWeekdaysPresent(t, m, "emp-ana", "10:00", nil)
	ctx := context.Background()

	entry := attendance.PenaltyLedgerEntry{
		ID:          uuid.NewString(),
		EmployeeID:  "emp-ana",
		Month:       april,
		PenaltyDays: 19,
		Amount:      attendance.NewMoneyFromInt(9500),
		AppliedAt:   time.Now().UTC(),
		AppliedBy:   "hr-lead",
	}
	if err := m.InsertEntry(ctx, entry); err != nil {
		t.Fatalf("Failed to seed ledger entry: %v", err)
	}

	// WHEN: Revalidating
	report, err := newEngine(m).Validate(ctx, april)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// THEN: The ledger is authoritative; nothing is pending anymore
	res := resultFor(t, report, "emp-ana")
	if res.Status != attendance.ValidationApplied {
		t.Errorf("Expected applied, got %s", res.Status)
	}
	if !res.PendingPenalty.IsZero() {
		t.Errorf("Applied month must have zero pending penalty, got %s", res.PendingPenalty)
	}
}

func TestValidate_ZeroMonthRejected(t *testing.T) {
	m := newFixture(t)
	_, err := newEngine(m).Validate(context.Background(), attendance.Month{})
	if !errors.Is(err, attendance.ErrInvalidMonth) {
		t.Errorf("Expected ErrInvalidMonth, got %v", err)
	}
}

func TestValidateEmployee_UnknownEmployee(t *testing.T) {
	m := newFixture(t)
	_, err := newEngine(m).ValidateEmployee(context.Background(), "emp-ghost", april)
	if !errors.Is(err, attendance.ErrEmployeeNotFound) {
		t.Errorf("Expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestValidate_DeterministicOrder(t *testing.T) {
	// GIVEN: Several employees validated concurrently
	m := newFixture(t)
	for _, id := range []attendance.EmployeeID{"emp-zed", "emp-bo", "emp-chi"} {
		m.PutEmployee(attendance.Employee{
			ID: id, Category: attendance.CategoryConsulting, Active: true,
		})
	}

	report, err := newEngine(m).Validate(context.Background(), april)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// THEN: Results come back sorted by employee regardless of worker order
	for i := 1; i < len(report.Results); i++ {
		if report.Results[i-1].EmployeeID >= report.Results[i].EmployeeID {
			t.Fatalf("Results not sorted: %s before %s",
				report.Results[i-1].EmployeeID, report.Results[i].EmployeeID)
		}
	}
	if len(report.Results) != 4 {
		t.Errorf("Expected 4 results, got %d", len(report.Results))
	}
}

func TestValidate_ManyEmployeesSharedResolver(t *testing.T) {
	// GIVEN: A large roster resolved through one shared per-run snapshot.
	// The race detector flags this test if workers ever touch a cold cache.
	m := newFixture(t)
	for i := 0; i < 60; i++ {
		id := attendance.EmployeeID(fmt.Sprintf("emp-%03d", i))
		m.PutEmployee(attendance.Employee{
			ID: id, Name: string(id), Category: attendance.CategoryConsulting, Active: true,
		})
		m.PutRate(id, attendance.NewMoneyFromInt(500))
	}

	eng := newEngine(m)
	eng.Concurrency = 16

	// WHEN: Validating repeatedly with a wide worker pool
	for run := 0; run < 5; run++ {
		report, err := eng.Validate(context.Background(), april)
		if err != nil {
			t.Fatalf("Validate run %d failed: %v", run, err)
		}

		// THEN: Every employee resolves and appears exactly once
		if len(report.Results) != 61 {
			t.Fatalf("Run %d: expected 61 results, got %d", run, len(report.Results))
		}
		if len(report.Warnings) != 0 {
			t.Fatalf("Run %d: unexpected warnings: %v", run, report.Warnings)
		}
	}
}
