package attendance

import (
	"errors"
	"testing"
	"time"
)

func validPolicy() AttendancePolicy {
	return AttendancePolicy{
		Category:           CategoryConsulting,
		CheckIn:            MustClockTime("09:00"),
		CheckOut:           MustClockTime("18:00"),
		GracePeriodMinutes: 15,
		GraceDaysPerMonth:  3,
		WorkingDays:        MondayToFriday(),
		Version:            1,
	}
}

func TestPolicyValidate_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AttendancePolicy)
	}{
		{"grace minutes negative", func(p *AttendancePolicy) { p.GracePeriodMinutes = -1 }},
		{"grace minutes over 60", func(p *AttendancePolicy) { p.GracePeriodMinutes = 61 }},
		{"grace days negative", func(p *AttendancePolicy) { p.GraceDaysPerMonth = -1 }},
		{"grace days over 10", func(p *AttendancePolicy) { p.GraceDaysPerMonth = 11 }},
		{"check-in after check-out", func(p *AttendancePolicy) {
			p.CheckIn = MustClockTime("19:00")
		}},
		{"check-in equals check-out", func(p *AttendancePolicy) {
			p.CheckIn = p.CheckOut
		}},
		{"unknown category", func(p *AttendancePolicy) { p.Category = "contractor" }},
		{"empty working days", func(p *AttendancePolicy) { p.WorkingDays = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPolicy()
			tt.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got none")
			}
			if !errors.Is(err, ErrInvalidPolicy) {
				t.Errorf("Expected ErrInvalidPolicy, got %v", err)
			}
		})
	}
}

func TestPolicyValidate_BoundaryValuesAccepted(t *testing.T) {
	p := validPolicy()
	p.GracePeriodMinutes = 60
	p.GraceDaysPerMonth = 10
	if err := p.Validate(); err != nil {
		t.Errorf("Boundary values should validate, got %v", err)
	}

	p = validPolicy()
	p.GracePeriodMinutes = 0
	p.GraceDaysPerMonth = 0
	if err := p.Validate(); err != nil {
		t.Errorf("Zero grace should validate, got %v", err)
	}
}

func TestOverrideValidate(t *testing.T) {
	o := CustomPolicyOverride{
		EmployeeID:         "emp-1",
		CheckIn:            MustClockTime("11:00"),
		CheckOut:           MustClockTime("20:00"),
		GracePeriodMinutes: 15,
		GraceDaysPerMonth:  3,
	}
	if err := o.Validate(); err != nil {
		t.Fatalf("Valid override rejected: %v", err)
	}

	o.EmployeeID = ""
	if err := o.Validate(); err == nil {
		t.Error("Expected error for missing employee_id")
	}
}

func TestEffectivePolicy_Lateness(t *testing.T) {
	p := effectiveFromDefault(validPolicy()) // 09:00, 15 min grace

	day := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		checkIn string
		minutes int
		late    bool
	}{
		{"08:45", 0, false},   // early is never negative lateness
		{"09:00", 0, false},
		{"09:15", 15, false},  // exactly at grace is not late
		{"09:16", 16, true},   // one past grace is late
		{"10:30", 90, true},
	}
	for _, tt := range tests {
		at := MustClockTime(tt.checkIn).On(day)
		if got := p.LatenessMinutes(at); got != tt.minutes {
			t.Errorf("%s: expected %d lateness minutes, got %d", tt.checkIn, tt.minutes, got)
		}
		if got := p.IsLate(at); got != tt.late {
			t.Errorf("%s: expected late=%v, got %v", tt.checkIn, tt.late, got)
		}
	}
}

func TestEffectiveFromOverride_KeepsDefaultWorkingDays(t *testing.T) {
	// GIVEN: A base with a four-day week and WFH exemption
	base := validPolicy()
	base.WorkingDays = NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday)
	base.ExemptWFH = true

	override := CustomPolicyOverride{
		EmployeeID:         "emp-1",
		CheckIn:            MustClockTime("11:00"),
		CheckOut:           MustClockTime("20:00"),
		GracePeriodMinutes: 5,
		GraceDaysPerMonth:  1,
	}

	// WHEN: The override is layered on top
	eff := effectiveFromOverride(override, base)

	// THEN: Boundaries come from the override, the week shape and WFH
	// exemption stay with the default
	if eff.CheckIn != override.CheckIn || eff.GraceDaysPerMonth != 1 {
		t.Error("Override boundaries not applied")
	}
	if eff.WorkingDays != base.WorkingDays {
		t.Error("Working days should come from the category default")
	}
	if !eff.ExemptWFH {
		t.Error("WFH exemption should come from the category default")
	}
	if !eff.Custom {
		t.Error("Effective policy from an override must be flagged custom")
	}
}

func TestEffectivePolicy_IsWorkingDay(t *testing.T) {
	p := effectiveFromDefault(validPolicy())
	monday := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)
	if !p.IsWorkingDay(monday) {
		t.Error("Monday should be a working day")
	}
	if p.IsWorkingDay(saturday) {
		t.Error("Saturday should not be a working day")
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		got, err := ParseStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}

	_, err := ParseStatus("vacation")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}
}

func TestRecordSource_Outranks(t *testing.T) {
	tests := []struct {
		writer, prior RecordSource
		want          bool
	}{
		{SourceHR, SourceSelf, true},
		{SourceHR, SourceHR, true},
		{SourceHR, SourceLeave, true},
		{SourceSelf, SourceHR, false}, // self never replaces HR
		{SourceSelf, SourceSelf, true},
		{SourceLeave, SourceSelf, true},
		{SourceLeave, SourceHR, false},
	}
	for _, tt := range tests {
		if got := tt.writer.Outranks(tt.prior); got != tt.want {
			t.Errorf("%s outranks %s: expected %v, got %v", tt.writer, tt.prior, tt.want, got)
		}
	}
}
