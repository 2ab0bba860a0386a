package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/attendance/store"
)

func writeSeedFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	return path
}

func TestLoadSeed_YAML(t *testing.T) {
	path := writeSeedFile(t, "policies.yaml", `
policies:
  - category: consulting
    check_in: "09:00"
    check_out: "18:00"
    grace_period_minutes: 15
    grace_days_per_month: 3
    working_days: [monday, tuesday, wednesday, thursday]
    exempt_wfh: true
employees:
  - id: emp-ana
    name: Ana
    code: E001
    department: Consulting
    category: consulting
  - id: emp-bo
    name: Bo
    category: consulting
    active: false
rates:
  - employee_id: emp-ana
    per_day_rate: "500.00"
`)

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}

	if len(seed.Policies) != 1 {
		t.Fatalf("Expected 1 policy, got %d", len(seed.Policies))
	}
	p := seed.Policies[0]
	if p.Category != attendance.CategoryConsulting {
		t.Errorf("Wrong category: %s", p.Category)
	}
	if p.CheckIn != attendance.MustClockTime("09:00") || p.GraceDaysPerMonth != 3 {
		t.Errorf("Policy fields not parsed: %+v", p)
	}
	if !p.ExemptWFH {
		t.Error("exempt_wfh not parsed")
	}
	if p.WorkingDays.Contains(time.Friday) || !p.WorkingDays.Contains(time.Monday) {
		t.Errorf("Working days not parsed: %v", p.WorkingDays.Strings())
	}

	if len(seed.Employees) != 2 {
		t.Fatalf("Expected 2 employees, got %d", len(seed.Employees))
	}
	if !seed.Employees[0].Active {
		t.Error("Active should default to true when omitted")
	}
	if seed.Employees[1].Active {
		t.Error("Explicit active: false should be honored")
	}

	rate, ok := seed.Rates["emp-ana"]
	if !ok || !rate.Equal(attendance.NewMoneyFromInt(500)) {
		t.Errorf("Rate not parsed: %v, %v", rate, ok)
	}
}

func TestLoadSeed_JSON(t *testing.T) {
	path := writeSeedFile(t, "policies.json", `{
  "policies": [
    {
      "category": "non_consulting",
      "check_in": "09:30",
      "check_out": "18:30",
      "grace_period_minutes": 10,
      "grace_days_per_month": 2
    }
  ]
}`)

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}
	if len(seed.Policies) != 1 {
		t.Fatalf("Expected 1 policy, got %d", len(seed.Policies))
	}
	p := seed.Policies[0]
	if p.Category != attendance.CategoryNonConsulting || p.GracePeriodMinutes != 10 {
		t.Errorf("Policy fields not parsed: %+v", p)
	}
	// Omitted working_days fall back to Monday-Friday.
	if p.WorkingDays != attendance.MondayToFriday() {
		t.Errorf("Expected default working week, got %v", p.WorkingDays.Strings())
	}
}

func TestLoadSeed_MissingFile(t *testing.T) {
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFromConfig_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		cfg  SeedConfig
	}{
		{"bad check_in", SeedConfig{Policies: []PolicyConfig{{
			Category: "consulting", CheckIn: "nine", CheckOut: "18:00",
			GracePeriodMinutes: 15, GraceDaysPerMonth: 3,
		}}}},
		{"grace out of bounds", SeedConfig{Policies: []PolicyConfig{{
			Category: "consulting", CheckIn: "09:00", CheckOut: "18:00",
			GracePeriodMinutes: 90, GraceDaysPerMonth: 3,
		}}}},
		{"unknown category", SeedConfig{Policies: []PolicyConfig{{
			Category: "contractor", CheckIn: "09:00", CheckOut: "18:00",
			GracePeriodMinutes: 15, GraceDaysPerMonth: 3,
		}}}},
		{"bad weekday", SeedConfig{Policies: []PolicyConfig{{
			Category: "consulting", CheckIn: "09:00", CheckOut: "18:00",
			GracePeriodMinutes: 15, GraceDaysPerMonth: 3,
			WorkingDays: []string{"caturday"},
		}}}},
		{"employee without id", SeedConfig{Employees: []EmployeeConfig{{
			Name: "Ana", Category: "consulting",
		}}}},
		{"employee with bad category", SeedConfig{Employees: []EmployeeConfig{{
			ID: "emp-ana", Category: "contractor",
		}}}},
		{"rate without employee", SeedConfig{Rates: []RateConfig{{
			PerDayRate: "500.00",
		}}}},
		{"malformed rate", SeedConfig{Rates: []RateConfig{{
			EmployeeID: "emp-ana", PerDayRate: "five hundred",
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromConfig(tt.cfg); err == nil {
				t.Error("Expected error, got none")
			}
		})
	}
}

func TestSeed_Apply(t *testing.T) {
	// Apply writes to any SeedTarget; sqlite fills that role in production,
	// a stub keeps this test in-package.
	target := &captureTarget{Memory: store.NewMemory()}
	seed := DefaultSeed()
	seed.Employees = []attendance.Employee{
		{ID: "emp-ana", Name: "Ana", Category: attendance.CategoryConsulting, Active: true},
	}
	seed.Rates["emp-ana"] = attendance.NewMoneyFromInt(500)

	if err := seed.Apply(context.Background(), target); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	policies, err := target.ListDefaultPolicies(context.Background())
	if err != nil {
		t.Fatalf("ListDefaultPolicies failed: %v", err)
	}
	if len(policies) != 2 {
		t.Errorf("Expected both category defaults, got %d", len(policies))
	}
	if len(target.employees) != 1 || target.employees[0].ID != "emp-ana" {
		t.Errorf("Employee not applied: %+v", target.employees)
	}
	if rate, ok := target.rates["emp-ana"]; !ok || !rate.Equal(attendance.NewMoneyFromInt(500)) {
		t.Errorf("Rate not applied: %v", target.rates)
	}
}

func TestDefaultSeed_PoliciesAreValid(t *testing.T) {
	for _, p := range DefaultSeed().Policies {
		if err := p.Validate(); err != nil {
			t.Errorf("Built-in default for %s invalid: %v", p.Category, err)
		}
	}
}

// captureTarget records employee and rate writes on top of the in-memory
// policy store.
type captureTarget struct {
	*store.Memory
	employees []attendance.Employee
	rates     map[attendance.EmployeeID]attendance.Money
}

func (c *captureTarget) SaveEmployee(_ context.Context, emp attendance.Employee) error {
	c.employees = append(c.employees, emp)
	return nil
}

func (c *captureTarget) SaveRate(_ context.Context, id attendance.EmployeeID, rate attendance.Money) error {
	if c.rates == nil {
		c.rates = make(map[attendance.EmployeeID]attendance.Money)
	}
	c.rates[id] = rate
	return nil
}
