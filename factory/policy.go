/*
Package factory provides seed-file to Go policy conversion.

PURPOSE:
  Converts JSON or YAML policy seed files into attendance.AttendancePolicy
  values. This enables policy configuration without code changes - HR can
  define the category defaults in a config file, and the factory creates
  the proper Go structs at startup.

WHY CONFIG FILES?
  - Non-developers can modify policies
  - Easy integration with admin tooling
  - Version control for policy definitions
  - A fresh database gets its category defaults on first boot

SEED SCHEMA (YAML shown; JSON uses the same field names):
  policies:
    - category: consulting
      check_in: "09:00"
      check_out: "18:00"
      grace_period_minutes: 15
      grace_days_per_month: 3
      working_days: [monday, tuesday, wednesday, thursday, friday]
      exempt_wfh: false
  employees:
    - id: emp-001
      name: Jane Doe
      code: E001
      department: Consulting
      category: consulting
      active: true
  rates:
    - employee_id: emp-001
      per_day_rate: "500.00"

KEY FEATURES:
  - Accepts JSON or YAML (picked by file extension)
  - Validates every policy before returning
  - Optional employee and rate sections for dev/demo seeding
  - Built-in defaults when no seed file is configured

USAGE:
  seed, err := factory.LoadSeed("./config/policies.yaml")
  if err != nil {
      log.Fatal(err)
  }
  if err := seed.Apply(ctx, store); err != nil {
      log.Fatal(err)
  }

SEE ALSO:
  - attendance/policy.go: AttendancePolicy definition and validation
  - store/sqlite: the usual seed target
*/
package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// SEED SCHEMA TYPES
// =============================================================================

// SeedConfig is the on-disk representation of a policy seed file.
type SeedConfig struct {
	Policies  []PolicyConfig   `json:"policies" yaml:"policies"`
	Employees []EmployeeConfig `json:"employees,omitempty" yaml:"employees,omitempty"`
	Rates     []RateConfig     `json:"rates,omitempty" yaml:"rates,omitempty"`
}

// PolicyConfig is one category default in a seed file.
type PolicyConfig struct {
	Category           string   `json:"category" yaml:"category"`
	CheckIn            string   `json:"check_in" yaml:"check_in"`
	CheckOut           string   `json:"check_out" yaml:"check_out"`
	GracePeriodMinutes int      `json:"grace_period_minutes" yaml:"grace_period_minutes"`
	GraceDaysPerMonth  int      `json:"grace_days_per_month" yaml:"grace_days_per_month"`
	WorkingDays        []string `json:"working_days,omitempty" yaml:"working_days,omitempty"`
	ExemptWFH          bool     `json:"exempt_wfh,omitempty" yaml:"exempt_wfh,omitempty"`
}

// EmployeeConfig is an optional directory entry for dev/demo seeds.
type EmployeeConfig struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Code       string `json:"code,omitempty" yaml:"code,omitempty"`
	Department string `json:"department,omitempty" yaml:"department,omitempty"`
	Category   string `json:"category" yaml:"category"`
	Active     *bool  `json:"active,omitempty" yaml:"active,omitempty"`
}

// RateConfig is an optional per-day penalty rate for dev/demo seeds.
type RateConfig struct {
	EmployeeID string `json:"employee_id" yaml:"employee_id"`
	PerDayRate string `json:"per_day_rate" yaml:"per_day_rate"`
}

// =============================================================================
// SEED - parsed and validated
// =============================================================================

// Seed holds validated seed data ready to be written to storage.
type Seed struct {
	Policies  []attendance.AttendancePolicy
	Employees []attendance.Employee
	Rates     map[attendance.EmployeeID]attendance.Money
}

// SeedTarget is what a seed is applied to. The SQLite store satisfies it.
type SeedTarget interface {
	attendance.PolicyStore
	SaveEmployee(ctx context.Context, emp attendance.Employee) error
	SaveRate(ctx context.Context, employeeID attendance.EmployeeID, rate attendance.Money) error
}

// Apply writes the seed to storage. Policies already present are replaced
// (their version bumps); employees and rates are upserted.
func (s *Seed) Apply(ctx context.Context, target SeedTarget) error {
	for _, policy := range s.Policies {
		if err := target.SaveDefaultPolicy(ctx, policy); err != nil {
			return fmt.Errorf("failed to save default policy for %s: %w", policy.Category, err)
		}
	}
	for _, emp := range s.Employees {
		if err := target.SaveEmployee(ctx, emp); err != nil {
			return fmt.Errorf("failed to save employee %s: %w", emp.ID, err)
		}
	}
	for id, rate := range s.Rates {
		if err := target.SaveRate(ctx, id, rate); err != nil {
			return fmt.Errorf("failed to save rate for %s: %w", id, err)
		}
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// LoadSeed reads and parses a seed file. The format is picked by extension:
// .yaml/.yml parse as YAML, everything else as JSON.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var cfg SeedConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse seed JSON: %w", err)
		}
	}

	return FromConfig(cfg)
}

// FromConfig converts a SeedConfig into a validated Seed.
func FromConfig(cfg SeedConfig) (*Seed, error) {
	seed := &Seed{Rates: make(map[attendance.EmployeeID]attendance.Money)}

	for i, pc := range cfg.Policies {
		policy, err := parsePolicy(pc)
		if err != nil {
			return nil, fmt.Errorf("policy %d (%s): %w", i, pc.Category, err)
		}
		seed.Policies = append(seed.Policies, policy)
	}

	for i, ec := range cfg.Employees {
		emp, err := parseEmployee(ec)
		if err != nil {
			return nil, fmt.Errorf("employee %d (%s): %w", i, ec.ID, err)
		}
		seed.Employees = append(seed.Employees, emp)
	}

	for i, rc := range cfg.Rates {
		if rc.EmployeeID == "" {
			return nil, fmt.Errorf("rate %d: missing employee_id", i)
		}
		rate, err := attendance.ParseMoney(rc.PerDayRate)
		if err != nil {
			return nil, fmt.Errorf("rate %d (%s): %w", i, rc.EmployeeID, err)
		}
		seed.Rates[attendance.EmployeeID(rc.EmployeeID)] = rate
	}

	return seed, nil
}

func parsePolicy(pc PolicyConfig) (attendance.AttendancePolicy, error) {
	var policy attendance.AttendancePolicy

	policy.Category = attendance.Category(pc.Category)

	checkIn, err := attendance.ParseClockTime(pc.CheckIn)
	if err != nil {
		return policy, fmt.Errorf("invalid check_in: %w", err)
	}
	checkOut, err := attendance.ParseClockTime(pc.CheckOut)
	if err != nil {
		return policy, fmt.Errorf("invalid check_out: %w", err)
	}
	policy.CheckIn = checkIn
	policy.CheckOut = checkOut
	policy.GracePeriodMinutes = pc.GracePeriodMinutes
	policy.GraceDaysPerMonth = pc.GraceDaysPerMonth
	policy.ExemptWFH = pc.ExemptWFH
	policy.Version = 1
	policy.UpdatedAt = time.Now().UTC()

	if len(pc.WorkingDays) == 0 {
		policy.WorkingDays = attendance.MondayToFriday()
	} else {
		days, err := attendance.ParseWeekdaySet(pc.WorkingDays)
		if err != nil {
			return policy, fmt.Errorf("invalid working_days: %w", err)
		}
		policy.WorkingDays = days
	}

	if err := policy.Validate(); err != nil {
		return policy, err
	}
	return policy, nil
}

func parseEmployee(ec EmployeeConfig) (attendance.Employee, error) {
	emp := attendance.Employee{
		ID:         attendance.EmployeeID(ec.ID),
		Name:       ec.Name,
		Code:       ec.Code,
		Department: ec.Department,
		Category:   attendance.Category(ec.Category),
		Active:     true,
	}
	if ec.Active != nil {
		emp.Active = *ec.Active
	}
	if emp.ID == "" {
		return emp, fmt.Errorf("missing id")
	}
	if !emp.Category.Valid() {
		return emp, fmt.Errorf("unknown category %q", ec.Category)
	}
	return emp, nil
}

// =============================================================================
// BUILT-IN DEFAULTS
// =============================================================================

// DefaultSeed returns the built-in category defaults used when no seed file
// is configured: a standard Monday-Friday schedule with a stricter grace
// allowance for non-consulting staff.
func DefaultSeed() *Seed {
	now := time.Now().UTC()
	return &Seed{
		Policies: []attendance.AttendancePolicy{
			{
				Category:           attendance.CategoryConsulting,
				CheckIn:            attendance.MustClockTime("09:00"),
				CheckOut:           attendance.MustClockTime("18:00"),
				GracePeriodMinutes: 15,
				GraceDaysPerMonth:  3,
				WorkingDays:        attendance.MondayToFriday(),
				ExemptWFH:          false,
				Version:            1,
				UpdatedAt:          now,
			},
			{
				Category:           attendance.CategoryNonConsulting,
				CheckIn:            attendance.MustClockTime("09:30"),
				CheckOut:           attendance.MustClockTime("18:30"),
				GracePeriodMinutes: 10,
				GraceDaysPerMonth:  2,
				WorkingDays:        attendance.MondayToFriday(),
				ExemptWFH:          false,
				Version:            1,
				UpdatedAt:          now,
			},
		},
		Rates: make(map[attendance.EmployeeID]attendance.Money),
	}
}
