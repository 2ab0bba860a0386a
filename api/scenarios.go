/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Provides pre-built demo datasets so the attendance engine can be
  explored without wiring a real HR system. Each scenario resets the
  database and loads employees, policies, rates, and a month of
  attendance records that exhibit one behavior worth demonstrating.

SCENARIOS:
  clean-month:    Everyone within their grace allowance, no penalties
  penalty-month:  Several employees past the allowance, pending penalties
  custom-policy:  An override makes a late check-in on time for one
                  employee while the same time is late under the default

USAGE:
  GET  /attendance/scenarios        List available scenarios
  POST /attendance/scenarios/load   Load one ({"scenario_id": "..."})
  POST /attendance/scenarios/reset  Clear all data

  Scenario endpoints respond 501 when the store does not support Reset
  (the SQLite store does). They are a dev convenience, not part of the
  HR surface.

SEE ALSO:
  - factory/policy.go: the seed defaults scenarios build on
  - handlers.go: the endpoints the loaded data feeds
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/factory"
)

// ScenarioStore is the wider surface scenario loading needs. The SQLite
// store satisfies it; the plain Store interface deliberately does not
// expose reset or directory writes.
type ScenarioStore interface {
	Store
	Reset(ctx context.Context) error
	SaveEmployee(ctx context.Context, emp attendance.Employee) error
	SaveRate(ctx context.Context, employeeID attendance.EmployeeID, rate attendance.Money) error
}

// ScenarioDTO describes one loadable scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "clean-month",
		Name:        "Clean Month",
		Description: "Three consultants, occasional lateness, all within the grace allowance.",
	},
	{
		ID:          "penalty-month",
		Name:        "Penalty Month",
		Description: "Late days beyond the grace allowance produce pending penalties.",
	},
	{
		ID:          "custom-policy",
		Name:        "Custom Policy Override",
		Description: "A 10:45 check-in is late under the default but on time under one employee's override.",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads the selected scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	store, ok := h.Store.(ScenarioStore)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Scenario loading not supported by this store", nil)
		return
	}

	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "clean-month":
		err = loadCleanMonth(ctx, store)
	case "penalty-month":
		err = loadPenaltyMonth(ctx, store)
	case "custom-policy":
		err = loadCustomPolicy(ctx, store)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Loaded scenario " + req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	store, ok := h.Store.(ScenarioStore)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Reset not supported by this store", nil)
		return
	}
	if err := store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Database reset"})
}

// =============================================================================
// SCENARIO DATA
// =============================================================================

// demoMonth is last month, so scenarios always describe a complete period.
func demoMonth() attendance.Month {
	prev := time.Now().UTC().AddDate(0, -1, 0)
	return attendance.NewMonth(prev.Year(), prev.Month())
}

func seedBase(ctx context.Context, store ScenarioStore, rates map[string]float64) error {
	if err := factory.DefaultSeed().Apply(ctx, store); err != nil {
		return err
	}
	employees := []attendance.Employee{
		{ID: "emp-ana", Name: "Ana Ferreira", Code: "E001", Department: "Consulting", Category: attendance.CategoryConsulting, Active: true},
		{ID: "emp-bo", Name: "Bo Lindqvist", Code: "E002", Department: "Consulting", Category: attendance.CategoryConsulting, Active: true},
		{ID: "emp-chi", Name: "Chi Nguyen", Code: "E003", Department: "Operations", Category: attendance.CategoryNonConsulting, Active: true},
	}
	for _, emp := range employees {
		if err := store.SaveEmployee(ctx, emp); err != nil {
			return err
		}
	}
	for id, rate := range rates {
		if err := store.SaveRate(ctx, attendance.EmployeeID(id), attendance.NewMoney(rate)); err != nil {
			return err
		}
	}
	return nil
}

// markDays writes one present record per weekday. lateDays is keyed by
// working-day ordinal within the month (1 = first weekday), so scenarios
// behave the same no matter which calendar month they load into; listed
// days check in that many minutes after checkIn.
func markDays(ctx context.Context, store ScenarioStore, employeeID attendance.EmployeeID, month attendance.Month, checkIn attendance.ClockTime, lateDays map[int]int) error {
	workday := 0
	for _, day := range month.Days() {
		wd := day.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		workday++
		in := checkIn
		if lateBy, ok := lateDays[workday]; ok {
			in = checkIn + attendance.ClockTime(lateBy)
		}
		checkInAt := in.On(day)
		checkOutAt := (in + 9*60).On(day)
		rec := attendance.AttendanceRecord{
			ID:         uuid.NewString(),
			EmployeeID: employeeID,
			Date:       day,
			CheckIn:    &checkInAt,
			CheckOut:   &checkOutAt,
			Status:     attendance.StatusPresent,
			Source:     attendance.SourceHR,
			UpdatedAt:  time.Now().UTC(),
		}
		if _, err := store.UpsertRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func loadCleanMonth(ctx context.Context, store ScenarioStore) error {
	if err := seedBase(ctx, store, map[string]float64{"emp-ana": 500, "emp-bo": 450, "emp-chi": 300}); err != nil {
		return err
	}
	month := demoMonth()
	// Two late days each, within the consulting allowance of three.
	for _, id := range []attendance.EmployeeID{"emp-ana", "emp-bo"} {
		if err := markDays(ctx, store, id, month, attendance.MustClockTime("09:00"), map[int]int{3: 30, 10: 45}); err != nil {
			return err
		}
	}
	return markDays(ctx, store, "emp-chi", month, attendance.MustClockTime("09:30"), nil)
}

func loadPenaltyMonth(ctx context.Context, store ScenarioStore) error {
	if err := seedBase(ctx, store, map[string]float64{"emp-ana": 500, "emp-bo": 450, "emp-chi": 300}); err != nil {
		return err
	}
	month := demoMonth()
	// Five late days against an allowance of three: two penalty days.
	if err := markDays(ctx, store, "emp-ana", month, attendance.MustClockTime("09:00"),
		map[int]int{2: 40, 5: 30, 9: 50, 12: 35, 16: 60}); err != nil {
		return err
	}
	if err := markDays(ctx, store, "emp-bo", month, attendance.MustClockTime("09:00"), map[int]int{4: 30}); err != nil {
		return err
	}
	return markDays(ctx, store, "emp-chi", month, attendance.MustClockTime("09:30"), nil)
}

func loadCustomPolicy(ctx context.Context, store ScenarioStore) error {
	if err := seedBase(ctx, store, map[string]float64{"emp-ana": 500, "emp-bo": 450, "emp-chi": 300}); err != nil {
		return err
	}
	// Ana starts late by arrangement; 10:45 is fine for her, late for Bo.
	override := attendance.CustomPolicyOverride{
		EmployeeID:         "emp-ana",
		CheckIn:            attendance.MustClockTime("11:00"),
		CheckOut:           attendance.MustClockTime("20:00"),
		GracePeriodMinutes: 15,
		GraceDaysPerMonth:  3,
		Reason:             "Evening client coverage",
		SetBy:              "demo",
		SetAt:              time.Now().UTC(),
	}
	if err := store.SaveOverride(ctx, override); err != nil {
		return err
	}

	month := demoMonth()
	lateEveryMonday := map[int]int{}
	workday := 0
	for _, day := range month.Days() {
		wd := day.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		workday++
		if wd == time.Monday {
			lateEveryMonday[workday] = 105 // 10:45 against a 09:00 default
		}
	}
	if err := markDays(ctx, store, "emp-ana", month, attendance.MustClockTime("09:00"), lateEveryMonday); err != nil {
		return err
	}
	return markDays(ctx, store, "emp-bo", month, attendance.MustClockTime("09:00"), lateEveryMonday)
}
