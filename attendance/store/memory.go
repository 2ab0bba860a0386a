// Package store provides in-memory implementations of the attendance
// storage interfaces, used by tests and local development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// MEMORY - Implements every attendance store interface in one struct
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	records   map[recordKey]attendance.AttendanceRecord
	defaults  map[attendance.Category]attendance.AttendancePolicy
	overrides map[attendance.EmployeeID]attendance.CustomPolicyOverride
	ledger    map[ledgerKey]attendance.PenaltyLedgerEntry
	employees map[attendance.EmployeeID]attendance.Employee
	rates     map[attendance.EmployeeID]attendance.Money
}

type recordKey struct {
	EmployeeID attendance.EmployeeID
	Date       string // YYYY-MM-DD
}

type ledgerKey struct {
	EmployeeID attendance.EmployeeID
	Month      string // YYYY-MM
}

func NewMemory() *Memory {
	return &Memory{
		records:   make(map[recordKey]attendance.AttendanceRecord),
		defaults:  make(map[attendance.Category]attendance.AttendancePolicy),
		overrides: make(map[attendance.EmployeeID]attendance.CustomPolicyOverride),
		ledger:    make(map[ledgerKey]attendance.PenaltyLedgerEntry),
		employees: make(map[attendance.EmployeeID]attendance.Employee),
		rates:     make(map[attendance.EmployeeID]attendance.Money),
	}
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (m *Memory) UpsertRecord(_ context.Context, rec attendance.AttendanceRecord) (attendance.UpsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := recordKey{EmployeeID: rec.EmployeeID, Date: attendance.DayOf(rec.Date).Format("2006-01-02")}
	existing, ok := m.records[k]
	if !ok {
		m.records[k] = rec
		return attendance.UpsertCreated, nil
	}
	if !rec.Source.Outranks(existing.Source) {
		return attendance.UpsertSkipped, nil
	}
	rec.ID = existing.ID
	m.records[k] = rec
	return attendance.UpsertUpdated, nil
}

func (m *Memory) GetRecord(_ context.Context, employeeID attendance.EmployeeID, date time.Time) (*attendance.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := recordKey{EmployeeID: employeeID, Date: attendance.DayOf(date).Format("2006-01-02")}
	if rec, ok := m.records[k]; ok {
		cp := rec
		return &cp, nil
	}
	return nil, nil
}

func (m *Memory) ListRecordsByMonth(_ context.Context, month attendance.Month) ([]attendance.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []attendance.AttendanceRecord
	for _, rec := range m.records {
		if month.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) ListEmployeeRecords(_ context.Context, employeeID attendance.EmployeeID, month attendance.Month) ([]attendance.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []attendance.AttendanceRecord
	for _, rec := range m.records {
		if rec.EmployeeID == employeeID && month.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func sortRecords(recs []attendance.AttendanceRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].EmployeeID != recs[j].EmployeeID {
			return recs[i].EmployeeID < recs[j].EmployeeID
		}
		return recs[i].Date.Before(recs[j].Date)
	})
}

// =============================================================================
// POLICY STORE
// =============================================================================

func (m *Memory) GetDefaultPolicy(_ context.Context, category attendance.Category) (*attendance.AttendancePolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.defaults[category]; ok {
		cp := p
		return &cp, nil
	}
	return nil, nil
}

func (m *Memory) ListDefaultPolicies(_ context.Context) ([]attendance.AttendancePolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []attendance.AttendancePolicy
	for _, p := range m.defaults {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *Memory) SaveDefaultPolicy(_ context.Context, policy attendance.AttendancePolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.defaults[policy.Category]; ok {
		policy.Version = prev.Version + 1
	} else if policy.Version == 0 {
		policy.Version = 1
	}
	m.defaults[policy.Category] = policy
	return nil
}

func (m *Memory) GetOverride(_ context.Context, employeeID attendance.EmployeeID) (*attendance.CustomPolicyOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if o, ok := m.overrides[employeeID]; ok {
		cp := o
		return &cp, nil
	}
	return nil, nil
}

func (m *Memory) ListOverrides(_ context.Context) ([]attendance.CustomPolicyOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []attendance.CustomPolicyOverride
	for _, o := range m.overrides {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (m *Memory) SaveOverride(_ context.Context, override attendance.CustomPolicyOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.overrides[override.EmployeeID] = override
	return nil
}

func (m *Memory) DeleteOverride(_ context.Context, employeeID attendance.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.overrides, employeeID)
	return nil
}

// =============================================================================
// LEDGER STORE
// =============================================================================

func (m *Memory) InsertEntry(_ context.Context, entry attendance.PenaltyLedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := ledgerKey{EmployeeID: entry.EmployeeID, Month: entry.Month.String()}
	if _, ok := m.ledger[k]; ok {
		return attendance.ErrAlreadyApplied
	}
	m.ledger[k] = entry
	return nil
}

func (m *Memory) GetEntry(_ context.Context, employeeID attendance.EmployeeID, month attendance.Month) (*attendance.PenaltyLedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := ledgerKey{EmployeeID: employeeID, Month: month.String()}
	if e, ok := m.ledger[k]; ok {
		cp := e
		return &cp, nil
	}
	return nil, nil
}

func (m *Memory) ListEntriesByMonth(_ context.Context, month attendance.Month) ([]attendance.PenaltyLedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []attendance.PenaltyLedgerEntry
	for _, e := range m.ledger {
		if e.Month == month {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id attendance.EmployeeID) (*attendance.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if e, ok := m.employees[id]; ok {
		cp := e
		return &cp, nil
	}
	return nil, nil
}

func (m *Memory) ListActiveEmployees(_ context.Context) ([]attendance.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []attendance.Employee
	for _, e := range m.employees {
		if e.Active {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutEmployee seeds the directory (tests/dev only; master-data CRUD is an
// external concern in production).
func (m *Memory) PutEmployee(e attendance.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
}

// =============================================================================
// RATE SOURCE
// =============================================================================

func (m *Memory) PerDayRate(_ context.Context, employeeID attendance.EmployeeID) (attendance.Money, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, ok := m.rates[employeeID]; ok {
		return r, nil
	}
	return attendance.ZeroMoney(), attendance.ErrRateNotFound
}

// PutRate seeds a per-day penalty rate.
func (m *Memory) PutRate(id attendance.EmployeeID, rate attendance.Money) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[id] = rate
}
