/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces using SQLite. In production, the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  attendance.RecordStore:       Daily attendance rows, one per (employee, date)
  attendance.PolicyStore:       Category defaults + per-employee overrides
  attendance.LedgerStore:       Applied monthly penalties
  attendance.EmployeeDirectory: Employee master attributes (read side)
  attendance.RateSource:        Per-day penalty rates

IDEMPOTENCY ENFORCEMENT:
  The penalty ledger carries a UNIQUE(employee_id, month) index. InsertEntry
  maps the constraint violation to attendance.ErrAlreadyApplied, so two
  concurrent Apply calls for the same employee/month cannot both succeed.
  The check lives in the schema, not in application code.

KEY TABLES:
  attendance_records:      One row per (employee, date), upserted with source
                           precedence (HR replaces self, never the reverse)
  default_policies:        One active policy per category
  custom_policy_overrides: At most one override per employee
  penalty_ledger:          Applied penalties, append-only
  employees:               Directory entries
  penalty_rates:           Per-day deduction rate per employee

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - attendance/store.go: Interface definitions
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
)

const dayFormat = "2006-01-02"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Attendance records: one row per (employee, date)
	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		check_in TEXT,
		check_out TEXT,
		status TEXT NOT NULL,
		work_location TEXT,
		source TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: one record per employee per day. Writes go through
	-- UpsertRecord, which applies source precedence before updating.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_employee_date
		ON attendance_records(employee_id, date);

	-- Month listing is the validation hot path
	CREATE INDEX IF NOT EXISTS idx_records_date
		ON attendance_records(date);

	-- Default policies: one active row per category
	CREATE TABLE IF NOT EXISTS default_policies (
		category TEXT PRIMARY KEY,
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
		grace_period_minutes INTEGER NOT NULL,
		grace_days_per_month INTEGER NOT NULL,
		working_days INTEGER NOT NULL,
		exempt_wfh BOOLEAN NOT NULL DEFAULT FALSE,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	-- Custom policy overrides: at most one per employee
	CREATE TABLE IF NOT EXISTS custom_policy_overrides (
		employee_id TEXT PRIMARY KEY,
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
		grace_period_minutes INTEGER NOT NULL,
		grace_days_per_month INTEGER NOT NULL,
		reason TEXT,
		set_by TEXT,
		set_at TEXT NOT NULL
	);

	-- Penalty ledger (append-only)
	CREATE TABLE IF NOT EXISTS penalty_ledger (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		month TEXT NOT NULL,
		penalty_days INTEGER NOT NULL,
		amount TEXT NOT NULL,
		applied_at TEXT NOT NULL,
		applied_by TEXT
	);

	-- CRITICAL: at most one applied penalty per employee per month.
	-- InsertEntry maps a violation to attendance.ErrAlreadyApplied.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_employee_month
		ON penalty_ledger(employee_id, month);

	CREATE INDEX IF NOT EXISTS idx_ledger_month
		ON penalty_ledger(month);

	-- Employees (directory entries)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT,
		department TEXT,
		category TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_employees_active
		ON employees(active);

	-- Per-day penalty rates (payroll configuration)
	CREATE TABLE IF NOT EXISTS penalty_rates (
		employee_id TEXT PRIMARY KEY,
		per_day_rate TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE (attendance.RecordStore interface)
// =============================================================================

// UpsertRecord writes a record, applying source precedence atomically. An HR
// write replaces anything; a self write never replaces an HR row.
func (s *Store) UpsertRecord(ctx context.Context, rec attendance.AttendanceRecord) (attendance.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := attendance.DayOf(rec.Date).Format(dayFormat)

	var existingID string
	var existingSource attendance.RecordSource
	err := s.db.QueryRowContext(ctx,
		"SELECT id, source FROM attendance_records WHERE employee_id = ? AND date = ?",
		rec.EmployeeID, day,
	).Scan(&existingID, &existingSource)

	switch {
	case err == sql.ErrNoRows:
		query := `
			INSERT INTO attendance_records
			(id, employee_id, date, check_in, check_out, status, work_location, source, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := s.db.ExecContext(ctx, query,
			rec.ID, rec.EmployeeID, day,
			nullTime(rec.CheckIn), nullTime(rec.CheckOut),
			rec.Status, nullString(rec.WorkLocation), rec.Source,
			rec.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert record: %w", err)
		}
		return attendance.UpsertCreated, nil

	case err != nil:
		return "", fmt.Errorf("failed to load existing record: %w", err)
	}

	if !rec.Source.Outranks(existingSource) {
		return attendance.UpsertSkipped, nil
	}

	// Keep the original row ID so external references stay stable.
	query := `
		UPDATE attendance_records
		SET check_in = ?, check_out = ?, status = ?, work_location = ?, source = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = s.db.ExecContext(ctx, query,
		nullTime(rec.CheckIn), nullTime(rec.CheckOut),
		rec.Status, nullString(rec.WorkLocation), rec.Source,
		rec.UpdatedAt.UTC().Format(time.RFC3339),
		existingID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to update record: %w", err)
	}
	return attendance.UpsertUpdated, nil
}

// GetRecord returns the record for (employee, date), or nil if none.
func (s *Store) GetRecord(ctx context.Context, employeeID attendance.EmployeeID, date time.Time) (*attendance.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := recordSelect + " WHERE employee_id = ? AND date = ?"
	recs, err := s.queryRecords(ctx, query, employeeID, attendance.DayOf(date).Format(dayFormat))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// ListRecordsByMonth returns all records in the month, employee then date.
func (s *Store) ListRecordsByMonth(ctx context.Context, month attendance.Month) ([]attendance.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := recordSelect + `
		WHERE date >= ? AND date <= ?
		ORDER BY employee_id ASC, date ASC
	`
	return s.queryRecords(ctx, query,
		month.Start().Format(dayFormat), month.End().Format(dayFormat))
}

// ListEmployeeRecords returns one employee's records in the month, by date.
func (s *Store) ListEmployeeRecords(ctx context.Context, employeeID attendance.EmployeeID, month attendance.Month) ([]attendance.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := recordSelect + `
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`
	return s.queryRecords(ctx, query, employeeID,
		month.Start().Format(dayFormat), month.End().Format(dayFormat))
}

const recordSelect = `
	SELECT id, employee_id, date, check_in, check_out, status, work_location, source, updated_at
	FROM attendance_records
`

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]attendance.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (attendance.AttendanceRecord, error) {
	var (
		rec          attendance.AttendanceRecord
		date         string
		checkIn      sql.NullString
		checkOut     sql.NullString
		workLocation sql.NullString
		updatedAt    string
	)

	err := rows.Scan(
		&rec.ID, &rec.EmployeeID, &date, &checkIn, &checkOut,
		&rec.Status, &workLocation, &rec.Source, &updatedAt,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.Date, _ = time.Parse(dayFormat, date)
	rec.CheckIn = parseNullTime(checkIn)
	rec.CheckOut = parseNullTime(checkOut)
	rec.WorkLocation = workLocation.String
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return rec, nil
}

// =============================================================================
// POLICY STORE (attendance.PolicyStore interface)
// =============================================================================

// GetDefaultPolicy returns the active default for a category, nil if none.
func (s *Store) GetDefaultPolicy(ctx context.Context, category attendance.Category) (*attendance.AttendancePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		policySelect+" WHERE category = ?", category)

	policy, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// ListDefaultPolicies returns all active category defaults.
func (s *Store) ListDefaultPolicies(ctx context.Context) ([]attendance.AttendancePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, policySelect+" ORDER BY category ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []attendance.AttendancePolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}

// SaveDefaultPolicy replaces the active default for its category. Replacing
// an existing policy bumps its version.
func (s *Store) SaveDefaultPolicy(ctx context.Context, policy attendance.AttendancePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO default_policies
		(category, check_in, check_out, grace_period_minutes, grace_days_per_month,
		 working_days, exempt_wfh, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(category) DO UPDATE SET
			check_in = excluded.check_in,
			check_out = excluded.check_out,
			grace_period_minutes = excluded.grace_period_minutes,
			grace_days_per_month = excluded.grace_days_per_month,
			working_days = excluded.working_days,
			exempt_wfh = excluded.exempt_wfh,
			version = default_policies.version + 1,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		policy.Category,
		policy.CheckIn.String(), policy.CheckOut.String(),
		policy.GracePeriodMinutes, policy.GraceDaysPerMonth,
		int(policy.WorkingDays), policy.ExemptWFH,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

const policySelect = `
	SELECT category, check_in, check_out, grace_period_minutes, grace_days_per_month,
	       working_days, exempt_wfh, version, updated_at
	FROM default_policies
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (attendance.AttendancePolicy, error) {
	var (
		policy      attendance.AttendancePolicy
		checkIn     string
		checkOut    string
		workingDays int
		updatedAt   string
	)

	err := row.Scan(
		&policy.Category, &checkIn, &checkOut,
		&policy.GracePeriodMinutes, &policy.GraceDaysPerMonth,
		&workingDays, &policy.ExemptWFH, &policy.Version, &updatedAt,
	)
	if err != nil {
		return policy, err
	}

	policy.CheckIn, _ = attendance.ParseClockTime(checkIn)
	policy.CheckOut, _ = attendance.ParseClockTime(checkOut)
	policy.WorkingDays = attendance.WeekdaySet(workingDays)
	policy.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return policy, nil
}

// GetOverride returns the active override for an employee, nil if none.
func (s *Store) GetOverride(ctx context.Context, employeeID attendance.EmployeeID) (*attendance.CustomPolicyOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		overrideSelect+" WHERE employee_id = ?", employeeID)

	override, err := scanOverride(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &override, nil
}

// ListOverrides returns all active overrides.
func (s *Store) ListOverrides(ctx context.Context) ([]attendance.CustomPolicyOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, overrideSelect+" ORDER BY employee_id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []attendance.CustomPolicyOverride
	for rows.Next() {
		override, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, override)
	}
	return overrides, rows.Err()
}

// SaveOverride replaces any prior override for the employee.
func (s *Store) SaveOverride(ctx context.Context, override attendance.CustomPolicyOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO custom_policy_overrides
		(employee_id, check_in, check_out, grace_period_minutes, grace_days_per_month,
		 reason, set_by, set_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			check_in = excluded.check_in,
			check_out = excluded.check_out,
			grace_period_minutes = excluded.grace_period_minutes,
			grace_days_per_month = excluded.grace_days_per_month,
			reason = excluded.reason,
			set_by = excluded.set_by,
			set_at = excluded.set_at
	`

	_, err := s.db.ExecContext(ctx, query,
		override.EmployeeID,
		override.CheckIn.String(), override.CheckOut.String(),
		override.GracePeriodMinutes, override.GraceDaysPerMonth,
		nullString(override.Reason), nullString(override.SetBy),
		override.SetAt.UTC().Format(time.RFC3339),
	)
	return err
}

// DeleteOverride removes an employee's override. Missing is not an error.
func (s *Store) DeleteOverride(ctx context.Context, employeeID attendance.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM custom_policy_overrides WHERE employee_id = ?", employeeID)
	return err
}

const overrideSelect = `
	SELECT employee_id, check_in, check_out, grace_period_minutes, grace_days_per_month,
	       reason, set_by, set_at
	FROM custom_policy_overrides
`

func scanOverride(row rowScanner) (attendance.CustomPolicyOverride, error) {
	var (
		override attendance.CustomPolicyOverride
		checkIn  string
		checkOut string
		reason   sql.NullString
		setBy    sql.NullString
		setAt    string
	)

	err := row.Scan(
		&override.EmployeeID, &checkIn, &checkOut,
		&override.GracePeriodMinutes, &override.GraceDaysPerMonth,
		&reason, &setBy, &setAt,
	)
	if err != nil {
		return override, err
	}

	override.CheckIn, _ = attendance.ParseClockTime(checkIn)
	override.CheckOut, _ = attendance.ParseClockTime(checkOut)
	override.Reason = reason.String
	override.SetBy = setBy.String
	override.SetAt, _ = time.Parse(time.RFC3339, setAt)
	return override, nil
}

// =============================================================================
// LEDGER STORE (attendance.LedgerStore interface)
// =============================================================================

// InsertEntry persists a ledger entry. Returns attendance.ErrAlreadyApplied
// when an entry for (employee, month) already exists.
func (s *Store) InsertEntry(ctx context.Context, entry attendance.PenaltyLedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO penalty_ledger
		(id, employee_id, month, penalty_days, amount, applied_at, applied_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.EmployeeID, entry.Month.String(),
		entry.PenaltyDays, entry.Amount.String(),
		entry.AppliedAt.UTC().Format(time.RFC3339),
		nullString(entry.AppliedBy),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return attendance.ErrAlreadyApplied
		}
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

// GetEntry returns the entry for (employee, month), or nil if none.
func (s *Store) GetEntry(ctx context.Context, employeeID attendance.EmployeeID, month attendance.Month) (*attendance.PenaltyLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		ledgerSelect+" WHERE employee_id = ? AND month = ?",
		employeeID, month.String())

	entry, err := scanLedgerEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntriesByMonth returns all entries for the month, ordered by employee.
func (s *Store) ListEntriesByMonth(ctx context.Context, month attendance.Month) ([]attendance.PenaltyLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		ledgerSelect+" WHERE month = ? ORDER BY employee_id ASC",
		month.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []attendance.PenaltyLedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

const ledgerSelect = `
	SELECT id, employee_id, month, penalty_days, amount, applied_at, applied_by
	FROM penalty_ledger
`

func scanLedgerEntry(row rowScanner) (attendance.PenaltyLedgerEntry, error) {
	var (
		entry     attendance.PenaltyLedgerEntry
		month     string
		amount    string
		appliedAt string
		appliedBy sql.NullString
	)

	err := row.Scan(
		&entry.ID, &entry.EmployeeID, &month,
		&entry.PenaltyDays, &amount, &appliedAt, &appliedBy,
	)
	if err != nil {
		return entry, err
	}

	entry.Month, _ = attendance.ParseMonth(month)
	entry.Amount = parseMoney(amount)
	entry.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt)
	entry.AppliedBy = appliedBy.String
	return entry, nil
}

// =============================================================================
// EMPLOYEE DIRECTORY (attendance.EmployeeDirectory interface)
// =============================================================================

// GetEmployee retrieves an employee by ID, or nil if unknown.
func (s *Store) GetEmployee(ctx context.Context, id attendance.EmployeeID) (*attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp attendance.Employee
	var code, department sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, code, department, category, active FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &code, &department, &emp.Category, &emp.Active)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	emp.Code = code.String
	emp.Department = department.String
	return &emp, nil
}

// ListActiveEmployees returns all employees with active employment.
func (s *Store) ListActiveEmployees(ctx context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, code, department, category, active FROM employees WHERE active = TRUE ORDER BY id ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []attendance.Employee
	for rows.Next() {
		var emp attendance.Employee
		var code, department sql.NullString
		if err := rows.Scan(&emp.ID, &emp.Name, &code, &department, &emp.Category, &emp.Active); err != nil {
			return nil, err
		}
		emp.Code = code.String
		emp.Department = department.String
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// SaveEmployee saves a directory entry. Employee CRUD lives in an external
// system; this is the seeding/sync entry point.
func (s *Store) SaveEmployee(ctx context.Context, emp attendance.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, code, department, category, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			code = excluded.code,
			department = excluded.department,
			category = excluded.category,
			active = excluded.active
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, nullString(emp.Code), nullString(emp.Department),
		emp.Category, emp.Active,
	)
	return err
}

// =============================================================================
// RATE SOURCE (attendance.RateSource interface)
// =============================================================================

// PerDayRate returns the monetary deduction per penalty day.
func (s *Store) PerDayRate(ctx context.Context, employeeID attendance.EmployeeID) (attendance.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rate string
	err := s.db.QueryRowContext(ctx,
		"SELECT per_day_rate FROM penalty_rates WHERE employee_id = ?",
		employeeID,
	).Scan(&rate)

	if err == sql.ErrNoRows {
		return attendance.ZeroMoney(), attendance.ErrRateNotFound
	}
	if err != nil {
		return attendance.ZeroMoney(), err
	}
	return parseMoney(rate), nil
}

// SaveRate sets an employee's per-day penalty rate.
func (s *Store) SaveRate(ctx context.Context, employeeID attendance.EmployeeID, rate attendance.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO penalty_rates (employee_id, per_day_rate)
		VALUES (?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			per_day_rate = excluded.per_day_rate
	`

	_, err := s.db.ExecContext(ctx, query, employeeID, rate.String())
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"attendance_records", "default_policies", "custom_policy_overrides",
		"penalty_ledger", "employees", "penalty_rates",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseMoney(s string) attendance.Money {
	d, _ := decimal.NewFromString(s)
	return attendance.Money{Value: d}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
