/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the attendance policy validation and penalty engine via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Policies:
    GET    /attendance/policy                          Category defaults
    GET    /attendance/policy/custom                   List overrides
    POST   /attendance/policy/custom                   Set an override
    DELETE /attendance/policy/custom/{employee_id}     Remove an override

  Validation and penalties:
    POST   /attendance/auto-validate                   Validate one month
    POST   /attendance/apply-penalties                 Apply reviewed penalties
    GET    /attendance/penalties/{month}               Applied ledger entries

  HR input:
    GET    /attendance/hr/employee-attendance-input/{month}  Monthly grid
    POST   /attendance/hr/mark-attendance-bulk               Bulk marking

ARCHITECTURE:
  Handler holds the engine and its collaborators, all built over one Store.
  Handlers parse and validate input, call domain logic, serialize output.

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, ledger, marker, policy manager)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (month, status, policy fields)
  - 404: Employee not found
  - 500: Missing category default (configuration bug), storage failures
  Batch endpoints (validate, apply, bulk-mark) return per-item outcomes
  instead of failing the whole request; only structurally invalid top-level
  input aborts the call.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - attendance: the domain logic these handlers delegate to
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/attendance-engine/attendance"
)

// Store is the persistence surface the handlers are built over. Both the
// SQLite store and the in-memory store satisfy it.
type Store interface {
	attendance.RecordStore
	attendance.PolicyStore
	attendance.LedgerStore
	attendance.EmployeeDirectory
	attendance.RateSource
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     Store
	Engine    *attendance.Engine
	Penalties *attendance.PenaltyLedger
	Marker    *attendance.Marker
	Manager   *attendance.PolicyManager
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store) *Handler {
	engine := attendance.NewEngine(store, store, store, store,
		&attendance.Calculator{Rates: store})
	return &Handler{
		Store:     store,
		Engine:    engine,
		Penalties: attendance.NewPenaltyLedger(store, engine),
		Marker:    attendance.NewMarker(store, store),
		Manager:   attendance.NewPolicyManager(store, store),
	}
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// GetDefaultPolicy returns the active category defaults, one section per
// category.
func (h *Handler) GetDefaultPolicy(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Store.ListDefaultPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load default policies", err)
		return
	}
	if len(policies) == 0 {
		writeError(w, http.StatusInternalServerError, "No default policies configured", nil)
		return
	}

	resp := DefaultPolicyResponse{Policy: make(map[string]PolicyDTO, len(policies))}
	for _, p := range policies {
		resp.Policy[string(p.Category)] = toPolicyDTO(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListCustomPolicies returns all active per-employee overrides.
func (h *Handler) ListCustomPolicies(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.Store.ListOverrides(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list custom policies", err)
		return
	}

	resp := CustomPolicyListResponse{Policies: make([]CustomPolicyDTO, len(overrides))}
	for i, o := range overrides {
		resp.Policies[i] = toCustomPolicyDTO(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetCustomPolicy creates or replaces an employee's policy override.
func (h *Handler) SetCustomPolicy(w http.ResponseWriter, r *http.Request) {
	var req SetCustomPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	checkIn, err := attendance.ParseClockTime(req.CheckIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_in (use HH:MM)", err)
		return
	}
	checkOut, err := attendance.ParseClockTime(req.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_out (use HH:MM)", err)
		return
	}

	override := attendance.CustomPolicyOverride{
		EmployeeID:         attendance.EmployeeID(req.EmployeeID),
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		GracePeriodMinutes: req.GracePeriodMinutes,
		GraceDaysPerMonth:  req.GraceDaysPerMonth,
		Reason:             req.Reason,
		SetBy:              hrUser(r),
	}

	if err := h.Manager.SetCustomPolicy(r.Context(), override); err != nil {
		writeDomainError(w, "Failed to set custom policy", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Custom policy set for " + req.EmployeeID,
	})
}

// DeleteCustomPolicy removes an employee's override. The employee falls
// back to the category default.
func (h *Handler) DeleteCustomPolicy(w http.ResponseWriter, r *http.Request) {
	employeeID := attendance.EmployeeID(chi.URLParam(r, "employee_id"))

	if err := h.Manager.DeleteCustomPolicy(r.Context(), employeeID); err != nil {
		writeDomainError(w, "Failed to delete custom policy", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Custom policy removed for " + string(employeeID),
	})
}

// =============================================================================
// VALIDATION HANDLERS
// =============================================================================

// AutoValidate runs the month's validation for all employees in scope.
func (h *Handler) AutoValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	month, err := attendance.ParseMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	report, err := h.Engine.Validate(r.Context(), month)
	if err != nil {
		writeDomainError(w, "Validation failed", err)
		return
	}

	summary := report.Summary()
	resp := ValidateResponse{
		Month: month.String(),
		Summary: ValidationSummaryDTO{
			TotalEmployees:        summary.TotalEmployees,
			Clean:                 summary.Clean,
			PenaltyPending:        summary.PenaltyPending,
			Applied:               summary.Applied,
			TotalPendingPenalties: summary.TotalPendingPenalties.Float64(),
		},
		Employees: make([]ValidationResultDTO, len(report.Results)),
	}
	for i, res := range report.Results {
		resp.Employees[i] = toValidationResultDTO(res)
	}
	for _, warn := range report.Warnings {
		resp.Warnings = append(resp.Warnings, ValidationWarningDTO{
			EmployeeID: string(warn.EmployeeID),
			Message:    warn.Message,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// PENALTY HANDLERS
// =============================================================================

// ApplyPenalties applies reviewed penalties for a month. Per-entry outcomes;
// entries that conflict or fail do not abort the batch.
func (h *Handler) ApplyPenalties(w http.ResponseWriter, r *http.Request) {
	var req ApplyPenaltiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	month, err := attendance.ParseMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	if len(req.Penalties) == 0 {
		writeError(w, http.StatusBadRequest, "No penalties submitted", nil)
		return
	}

	entries := make([]attendance.ApplyEntry, len(req.Penalties))
	for i, p := range req.Penalties {
		entries[i] = attendance.ApplyEntry{
			EmployeeID:  attendance.EmployeeID(p.EmployeeID),
			PenaltyDays: p.PenaltyDays,
			Amount:      attendance.NewMoney(p.PenaltyAmount),
		}
	}

	report, err := h.Penalties.Apply(r.Context(), month, entries, hrUser(r))
	if err != nil {
		writeDomainError(w, "Failed to apply penalties", err)
		return
	}

	resp := ApplyPenaltiesResponse{
		Message:        "Penalties processed",
		Month:          month.String(),
		Applied:        report.AppliedCount,
		AlreadyApplied: report.AlreadyAppliedCount,
		Rejected:       report.RejectedCount,
		TotalAmount:    report.TotalAmount.Float64(),
		Entries:        make([]ApplyEntryResultDTO, len(report.Entries)),
	}
	for i, e := range report.Entries {
		resp.Entries[i] = ApplyEntryResultDTO{
			EmployeeID: string(e.EmployeeID),
			Outcome:    string(e.Outcome),
			Reason:     e.Reason,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListPenalties returns the month's applied ledger entries.
func (h *Handler) ListPenalties(w http.ResponseWriter, r *http.Request) {
	month, err := attendance.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	entries, err := h.Store.ListEntriesByMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list penalties", err)
		return
	}

	resp := PenaltyListResponse{
		Month:     month.String(),
		Penalties: make([]PenaltyEntryDTO, len(entries)),
	}
	for i, e := range entries {
		resp.Penalties[i] = toPenaltyEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HR INPUT HANDLERS
// =============================================================================

// AttendanceInput returns the monthly attendance grid for the HR input
// screen: per-employee status counts over the month's records. Every active
// employee appears, with zero counts if unmarked.
func (h *Handler) AttendanceInput(w http.ResponseWriter, r *http.Request) {
	month, err := attendance.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	ctx := r.Context()
	employees, err := h.Store.ListActiveEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	records, err := h.Store.ListRecordsByMonth(ctx, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	rows := make(map[attendance.EmployeeID]*EmployeeAttendanceDTO, len(employees))
	for _, emp := range employees {
		rows[emp.ID] = &EmployeeAttendanceDTO{
			EmployeeID:   string(emp.ID),
			Name:         emp.Name,
			EmployeeCode: emp.Code,
			Department:   emp.Department,
		}
	}

	for _, rec := range records {
		row, ok := rows[rec.EmployeeID]
		if !ok {
			// Inactive or unknown employees with records still show up so
			// HR can see and correct them.
			row = &EmployeeAttendanceDTO{EmployeeID: string(rec.EmployeeID)}
			rows[rec.EmployeeID] = row
		}
		switch rec.Status {
		case attendance.StatusPresent:
			row.PresentDays++
		case attendance.StatusAbsent:
			row.AbsentDays++
		case attendance.StatusHalfDay:
			row.HalfDays++
		case attendance.StatusWorkFromHome:
			row.WFHDays++
		case attendance.StatusOnLeave:
			row.ApprovedLeaves++
		}
	}

	resp := AttendanceInputResponse{Month: month.String()}
	for _, row := range rows {
		resp.Employees = append(resp.Employees, *row)
	}
	sort.Slice(resp.Employees, func(i, j int) bool {
		return resp.Employees[i].EmployeeID < resp.Employees[j].EmployeeID
	})

	writeJSON(w, http.StatusOK, resp)
}

// BulkMark marks attendance for many employees on one date. Per-record
// outcomes; invalid records are rejected without aborting the batch.
func (h *Handler) BulkMark(w http.ResponseWriter, r *http.Request) {
	var req BulkMarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "No records submitted", nil)
		return
	}

	marks := make([]attendance.MarkRequest, len(req.Records))
	for i, rec := range req.Records {
		marks[i] = attendance.MarkRequest{
			EmployeeID: attendance.EmployeeID(rec.EmployeeID),
			Status:     rec.Status,
			CheckIn:    rec.CheckIn,
			CheckOut:   rec.CheckOut,
		}
	}

	report, err := h.Marker.MarkBulk(r.Context(), date, marks)
	if err != nil {
		writeDomainError(w, "Failed to mark attendance", err)
		return
	}

	resp := BulkMarkResponse{
		Message:  "Attendance marked",
		Date:     req.Date,
		Created:  report.Created,
		Updated:  report.Updated,
		Rejected: report.Rejected,
		Records:  make([]MarkResultDTO, len(report.Records)),
	}
	for i, res := range report.Records {
		resp.Records[i] = MarkResultDTO{
			EmployeeID: string(res.EmployeeID),
			Outcome:    string(res.Outcome),
			Reason:     res.Reason,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

// hrUser identifies who performed an HR action, for audit fields.
func hrUser(r *http.Request) string {
	if u := r.Header.Get("X-HR-User"); u != "" {
		return u
	}
	return "hr"
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP status codes: client input
// problems are 400, unknown employees 404, missing category defaults 500
// (a configuration bug, not a client error).
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case attendance.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case attendance.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
