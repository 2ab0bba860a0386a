/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Policy:
    PolicyDTO, DefaultPolicyResponse, CustomPolicyDTO, SetCustomPolicyRequest

  Validation:
    ValidateRequest, ValidateResponse, ValidationResultDTO

  Penalties:
    ApplyPenaltiesRequest, ApplyPenaltiesResponse, PenaltyEntryDTO

  Attendance input:
    AttendanceInputResponse, EmployeeAttendanceDTO

  Bulk marking:
    BulkMarkRequest, BulkMarkResponse

VALIDATION:
  Validation is done in handlers and domain code, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - attendance: domain types these convert from
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// POLICY TYPES
// =============================================================================

// PolicyDTO represents a category default policy in API responses.
type PolicyDTO struct {
	Category           string   `json:"category"`
	CheckIn            string   `json:"check_in"`
	CheckOut           string   `json:"check_out"`
	GracePeriodMinutes int      `json:"grace_period_minutes"`
	GraceDaysPerMonth  int      `json:"grace_days_per_month"`
	WorkingDays        []string `json:"working_days"`
	ExemptWFH          bool     `json:"exempt_wfh"`
	Version            int      `json:"version"`
	UpdatedAt          string   `json:"updated_at,omitempty"`
}

// DefaultPolicyResponse wraps the active defaults, one section per category.
type DefaultPolicyResponse struct {
	Policy map[string]PolicyDTO `json:"policy"`
}

// CustomPolicyDTO represents a per-employee override in API responses.
type CustomPolicyDTO struct {
	EmployeeID         string `json:"employee_id"`
	CheckIn            string `json:"check_in"`
	CheckOut           string `json:"check_out"`
	GracePeriodMinutes int    `json:"grace_period_minutes"`
	GraceDaysPerMonth  int    `json:"grace_days_per_month"`
	Reason             string `json:"reason,omitempty"`
	SetBy              string `json:"set_by,omitempty"`
	SetAt              string `json:"set_at,omitempty"`
}

// CustomPolicyListResponse wraps all active overrides.
type CustomPolicyListResponse struct {
	Policies []CustomPolicyDTO `json:"policies"`
}

// SetCustomPolicyRequest is the request to create or replace an override.
type SetCustomPolicyRequest struct {
	EmployeeID         string `json:"employee_id"`
	CheckIn            string `json:"check_in"`
	CheckOut           string `json:"check_out"`
	GracePeriodMinutes int    `json:"grace_period_minutes"`
	GraceDaysPerMonth  int    `json:"grace_days_per_month"`
	Reason             string `json:"reason,omitempty"`
}

// =============================================================================
// VALIDATION TYPES
// =============================================================================

// ValidateRequest asks for a full-month validation run.
type ValidateRequest struct {
	Month string `json:"month"` // "YYYY-MM"
}

// ValidationResultDTO is one employee's monthly result.
type ValidationResultDTO struct {
	EmployeeID       string  `json:"employee_id"`
	Month            string  `json:"month"`
	PresentDays      int     `json:"present_days"`
	AbsentDays       int     `json:"absent_days"`
	HalfDays         int     `json:"half_days"`
	WFHDays          int     `json:"wfh_days"`
	LateDays         int     `json:"late_days"`
	GraceDaysUsed    int     `json:"grace_days_used"`
	GraceDaysAllowed int     `json:"grace_days_allowed"`
	PenaltyDays      int     `json:"penalty_days"`
	PendingPenalty   float64 `json:"pending_penalty_amount"`
	Status           string  `json:"status"`
	HasCustomPolicy  bool    `json:"has_custom_policy"`
}

// ValidationSummaryDTO aggregates a validation run.
type ValidationSummaryDTO struct {
	TotalEmployees        int     `json:"total_employees"`
	Clean                 int     `json:"clean"`
	PenaltyPending        int     `json:"penalty_pending"`
	Applied               int     `json:"applied"`
	TotalPendingPenalties float64 `json:"total_pending_penalties"`
}

// ValidationWarningDTO is a non-fatal per-employee problem.
type ValidationWarningDTO struct {
	EmployeeID string `json:"employee_id"`
	Message    string `json:"message"`
}

// ValidateResponse is the full validation run result.
type ValidateResponse struct {
	Month     string                 `json:"month"`
	Summary   ValidationSummaryDTO   `json:"summary"`
	Employees []ValidationResultDTO  `json:"employees"`
	Warnings  []ValidationWarningDTO `json:"warnings,omitempty"`
}

// =============================================================================
// PENALTY TYPES
// =============================================================================

// ApplyPenaltyEntry is one client-submitted penalty to apply.
type ApplyPenaltyEntry struct {
	EmployeeID    string  `json:"employee_id"`
	PenaltyDays   int     `json:"penalty_days"`
	PenaltyAmount float64 `json:"penalty_amount"`
}

// ApplyPenaltiesRequest is the request to apply a month's penalties.
type ApplyPenaltiesRequest struct {
	Month     string              `json:"month"`
	Penalties []ApplyPenaltyEntry `json:"penalties"`
}

// ApplyEntryResultDTO is the per-entry outcome of an apply call.
type ApplyEntryResultDTO struct {
	EmployeeID string `json:"employee_id"`
	Outcome    string `json:"outcome"` // applied, already_applied, stale_conflict, rejected
	Reason     string `json:"reason,omitempty"`
}

// ApplyPenaltiesResponse reports per-entry outcomes; never all-or-nothing.
type ApplyPenaltiesResponse struct {
	Message        string                `json:"message"`
	Month          string                `json:"month"`
	Applied        int                   `json:"applied"`
	AlreadyApplied int                   `json:"already_applied"`
	Rejected       int                   `json:"rejected"`
	TotalAmount    float64               `json:"total_amount"`
	Entries        []ApplyEntryResultDTO `json:"entries"`
}

// PenaltyEntryDTO is an applied ledger entry in API responses.
type PenaltyEntryDTO struct {
	EmployeeID  string  `json:"employee_id"`
	Month       string  `json:"month"`
	PenaltyDays int     `json:"penalty_days"`
	Amount      float64 `json:"amount"`
	AppliedAt   string  `json:"applied_at"`
	AppliedBy   string  `json:"applied_by,omitempty"`
}

// PenaltyListResponse wraps a month's applied ledger entries.
type PenaltyListResponse struct {
	Month     string            `json:"month"`
	Penalties []PenaltyEntryDTO `json:"penalties"`
}

// =============================================================================
// ATTENDANCE INPUT TYPES
// =============================================================================

// EmployeeAttendanceDTO is one row of the HR attendance-input grid.
type EmployeeAttendanceDTO struct {
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name"`
	EmployeeCode   string `json:"employee_code,omitempty"`
	Department     string `json:"department,omitempty"`
	PresentDays    int    `json:"present_days"`
	AbsentDays     int    `json:"absent_days"`
	HalfDays       int    `json:"half_days"`
	WFHDays        int    `json:"wfh_days"`
	ApprovedLeaves int    `json:"approved_leaves"`
}

// AttendanceInputResponse is the HR attendance-input grid for a month.
type AttendanceInputResponse struct {
	Month     string                  `json:"month"`
	Employees []EmployeeAttendanceDTO `json:"employees"`
}

// =============================================================================
// BULK MARKING TYPES
// =============================================================================

// BulkMarkRecord is one record in a bulk-mark request.
type BulkMarkRecord struct {
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status"`
	CheckIn    string `json:"check_in,omitempty"`
	CheckOut   string `json:"check_out,omitempty"`
}

// BulkMarkRequest marks attendance for many employees on one date.
type BulkMarkRequest struct {
	Date    string           `json:"date"` // "YYYY-MM-DD"
	Records []BulkMarkRecord `json:"records"`
}

// MarkResultDTO is the per-record outcome of a bulk mark.
type MarkResultDTO struct {
	EmployeeID string `json:"employee_id"`
	Outcome    string `json:"outcome"` // created, updated, rejected
	Reason     string `json:"reason,omitempty"`
}

// BulkMarkResponse reports per-record outcomes; never all-or-nothing.
type BulkMarkResponse struct {
	Message  string          `json:"message"`
	Date     string          `json:"date"`
	Created  int             `json:"created"`
	Updated  int             `json:"updated"`
	Rejected int             `json:"rejected"`
	Records  []MarkResultDTO `json:"records"`
}

// MessageResponse is the minimal acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toPolicyDTO(p attendance.AttendancePolicy) PolicyDTO {
	return PolicyDTO{
		Category:           string(p.Category),
		CheckIn:            p.CheckIn.String(),
		CheckOut:           p.CheckOut.String(),
		GracePeriodMinutes: p.GracePeriodMinutes,
		GraceDaysPerMonth:  p.GraceDaysPerMonth,
		WorkingDays:        p.WorkingDays.Strings(),
		ExemptWFH:          p.ExemptWFH,
		Version:            p.Version,
		UpdatedAt:          p.UpdatedAt.Format(time.RFC3339),
	}
}

func toCustomPolicyDTO(o attendance.CustomPolicyOverride) CustomPolicyDTO {
	return CustomPolicyDTO{
		EmployeeID:         string(o.EmployeeID),
		CheckIn:            o.CheckIn.String(),
		CheckOut:           o.CheckOut.String(),
		GracePeriodMinutes: o.GracePeriodMinutes,
		GraceDaysPerMonth:  o.GraceDaysPerMonth,
		Reason:             o.Reason,
		SetBy:              o.SetBy,
		SetAt:              o.SetAt.Format(time.RFC3339),
	}
}

func toValidationResultDTO(res attendance.ValidationResult) ValidationResultDTO {
	return ValidationResultDTO{
		EmployeeID:       string(res.EmployeeID),
		Month:            res.Month.String(),
		PresentDays:      res.PresentDays,
		AbsentDays:       res.AbsentDays,
		HalfDays:         res.HalfDays,
		WFHDays:          res.WFHDays,
		LateDays:         res.LateDays,
		GraceDaysUsed:    res.GraceDaysUsed,
		GraceDaysAllowed: res.GraceDaysAllowed,
		PenaltyDays:      res.PenaltyDays,
		PendingPenalty:   res.PendingPenalty.Float64(),
		Status:           string(res.Status),
		HasCustomPolicy:  res.HasCustomPolicy,
	}
}

func toPenaltyEntryDTO(e attendance.PenaltyLedgerEntry) PenaltyEntryDTO {
	return PenaltyEntryDTO{
		EmployeeID:  string(e.EmployeeID),
		Month:       e.Month.String(),
		PenaltyDays: e.PenaltyDays,
		Amount:      e.Amount.Float64(),
		AppliedAt:   e.AppliedAt.Format(time.RFC3339),
		AppliedBy:   e.AppliedBy,
	}
}
