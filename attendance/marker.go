/*
marker.go - Administrative bulk attendance marking

PURPOSE:
  Lets HR upsert one attendance record per (employee, date) for a whole
  batch of employees at once. HR-originated writes are tagged and always
  win over a prior self-check-in for the same date; the precedence rule
  lives in the record store's atomic upsert.

PER-RECORD VALIDATION:
  An invalid status or unknown employee rejects that single record and the
  batch continues. The report carries created/updated/rejected counts plus
  a per-record outcome list so HR can correct and retry only the failures.
*/
package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// BULK MARKER
// =============================================================================

// MarkRequest is one record in a bulk marking batch. Status and the
// optional clock times arrive as raw strings from the HR screen and are
// validated per record.
type MarkRequest struct {
	EmployeeID EmployeeID
	Status     string
	CheckIn    string // "HH:MM", optional
	CheckOut   string // "HH:MM", optional
}

// MarkOutcome classifies a single upsert.
type MarkOutcome string

const (
	MarkCreated  MarkOutcome = "created"
	MarkUpdated  MarkOutcome = "updated"
	MarkRejected MarkOutcome = "rejected"
)

// MarkRecordResult is the per-record outcome.
type MarkRecordResult struct {
	EmployeeID EmployeeID
	Outcome    MarkOutcome
	Reason     string
}

// MarkReport summarizes a bulk marking call.
type MarkReport struct {
	Date     time.Time
	Records  []MarkRecordResult
	Created  int
	Updated  int
	Rejected int
}

// Marker performs bulk attendance upserts on behalf of HR.
type Marker struct {
	Records   RecordStore
	Directory EmployeeDirectory

	Now func() time.Time
}

func NewMarker(records RecordStore, directory EmployeeDirectory) *Marker {
	return &Marker{Records: records, Directory: directory, Now: time.Now}
}

// MarkBulk upserts one record per (employee, date). Records fail
// independently; only a batch with no records at all is a caller error.
func (m *Marker) MarkBulk(ctx context.Context, date time.Time, reqs []MarkRequest) (*MarkReport, error) {
	report := &MarkReport{Date: DayOf(date)}
	for _, req := range reqs {
		res := m.markOne(ctx, report.Date, req)
		report.Records = append(report.Records, res)
		switch res.Outcome {
		case MarkCreated:
			report.Created++
		case MarkUpdated:
			report.Updated++
		default:
			report.Rejected++
		}
	}
	return report, nil
}

func (m *Marker) markOne(ctx context.Context, date time.Time, req MarkRequest) MarkRecordResult {
	status, err := ParseStatus(req.Status)
	if err != nil {
		return MarkRecordResult{EmployeeID: req.EmployeeID, Outcome: MarkRejected, Reason: err.Error()}
	}

	emp, err := m.Directory.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return MarkRecordResult{EmployeeID: req.EmployeeID, Outcome: MarkRejected, Reason: err.Error()}
	}
	if emp == nil {
		return MarkRecordResult{EmployeeID: req.EmployeeID, Outcome: MarkRejected, Reason: "employee not found"}
	}

	rec := AttendanceRecord{
		ID:         uuid.NewString(),
		EmployeeID: req.EmployeeID,
		Date:       date,
		Status:     status,
		Source:     SourceHR,
		UpdatedAt:  m.Now().UTC(),
	}

	if req.CheckIn != "" {
		ct, err := ParseClockTime(req.CheckIn)
		if err != nil {
			return MarkRecordResult{EmployeeID: req.EmployeeID, Outcome: MarkRejected, Reason: err.Error()}
		}
		t := ct.On(date)
		rec.CheckIn = &t
	}
	if req.CheckOut != "" {
		ct, err := ParseClockTime(req.CheckOut)
		if err != nil {
			return MarkRecordResult{EmployeeID: req.EmployeeID, Outcome: MarkRejected, Reason: err.Error()}
		}
		t := ct.On(date)
		rec.CheckOut = &t
	}

	outcome, err := m.Records.UpsertRecord(ctx, rec)
	if err != nil {
		return MarkRecordResult{EmployeeID: req.EmployeeID, Outcome: MarkRejected, Reason: err.Error()}
	}
	switch outcome {
	case UpsertCreated:
		return MarkRecordResult{EmployeeID: req.EmployeeID, Outcome: MarkCreated}
	default:
		// HR writes outrank everything, so a skip cannot happen here;
		// anything not created is an update.
		return MarkRecordResult{EmployeeID: req.EmployeeID, Outcome: MarkUpdated}
	}
}
