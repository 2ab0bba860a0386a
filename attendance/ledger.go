/*
ledger.go - Idempotent penalty application

PURPOSE:
  Persists reviewed penalties to the payroll-affecting ledger, exactly once
  per (employee, month). The client submits the penalty it saw at review
  time, but the server recomputes authoritatively at apply time and uses the
  submitted value only as a consistency check - never as ground truth.

PER-ENTRY OUTCOMES:
  applied:         Entry recomputed, matched, and persisted.
  already_applied: A ledger entry exists for the month; no-op, never raised
                   as an error. Covers the concurrent-apply race too, since
                   the storage layer enforces the idempotency key.
  stale_conflict:  Submitted days/amount differ from the recomputation
                   (stale client data or a concurrent policy change).
                   Nothing is persisted for that entry.
  rejected:        The employee could not be recomputed at all (unknown
                   employee, missing payroll rate).

NOT ALL-OR-NOTHING:
  Entries succeed or fail independently; HR corrects and retries only the
  failed subset.
*/
package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// APPLY TYPES
// =============================================================================

// ApplyEntry is one client-submitted penalty to apply.
type ApplyEntry struct {
	EmployeeID  EmployeeID
	PenaltyDays int
	Amount      Money
}

// ApplyOutcome classifies what happened to a single entry.
type ApplyOutcome string

const (
	OutcomeApplied        ApplyOutcome = "applied"
	OutcomeAlreadyApplied ApplyOutcome = "already_applied"
	OutcomeStaleConflict  ApplyOutcome = "stale_conflict"
	OutcomeRejected       ApplyOutcome = "rejected"
)

// ApplyEntryResult is the per-entry outcome.
type ApplyEntryResult struct {
	EmployeeID EmployeeID
	Outcome    ApplyOutcome
	Reason     string
	Amount     Money // amount actually charged (zero unless applied)
}

// ApplyReport is the full result of an apply call.
type ApplyReport struct {
	Month               Month
	Entries             []ApplyEntryResult
	AppliedCount        int
	AlreadyAppliedCount int
	RejectedCount       int
	TotalAmount         Money
}

// =============================================================================
// PENALTY LEDGER
// =============================================================================

// PenaltyLedger applies reviewed penalties idempotently.
type PenaltyLedger struct {
	Store  LedgerStore
	Engine *Engine

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewPenaltyLedger(store LedgerStore, engine *Engine) *PenaltyLedger {
	return &PenaltyLedger{Store: store, Engine: engine, Now: time.Now}
}

// Apply processes each entry independently and returns per-entry outcomes
// plus aggregates. Only a malformed month aborts the whole call.
func (l *PenaltyLedger) Apply(ctx context.Context, month Month, entries []ApplyEntry, appliedBy string) (*ApplyReport, error) {
	if month.IsZero() {
		return nil, &InvalidMonthError{Raw: month.String()}
	}

	report := &ApplyReport{Month: month, TotalAmount: ZeroMoney()}
	for _, entry := range entries {
		res := l.applyOne(ctx, month, entry, appliedBy)
		report.Entries = append(report.Entries, res)
		switch res.Outcome {
		case OutcomeApplied:
			report.AppliedCount++
			report.TotalAmount = report.TotalAmount.Add(res.Amount)
		case OutcomeAlreadyApplied:
			report.AlreadyAppliedCount++
		default:
			report.RejectedCount++
		}
	}
	return report, nil
}

func (l *PenaltyLedger) applyOne(ctx context.Context, month Month, entry ApplyEntry, appliedBy string) ApplyEntryResult {
	existing, err := l.Store.GetEntry(ctx, entry.EmployeeID, month)
	if err != nil {
		return ApplyEntryResult{EmployeeID: entry.EmployeeID, Outcome: OutcomeRejected, Reason: err.Error(), Amount: ZeroMoney()}
	}
	if existing != nil {
		return ApplyEntryResult{EmployeeID: entry.EmployeeID, Outcome: OutcomeAlreadyApplied,
			Reason: "penalty already applied for this month", Amount: ZeroMoney()}
	}

	// Recompute server-side; the submitted values are only a consistency check.
	current, err := l.Engine.ValidateEmployee(ctx, entry.EmployeeID, month)
	if err != nil {
		return ApplyEntryResult{EmployeeID: entry.EmployeeID, Outcome: OutcomeRejected, Reason: err.Error(), Amount: ZeroMoney()}
	}

	if current.PenaltyDays != entry.PenaltyDays || !current.PendingPenalty.Equal(entry.Amount) {
		conflict := &StaleConflictError{
			EmployeeID:       entry.EmployeeID,
			Month:            month,
			SubmittedDays:    entry.PenaltyDays,
			RecomputedDays:   current.PenaltyDays,
			SubmittedAmount:  entry.Amount,
			RecomputedAmount: current.PendingPenalty,
		}
		return ApplyEntryResult{EmployeeID: entry.EmployeeID, Outcome: OutcomeStaleConflict,
			Reason: conflict.Error(), Amount: ZeroMoney()}
	}

	ledgerEntry := PenaltyLedgerEntry{
		ID:          uuid.NewString(),
		EmployeeID:  entry.EmployeeID,
		Month:       month,
		PenaltyDays: current.PenaltyDays,
		Amount:      current.PendingPenalty,
		AppliedAt:   l.Now().UTC(),
		AppliedBy:   appliedBy,
	}

	// The storage layer owns the (employee, month) uniqueness; losing the
	// race to a concurrent apply is reported as already_applied.
	if err := l.Store.InsertEntry(ctx, ledgerEntry); err != nil {
		if errors.Is(err, ErrAlreadyApplied) {
			return ApplyEntryResult{EmployeeID: entry.EmployeeID, Outcome: OutcomeAlreadyApplied,
				Reason: "penalty already applied for this month", Amount: ZeroMoney()}
		}
		return ApplyEntryResult{EmployeeID: entry.EmployeeID, Outcome: OutcomeRejected, Reason: err.Error(), Amount: ZeroMoney()}
	}

	return ApplyEntryResult{EmployeeID: entry.EmployeeID, Outcome: OutcomeApplied, Amount: ledgerEntry.Amount}
}
