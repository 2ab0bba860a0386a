/*
scheduler.go - Background pre-validation scheduler

PURPOSE:
  Periodically runs the previous month's validation so HR opens the
  review screen against warm numbers and configuration problems (missing
  category defaults, missing rates) surface in the logs before month-end
  processing, not during it.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Validates the previous calendar month each tick
  - Never writes: validation is pure, penalties still go through the
    apply endpoint
  - Logs the summary and every warning

CONFIGURATION:
  - CheckInterval: How often to run (default: 6 hours)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewValidationScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: AutoValidate, the on-demand equivalent
  - attendance/engine.go: the validation this schedules
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/attendance-engine/attendance"
)

// ValidationScheduler re-runs last month's validation in the background.
type ValidationScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewValidationScheduler creates a new scheduler.
func NewValidationScheduler(handler *Handler) *ValidationScheduler {
	return &ValidationScheduler{
		Handler:       handler,
		CheckInterval: 6 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (vs *ValidationScheduler) Start() {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if !vs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	vs.ticker = time.NewTicker(vs.CheckInterval)
	vs.wg.Add(1)

	go vs.run()

	log.Printf("[Scheduler] Started with check interval: %v", vs.CheckInterval)
}

// Stop halts the scheduler and waits for a running pass to finish.
func (vs *ValidationScheduler) Stop() {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.ticker == nil {
		return
	}
	vs.ticker.Stop()
	close(vs.stop)
	vs.wg.Wait()
	vs.ticker = nil

	log.Println("[Scheduler] Stopped")
}

func (vs *ValidationScheduler) run() {
	defer vs.wg.Done()

	// One pass at startup, then on every tick.
	vs.RunNow()

	for {
		select {
		case <-vs.ticker.C:
			vs.RunNow()
		case <-vs.stop:
			return
		}
	}
}

// RunNow validates the previous month immediately.
func (vs *ValidationScheduler) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	prev := time.Now().UTC().AddDate(0, -1, 0)
	month := attendance.NewMonth(prev.Year(), prev.Month())

	report, err := vs.Handler.Engine.Validate(ctx, month)
	if err != nil {
		log.Printf("[Scheduler] Validation for %s failed: %v", month, err)
		return
	}

	summary := report.Summary()
	log.Printf("[Scheduler] %s: %d employees, %d clean, %d penalty pending, %d applied, %s pending total",
		month, summary.TotalEmployees, summary.Clean, summary.PenaltyPending,
		summary.Applied, summary.TotalPendingPenalties)
	for _, warn := range report.Warnings {
		log.Printf("[Scheduler] %s warning for %s: %s", month, warn.EmployeeID, warn.Message)
	}
}
