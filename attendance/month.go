package attendance

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH - The aggregation boundary for validation and penalties
// =============================================================================

// Month identifies a calendar month. Validation results and penalty ledger
// entries are always keyed by (employee, month), never by arbitrary ranges.
type Month struct {
	Year int
	Mon  time.Month
}

// ParseMonth parses "YYYY-MM". Anything else is ErrInvalidMonth: a malformed
// month aborts the whole call, there is no partial report for a month that
// cannot be identified.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, &InvalidMonthError{Raw: s}
	}
	return Month{Year: t.Year(), Mon: t.Month()}, nil
}

func NewMonth(year int, mon time.Month) Month { return Month{Year: year, Mon: mon} }

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon)) }

func (m Month) IsZero() bool { return m.Year == 0 }

// Start returns the first day of the month (UTC, day granularity).
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

// Days returns every date in the month in order.
func (m Month) Days() []time.Time {
	var days []time.Time
	end := m.End()
	for d := m.Start(); !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether the date (truncated to day) falls in the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Mon
}

// =============================================================================
// DAY HELPERS
// =============================================================================

// DayOf truncates a timestamp to its calendar date in UTC.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// =============================================================================
// CLOCK TIME - Time-of-day without a date (policy check-in/out boundaries)
// =============================================================================

// ClockTime is a time of day in minutes since midnight. Policies express
// check-in/check-out boundaries as clock times; lateness is the signed
// difference between two clock times on the same date.
type ClockTime int

// ParseClockTime parses "HH:MM" (24h).
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q (use HH:MM): %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// MustClockTime is a test/seed helper; it panics on malformed input.
func MustClockTime(s string) ClockTime {
	ct, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return ct
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MinutesAfter returns how many minutes t's time-of-day falls after the
// clock time. Negative means the timestamp is earlier.
func (c ClockTime) MinutesAfter(t time.Time) int {
	return (t.Hour()*60 + t.Minute()) - int(c)
}

// On anchors the clock time onto a specific date.
func (c ClockTime) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, time.UTC)
}

// =============================================================================
// WEEKDAY SET - Which weekdays count as working days
// =============================================================================

// WeekdaySet is the set of working weekdays for a policy.
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

// MondayToFriday is the default working week.
func MondayToFriday() WeekdaySet {
	return NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
}

func (s WeekdaySet) Contains(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }

func (s WeekdaySet) IsEmpty() bool { return s == 0 }

// Weekdays returns the members in Sunday..Saturday order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// Strings returns lowercase weekday names, the wire/storage representation.
func (s WeekdaySet) Strings() []string {
	var out []string
	for _, d := range s.Weekdays() {
		out = append(out, weekdayName(d))
	}
	return out
}

// ParseWeekdaySet parses lowercase weekday names ("monday", ...).
func ParseWeekdaySet(names []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, n := range names {
		d, ok := weekdayByName(n)
		if !ok {
			return 0, fmt.Errorf("invalid weekday %q", n)
		}
		s |= 1 << uint(d)
	}
	return s, nil
}

func weekdayName(d time.Weekday) string {
	names := [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	return names[int(d)]
}

func weekdayByName(n string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if weekdayName(d) == n {
			return d, true
		}
	}
	return 0, false
}
