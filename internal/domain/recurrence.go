package domain

import (
	"fmt"
	"time"
)

// RecurrenceFrequency identifies how a recurring task repeats.
type RecurrenceFrequency string

// Possible recurrence frequency values
const (
	FrequencyDaily   RecurrenceFrequency = "daily"
	FrequencyWeekly  RecurrenceFrequency = "weekly"
	FrequencyMonthly RecurrenceFrequency = "monthly"
	FrequencyCustom  RecurrenceFrequency = "custom"
)

// customSearchHorizonDays bounds the forward day-by-day search for custom
// recurrence. A weekday set that matches nothing inside two weeks cannot
// match at all, so the bound is a safety valve against unbounded search.
const customSearchHorizonDays = 14

// RecurrencePattern is the declarative rule describing how occurrences of a
// recurring task repeat: a frequency, a step interval, an optional weekday
// set (custom frequency only) and an optional end date after which the
// pattern stops producing occurrences.
type RecurrencePattern struct {
	Frequency  RecurrenceFrequency `json:"frequency"`
	Interval   int                 `json:"interval"`
	DaysOfWeek []time.Weekday      `json:"days_of_week,omitempty"`
	EndDate    *time.Time          `json:"end_date,omitempty"`
}

// Validate checks that the pattern is well formed.
// Returns ErrInvalidRecurrence (wrapped with detail) if not.
func (p RecurrencePattern) Validate() error {
	switch p.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyCustom:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrence, p.Frequency)
	}
	if p.Interval < 1 {
		return fmt.Errorf("%w: interval must be >= 1, got %d", ErrInvalidRecurrence, p.Interval)
	}
	if p.Frequency == FrequencyCustom {
		if len(p.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: custom frequency requires a weekday set", ErrInvalidRecurrence)
		}
		for _, d := range p.DaysOfWeek {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("%w: weekday %d out of range", ErrInvalidRecurrence, d)
			}
		}
	}
	return nil
}

// NextOccurrence computes the calendar date of the occurrence following
// lastDue. It is pure: no clock, no store.
//
// Returns ErrInvalidRecurrence for a malformed pattern and
// ErrRecurrenceExhausted when the pattern cannot advance (end date passed,
// or no weekday match inside the custom search horizon). The returned date
// carries lastDue's normalization (midnight, same location).
func (p RecurrencePattern) NextOccurrence(lastDue time.Time) (time.Time, error) {
	if err := p.Validate(); err != nil {
		return time.Time{}, err
	}

	var next time.Time
	switch p.Frequency {
	case FrequencyDaily:
		next = lastDue.AddDate(0, 0, p.Interval)
	case FrequencyWeekly:
		next = lastDue.AddDate(0, 0, 7*p.Interval)
	case FrequencyMonthly:
		next = addMonthsClamped(lastDue, p.Interval)
	case FrequencyCustom:
		found := false
		for days := 1; days <= customSearchHorizonDays; days++ {
			candidate := lastDue.AddDate(0, 0, days)
			if p.matchesWeekday(candidate.Weekday()) {
				next = candidate
				found = true
				break
			}
		}
		if !found {
			return time.Time{}, fmt.Errorf(
				"%w: no matching weekday within %d days", ErrRecurrenceExhausted, customSearchHorizonDays)
		}
	}

	if p.EndDate != nil && next.After(*p.EndDate) {
		return time.Time{}, fmt.Errorf("%w: next date %s is after end date %s",
			ErrRecurrenceExhausted,
			next.Format("2006-01-02"),
			p.EndDate.Format("2006-01-02"))
	}
	return next, nil
}

func (p RecurrencePattern) matchesWeekday(d time.Weekday) bool {
	for _, w := range p.DaysOfWeek {
		if w == d {
			return true
		}
	}
	return false
}

// addMonthsClamped advances t by the given number of calendar months,
// preserving the day of month when the target month has it and otherwise
// clamping to the last valid day of the target month. time.AddDate would
// normalize Jan 31 + 1 month into Mar 2/3; the clamp rule is deliberate.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	// First of the target month, then clamp the day.
	first := time.Date(year, month+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
