package domain

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrenceDaily(t *testing.T) {
	for _, interval := range []int{1, 2, 5, 30} {
		p := RecurrencePattern{Frequency: FrequencyDaily, Interval: interval}
		next, err := p.NextOccurrence(date(2024, time.March, 10))
		if err != nil {
			t.Fatalf("interval %d: unexpected error: %v", interval, err)
		}
		want := date(2024, time.March, 10).AddDate(0, 0, interval)
		if !next.Equal(want) {
			t.Errorf("interval %d: expected %v, got %v", interval, want, next)
		}
	}
}

func TestNextOccurrenceWeekly(t *testing.T) {
	for _, interval := range []int{1, 2, 4} {
		p := RecurrencePattern{Frequency: FrequencyWeekly, Interval: interval}
		next, err := p.NextOccurrence(date(2024, time.March, 10))
		if err != nil {
			t.Fatalf("interval %d: unexpected error: %v", interval, err)
		}
		want := date(2024, time.March, 10).AddDate(0, 0, 7*interval)
		if !next.Equal(want) {
			t.Errorf("interval %d: expected %v, got %v", interval, want, next)
		}
	}
}

func TestNextOccurrenceMonthlyClampsToEndOfMonth(t *testing.T) {
	tests := []struct {
		name     string
		last     time.Time
		interval int
		want     time.Time
	}{
		{"jan31 to leap feb", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jan31 to non-leap feb", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"jan31 skip feb", date(2024, time.January, 31), 2, date(2024, time.March, 31)},
		{"mar31 to apr30", date(2024, time.March, 31), 1, date(2024, time.April, 30)},
		{"day preserved when valid", date(2024, time.January, 15), 1, date(2024, time.February, 15)},
		{"year rollover", date(2024, time.December, 31), 1, date(2025, time.January, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := RecurrencePattern{Frequency: FrequencyMonthly, Interval: tt.interval}
			next, err := p.NextOccurrence(tt.last)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !next.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, next)
			}
		})
	}
}

func TestNextOccurrenceCustomFindsNextWeekday(t *testing.T) {
	// 2024-03-07 is a Thursday; Mon/Wed set should land on Monday 03-11.
	p := RecurrencePattern{
		Frequency:  FrequencyCustom,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday},
	}
	next, err := p.NextOccurrence(date(2024, time.March, 7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := date(2024, time.March, 11)
	if !next.Equal(want) {
		t.Errorf("expected %v (%v), got %v (%v)", want, want.Weekday(), next, next.Weekday())
	}

	// Starting on a matching weekday still advances at least one day.
	next, err = p.NextOccurrence(date(2024, time.March, 11)) // a Monday
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := date(2024, time.March, 13); !next.Equal(want) {
		t.Errorf("expected following Wednesday %v, got %v", want, next)
	}
}

func TestNextOccurrenceRespectsEndDate(t *testing.T) {
	end := date(2024, time.March, 1)
	p := RecurrencePattern{Frequency: FrequencyDaily, Interval: 1, EndDate: &end}

	// Lands exactly on the end date: still produced.
	next, err := p.NextOccurrence(date(2024, time.February, 29))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Equal(end) {
		t.Errorf("expected %v, got %v", end, next)
	}

	// One step past the end date: exhausted.
	_, err = p.NextOccurrence(date(2024, time.March, 1))
	if !errors.Is(err, ErrRecurrenceExhausted) {
		t.Errorf("expected ErrRecurrenceExhausted, got %v", err)
	}
}

func TestNextOccurrenceMalformedPattern(t *testing.T) {
	cases := []RecurrencePattern{
		{Frequency: "yearly", Interval: 1},
		{Frequency: FrequencyDaily, Interval: 0},
		{Frequency: FrequencyWeekly, Interval: -2},
		{Frequency: FrequencyCustom, Interval: 1}, // empty weekday set
		{Frequency: FrequencyCustom, Interval: 1, DaysOfWeek: []time.Weekday{8}},
	}
	for _, p := range cases {
		if _, err := p.NextOccurrence(date(2024, time.March, 10)); !errors.Is(err, ErrInvalidRecurrence) {
			t.Errorf("pattern %+v: expected ErrInvalidRecurrence, got %v", p, err)
		}
	}
}

func TestNextOccurrenceCustomHorizonBounded(t *testing.T) {
	// All seven weekdays match within any 7-day span, so the horizon only
	// triggers via the end-date interplay; verify the search never walks
	// past 14 days by checking the worst case lands inside the horizon.
	p := RecurrencePattern{
		Frequency:  FrequencyCustom,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Sunday},
	}
	start := date(2024, time.March, 10) // a Sunday
	next, err := p.NextOccurrence(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := int(next.Sub(start).Hours() / 24); got > customSearchHorizonDays {
		t.Errorf("search walked %d days, beyond the %d-day horizon", got, customSearchHorizonDays)
	}
}
