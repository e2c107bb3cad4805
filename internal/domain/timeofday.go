package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// TimeOfDay is a timezone-naive wall-clock time with minute precision.
// It is interpreted in the task owner's configured timezone; composing it
// with a calendar date into an absolute instant is the scheduler's job.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" string into a TimeOfDay.
// Returns ErrInvalidTimeOfDay if the value is malformed or out of range.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if len(s) != 5 || s[2] != ':' {
		return t, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	// Every byte outside the colon must be a digit. A scanf style parse
	// would stop at trailing garbage and accept "12:3a" as 12:03, and Atoi
	// alone would admit a leading sign.
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return t, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
	}
	hour, _ := strconv.Atoi(s[:2])
	minute, _ := strconv.Atoi(s[3:])
	if hour > 23 || minute > 59 {
		return t, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	t.Hour, t.Minute = hour, minute
	return t, nil
}

// String returns the canonical "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MarshalText implements encoding.TextMarshaler so TimeOfDay serializes
// as "HH:MM" in JSON payloads.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer, storing the time as "HH:MM" text.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner for TEXT columns holding "HH:MM" values.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	default:
		return fmt.Errorf("%w: cannot scan %T into TimeOfDay", ErrInvalidTimeOfDay, src)
	}
}
