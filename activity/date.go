package activity

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granular, timezone-naive calendar date
// =============================================================================

// Date is a calendar date with no time component. Completion logs and rollups
// are keyed by the user's local calendar day, so everything is normalized to
// midnight UTC and compared at day granularity.
type Date struct {
	t time.Time
}

// NewDate constructs a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day. Grid and service code take the
// current day as a parameter instead of calling this directly, so tests can
// pin it.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses the wire format "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, &RangeError{Field: "date", Value: s}
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// ISOWeekday maps the weekday to the Monday-first index used everywhere in
// this package: 0=Monday .. 6=Sunday.
func (d Date) ISOWeekday() int {
	wd := int(d.t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}

// Time returns the underlying midnight-UTC instant, for store serialization.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// MarshalText lets Date serve as a JSON map key ("2006-01-02").
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// RANGE HELPERS
// =============================================================================

func StartOfYear(year int) Date { return NewDate(year, time.January, 1) }
func EndOfYear(year int) Date   { return NewDate(year, time.December, 31) }

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) Date {
	return Date{t: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

// DaysIn returns the number of days in a month.
func DaysIn(year int, month time.Month) int {
	return EndOfMonth(year, month).Day()
}

func validYear(year int) error {
	if year < 1 || year > 9999 {
		return &RangeError{Field: "year", Value: fmt.Sprintf("%d", year)}
	}
	return nil
}
