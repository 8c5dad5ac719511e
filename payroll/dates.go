package payroll

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date (UTC)
// =============================================================================

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// Comparison
func (d Date) Before(o Date) bool        { return d.normalize().Before(o.normalize()) }
func (d Date) After(o Date) bool         { return d.normalize().After(o.normalize()) }
func (d Date) Equal(o Date) bool         { return d.normalize().Equal(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return d.Before(o) || d.Equal(o) }
func (d Date) AfterOrEqual(o Date) bool  { return d.After(o) || d.Equal(o) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func Earlier(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func Later(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

func StartOfMonth(year int, month time.Month) Date {
	return NewDate(year, month, 1)
}

func EndOfMonth(year int, month time.Month) Date {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return Date{Time: t}
}

// =============================================================================
// DATE ARITHMETIC - The calendar math behind every calculation
// =============================================================================

// DaysBetween returns the absolute inclusive day count between two dates.
// DaysBetween(d, d) == 1, DaysBetween(Mon, Tue) == 2, order-independent.
func DaysBetween(d1, d2 Date) int {
	diff := int(d2.normalize().Sub(d1.normalize()).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff + 1
}

// MonthsLeftInYear returns the number of whole months remaining in the year
// after the given month.
func MonthsLeftInYear(month time.Month) int {
	if left := 12 - int(month); left > 0 {
		return left
	}
	return 0
}
