package payroll

import "time"

// =============================================================================
// PERIOD - A payroll month or an employment span
// =============================================================================

// Period is an inclusive date range. A zero End marks an open-ended span
// (an employment that has not terminated). Payment periods are always closed.
type Period struct {
	Start Date `yaml:"start"`
	End   Date `yaml:"end,omitempty"`
}

// NewPeriod validates that the range is well-ordered. A zero end is an open
// span and always valid.
func NewPeriod(start, end Date) (Period, error) {
	if !end.IsZero() && start.After(end) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: start, End: end}, nil
}

// MonthPeriod returns the closed calendar-month period for year/month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Open reports whether the period has no end date.
func (p Period) Open() bool { return p.End.IsZero() }

// Contains is an inclusive bounds check. An open period only bounds below.
func (p Period) Contains(d Date) bool {
	if d.Before(p.Start) {
		return false
	}
	return p.Open() || d.BeforeOrEqual(p.End)
}

// Days returns the inclusive day count of a closed period.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End)
}

func (p Period) String() string {
	if p.Open() {
		return "[" + p.Start.String() + ", )"
	}
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// DateWithinPeriod reports whether the date falls inside the period,
// boundaries included.
func DateWithinPeriod(d Date, p Period) bool {
	return p.Contains(d)
}

// WeeksWorked counts the Mondays inside the inclusive intersection of the
// employment span and the payment period. Social security and maternity fund
// contributions are levied per Monday worked, so this count is the number of
// contribution weeks for the payment.
func WeeksWorked(employment, payment Period) int {
	start := Later(employment.Start, payment.Start)
	end := payment.End
	if !employment.Open() {
		end = Earlier(employment.End, payment.End)
	}
	if start.After(end) {
		return 0
	}

	// Advance to the first Monday at or after start, then step by week.
	offset := (int(time.Monday) - int(start.Weekday()) + 7) % 7
	first := start.AddDays(offset)
	if first.After(end) {
		return 0
	}
	return (DaysBetween(first, end)-1)/7 + 1
}
