package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// DAY COUNTING TESTS
// =============================================================================

func TestDaysBetween_SameDay_CountsOne(t *testing.T) {
	// GIVEN: The same date twice
	// WHEN: Counting days between them
	// THEN: The inclusive count is 1

	day := payroll.NewDate(2026, 6, 15)
	assert.Equal(t, 1, payroll.DaysBetween(day, day))
}

func TestDaysBetween_FullMonth_CountsEveryDay(t *testing.T) {
	// GIVEN: The first and last day of June
	// WHEN: Counting days between them
	// THEN: All 30 days are counted, in either argument order

	first := payroll.NewDate(2026, 6, 1)
	last := payroll.NewDate(2026, 6, 30)

	assert.Equal(t, 30, payroll.DaysBetween(first, last))
	assert.Equal(t, 30, payroll.DaysBetween(last, first))
}

func TestDaysBetween_AcrossYears(t *testing.T) {
	start := payroll.NewDate(2025, 12, 30)
	end := payroll.NewDate(2026, 6, 30)

	// Dec 30-31 plus Jan through Jun of a non-leap year
	assert.Equal(t, 183, payroll.DaysBetween(start, end))
}

// =============================================================================
// MONTH ARITHMETIC TESTS
// =============================================================================

func TestMonthsLeftInYear(t *testing.T) {
	assert.Equal(t, 11, payroll.MonthsLeftInYear(time.January))
	assert.Equal(t, 6, payroll.MonthsLeftInYear(time.June))
	assert.Equal(t, 0, payroll.MonthsLeftInYear(time.December))
}

func TestEndOfMonth_HandlesFebruary(t *testing.T) {
	assert.Equal(t, payroll.NewDate(2026, 2, 28), payroll.EndOfMonth(2026, time.February))
	assert.Equal(t, payroll.NewDate(2028, 2, 29), payroll.EndOfMonth(2028, time.February))
	assert.Equal(t, payroll.NewDate(2026, 12, 31), payroll.EndOfMonth(2026, time.December))
}

func TestDate_Ordering(t *testing.T) {
	earlier := payroll.NewDate(2026, 3, 1)
	later := payroll.NewDate(2026, 3, 2)

	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.Equal(t, earlier, payroll.Earlier(earlier, later))
	assert.Equal(t, later, payroll.Later(earlier, later))
}
