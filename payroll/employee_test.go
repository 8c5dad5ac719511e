package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func fullTimeEmployee(start payroll.Date) *payroll.Employee {
	return &payroll.Employee{
		Key:                    "jdoe",
		Identifier:             "0000001A",
		FirstName:              "Jane",
		Surname:                "Doe",
		StartDate:              start,
		HoursPerWeek:           40,
		TaxComputation:         payroll.TaxSingle,
		SocialSecurityCategory: payroll.CategoryB,
		GrossAnnualSalary:      payroll.NewDecimal(decimal.NewFromInt(24000)),
	}
}

// =============================================================================
// WAGE DERIVATION TESTS
// =============================================================================

func TestEmployee_MonthlyWage_TwelfthOfSalary(t *testing.T) {
	e := fullTimeEmployee(payroll.NewDate(2020, 1, 1))

	wage := e.MonthlyWage("EUR")

	assert.Equal(t, "2000.00 EUR", wage.String())
}

func TestEmployee_WeeklyWage_RoundsToCent(t *testing.T) {
	// 24000 / 52 = 461.5384... which must land on a cent boundary.
	e := fullTimeEmployee(payroll.NewDate(2020, 1, 1))

	wage := e.WeeklyWage("EUR")

	assert.Equal(t, "461.54 EUR", wage.String())
}

// =============================================================================
// FRACTION WORKED TESTS
// =============================================================================

func TestEmployee_FractionWorked_FullMonth(t *testing.T) {
	e := fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	june := payroll.MonthPeriod(2026, time.June)

	assert.True(t, e.FractionWorked(june).Equal(decimal.NewFromInt(1)))
}

func TestEmployee_FractionWorked_MidMonthStart(t *testing.T) {
	// GIVEN: Employment starting June 16th of a thirty-day month
	// WHEN: Computing the worked fraction for June
	// THEN: Fifteen of thirty days gives exactly one half

	e := fullTimeEmployee(payroll.NewDate(2026, 6, 16))
	june := payroll.MonthPeriod(2026, time.June)

	assert.Equal(t, "0.5", e.FractionWorked(june).String())
}

func TestEmployee_FractionWorked_OutsideEmployment(t *testing.T) {
	e := fullTimeEmployee(payroll.NewDate(2026, 8, 1))
	june := payroll.MonthPeriod(2026, time.June)

	assert.True(t, e.FractionWorked(june).IsZero())

	end := payroll.NewDate(2026, 4, 30)
	e = fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	e.EndDate = &end

	assert.True(t, e.FractionWorked(june).IsZero())
}

func TestEmployee_FractionWorked_EndsMidMonth(t *testing.T) {
	end := payroll.NewDate(2026, 6, 15)
	e := fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	e.EndDate = &end
	june := payroll.MonthPeriod(2026, time.June)

	assert.Equal(t, "0.5", e.FractionWorked(june).String())
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestEmployee_Validate_AcceptsSoundRecord(t *testing.T) {
	e := fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	require.NoError(t, e.Validate())
}

func TestEmployee_Validate_RejectsBadRecords(t *testing.T) {
	missingStart := fullTimeEmployee(payroll.Date{})
	assert.Error(t, missingStart.Validate())

	end := payroll.NewDate(2019, 1, 1)
	reversed := fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	reversed.EndDate = &end
	assert.Error(t, reversed.Validate())

	badTax := fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	badTax.TaxComputation = "weekly"
	assert.Error(t, badTax.Validate())

	badCategory := fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	badCategory.SocialSecurityCategory = "Z"
	assert.Error(t, badCategory.Validate())

	negativeSalary := fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	negativeSalary.GrossAnnualSalary = payroll.NewDecimal(decimal.NewFromInt(-1))
	assert.Error(t, negativeSalary.Validate())
}

func TestEmployee_PaysSocialSecurity_PartTimeExempt(t *testing.T) {
	full := fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	assert.True(t, full.PaysSocialSecurity())

	part := fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	part.TaxComputation = payroll.TaxPartTime
	assert.False(t, part.PaysSocialSecurity())
}
