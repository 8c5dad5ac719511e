/*
employee.go - Employee facts consumed by the calculator

PURPOSE:
  An Employee record carries the employment dates, contracted hours, salary,
  tax-computation mode and social security category that nearly every line
  item calculation reads. Records are validated once on load and treated as
  read-only afterwards.

TAX COMPUTATION MODES:
  single / married / parent: progressive withholding against the matching
  income tax table, smoothed over the remaining periods of the year.
  parttime: a flat configured rate on taxable gross; no employee-side social
  security.
*/
package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxComputation selects how income tax is withheld for an employee.
type TaxComputation string

const (
	TaxSingle   TaxComputation = "single"
	TaxMarried  TaxComputation = "married"
	TaxParent   TaxComputation = "parent"
	TaxPartTime TaxComputation = "parttime"
)

func (tc TaxComputation) Valid() bool {
	switch tc {
	case TaxSingle, TaxMarried, TaxParent, TaxPartTime:
		return true
	}
	return false
}

// SocialSecurityCategory is the contribution category assigned by the
// social security authority. Codes follow the published class schedule.
type SocialSecurityCategory string

const (
	CategoryA   SocialSecurityCategory = "A"
	CategoryB   SocialSecurityCategory = "B"
	CategoryCD1 SocialSecurityCategory = "C/D #1"
	CategoryCD2 SocialSecurityCategory = "C/D #2"
	CategoryE   SocialSecurityCategory = "E"
	CategoryF   SocialSecurityCategory = "F"
)

func (c SocialSecurityCategory) Valid() bool {
	switch c {
	case CategoryA, CategoryB, CategoryCD1, CategoryCD2, CategoryE, CategoryF:
		return true
	}
	return false
}

// PriorTaxInformation records what a previous employer already paid the
// employee and withheld this tax year. Contributed on the first payment.
type PriorTaxInformation struct {
	GrossAnnualEmoluments Decimal `yaml:"gross_annual_emoluments"`
	IncomeTax             Decimal `yaml:"income_tax"`
}

func (p PriorTaxInformation) validate() error {
	if p.GrossAnnualEmoluments.IsNegative() {
		return fmt.Errorf("gross annual emoluments '%s' must be >= 0", p.GrossAnnualEmoluments)
	}
	if p.IncomeTax.IsNegative() {
		return fmt.Errorf("prior income tax '%s' must be >= 0", p.IncomeTax)
	}
	return nil
}

// =============================================================================
// EMPLOYEE
// =============================================================================

type Employee struct {
	Key                    string                 `yaml:"-"`
	Identifier             string                 `yaml:"identifier"`
	FirstName              string                 `yaml:"first_name"`
	Surname                string                 `yaml:"surname"`
	Email                  string                 `yaml:"email"`
	Role                   string                 `yaml:"role"`
	StartDate              Date                   `yaml:"start_date"`
	EndDate                *Date                  `yaml:"end_date,omitempty"`
	HoursPerWeek           int                    `yaml:"hours_per_week"`
	TaxComputation         TaxComputation         `yaml:"tax_computation"`
	SocialSecurityCategory SocialSecurityCategory `yaml:"social_security_category"`
	GrossAnnualSalary      Decimal                `yaml:"gross_annual_salary"`
	PriorTax               PriorTaxInformation    `yaml:"prior_tax_information"`
}

// Validate checks the record once after loading. A failing record is skipped
// by the batch, never silently corrected.
func (e *Employee) Validate() error {
	if e.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("end date must come after start date")
	}
	if e.HoursPerWeek < 0 {
		return fmt.Errorf("hours per week must be >= 0")
	}
	if !e.TaxComputation.Valid() {
		return fmt.Errorf("invalid tax computation %q", e.TaxComputation)
	}
	if !e.SocialSecurityCategory.Valid() {
		return fmt.Errorf("invalid social security category %q", e.SocialSecurityCategory)
	}
	if e.GrossAnnualSalary.IsNegative() {
		return fmt.Errorf("gross annual salary '%s' must be >= 0", e.GrossAnnualSalary)
	}
	return e.PriorTax.validate()
}

// PaysSocialSecurity reports whether the employee-side social security
// contribution applies. Part-time-taxed employees are exempt on their side;
// the employer-side contributions apply regardless.
func (e *Employee) PaysSocialSecurity() bool {
	return e.TaxComputation != TaxPartTime
}

// MonthlyWage is one twelfth of the annual salary, rounded to the cent.
func (e *Employee) MonthlyWage(currency string) Money {
	return NewMoney(e.GrossAnnualSalary.Div(decimal.NewFromInt(12)), currency).Round(2)
}

// WeeklyWage is one fifty-second of the annual salary, rounded to the cent.
func (e *Employee) WeeklyWage(currency string) Money {
	return NewMoney(e.GrossAnnualSalary.Div(decimal.NewFromInt(52)), currency).Round(2)
}

// EmploymentPeriod is the employee's span of employment; open-ended while
// still employed.
func (e *Employee) EmploymentPeriod() Period {
	p := Period{Start: e.StartDate}
	if e.EndDate != nil {
		p.End = *e.EndDate
	}
	return p
}

// FractionWorked returns the fraction of the payment period the employee was
// employed for, as a two-decimal fraction of the period's inclusive day
// count. Zero when the employment span misses the period entirely; exactly
// 1.00 for full-period employment.
func (e *Employee) FractionWorked(period Period) decimal.Decimal {
	if e.StartDate.After(period.End) {
		return decimal.Zero
	}
	if e.EndDate != nil && e.EndDate.Before(period.Start) {
		return decimal.Zero
	}

	overlapStart := Later(e.StartDate, period.Start)
	overlapEnd := period.End
	if e.EndDate != nil {
		overlapEnd = Earlier(*e.EndDate, period.End)
	}

	worked := decimal.NewFromInt(int64(DaysBetween(overlapStart, overlapEnd)))
	total := decimal.NewFromInt(int64(period.Days()))
	return worked.Div(total).RoundBank(2)
}
