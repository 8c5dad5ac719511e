package payroll

import "fmt"

// =============================================================================
// PAYMENT - One employee's pay for one period
// =============================================================================

// Payment is the container the calculator fills: the resolved period,
// pro-rated time worked and wage snapshots are fixed up front; Items and
// Ledger are materialized by resolving every line item.
type Payment struct {
	Employee    *Employee       `yaml:"employee"`
	Period      Period          `yaml:"period"`
	Currency    string          `yaml:"currency"`
	TimeWorked  Decimal `yaml:"time_worked"`
	WeeksWorked int     `yaml:"weeks_worked"`
	MonthlyWage Money   `yaml:"monthly_wage"`
	WeeklyWage  Money   `yaml:"weekly_wage"`

	// Computed line items, filled by the calculator.
	Items Items `yaml:"items"`

	// Per-item stored record: current period, year to date, projected
	// yearly where the item projects.
	Ledger map[ItemName]LineItem `yaml:"line_items,omitempty"`

	// Narrations from calculations that describe themselves, keyed by item.
	Notes map[ItemName]string `yaml:"notes,omitempty"`
}

// NewPayment derives the wage snapshots and period fractions for an employee
// and payment period.
func NewPayment(employee *Employee, period Period, currency string) (*Payment, error) {
	if err := employee.Validate(); err != nil {
		return nil, err
	}
	if _, err := NewPeriod(period.Start, period.End); err != nil {
		return nil, err
	}
	return &Payment{
		Employee:    employee,
		Period:      period,
		Currency:    currency,
		TimeWorked:  NewDecimal(employee.FractionWorked(period)),
		WeeksWorked: WeeksWorked(employee.EmploymentPeriod(), period),
		MonthlyWage: employee.MonthlyWage(currency),
		WeeklyWage:  employee.WeeklyWage(currency),
	}, nil
}

// FirstForEmployee reports whether this is the employee's very first payment:
// the one whose period contains the employment start date. Prior-employer
// figures contribute only on that payment.
func (p *Payment) FirstForEmployee() bool {
	return DateWithinPeriod(p.Employee.StartDate, p.Period)
}

// Zero returns the zero Money in the payment's currency.
func (p *Payment) Zero() Money {
	return Zero(p.Currency)
}

// Validate re-checks a payment loaded from storage, including the stored
// line-item aggregates.
func (p *Payment) Validate() error {
	if p.Employee == nil {
		return fmt.Errorf("payment has no employee")
	}
	if err := p.Employee.Validate(); err != nil {
		return err
	}
	if _, err := NewPeriod(p.Period.Start, p.Period.End); err != nil {
		return err
	}
	for name, record := range p.Ledger {
		if err := record.Validate(); err != nil {
			return &RecordParseError{Source: string(name), Err: err}
		}
	}
	return nil
}
