/*
calculations.go - The closed set of line-item calculations

PURPOSE:
  One Calculation per statutory line item, encoding the withholding rules:
  pro-rated basic pay, the six-month statutory bonus window, progressive
  income tax smoothed over the remaining periods of the year, per-Monday
  social security and maternity fund contributions, and the derived totals.

CAPABILITIES:
  Every variant Computes. Items needed by the progressive withholding rule
  additionally Project their full-year value (basic pay, statutory bonus,
  income tax). A handful Describe themselves for the payslip.

SEE ALSO:
  - calculator.go: Resolution discipline and caching
  - tables: Bracket, category and bonus table semantics
*/
package calculation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tables"
)

var forty = decimal.NewFromInt(40)

// Zero is a placeholder calculation for line items contributed by no rule.
type Zero struct{}

func (Zero) Compute(_, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	return payment.Zero(), nil
}

// =============================================================================
// PRIOR EMPLOYER FIGURES
// =============================================================================

// PriorGrossEmoluments contributes the employee's pre-employment gross
// emoluments, only on the first payment that falls within their start
// period.
type PriorGrossEmoluments struct{}

func (PriorGrossEmoluments) Compute(_, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	if payment.FirstForEmployee() {
		return payroll.NewMoney(payment.Employee.PriorTax.GrossAnnualEmoluments.Decimal, payment.Currency), nil
	}
	return payment.Zero(), nil
}

// PriorIncomeTaxDeduction contributes the income tax a previous employer
// already withheld this year, on the first payment only. The projected
// annual liability is reduced by it.
type PriorIncomeTaxDeduction struct{}

func (PriorIncomeTaxDeduction) Compute(_, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	if payment.FirstForEmployee() {
		return payroll.NewMoney(payment.Employee.PriorTax.IncomeTax.Decimal, payment.Currency), nil
	}
	return payment.Zero(), nil
}

// =============================================================================
// TRANSACTION-BACKED ITEMS
// =============================================================================

// ManualAdjustments sums the one-time taxed payments dated within the
// current period.
type ManualAdjustments struct {
	Source payroll.TransactionSource
}

func (m ManualAdjustments) Compute(_, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	return sumTransactionValues(m.Source, payment)
}

// Reimbursements sums the untaxed expense refunds dated within the current
// period. Excluded from taxable gross.
type Reimbursements struct {
	Source payroll.TransactionSource
}

func (r Reimbursements) Compute(_, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	return sumTransactionValues(r.Source, payment)
}

func sumTransactionValues(source payroll.TransactionSource, payment *payroll.Payment) (payroll.Money, error) {
	transactions, err := source.Stream(payment.Employee.Key, payment.Period.Start.Year(), func(t payroll.Transaction) bool {
		return payroll.DateWithinPeriod(t.Dated, payment.Period)
	})
	if err != nil {
		return payroll.Money{}, err
	}
	total := payment.Zero()
	for _, t := range transactions {
		total = total.Add(t.Value)
	}
	return total, nil
}

// =============================================================================
// BASIC PAY
// =============================================================================

// BasicPayFullTime is the monthly wage pro-rated by the fraction of the
// period worked. Zero for part-time-taxed employees.
type BasicPayFullTime struct{}

func (BasicPayFullTime) Compute(_, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	if payment.Employee.TaxComputation == payroll.TaxPartTime {
		return payment.Zero(), nil
	}
	return payment.MonthlyWage.Mul(payment.TimeWorked.Decimal).Round(2), nil
}

// Project estimates the full-year basic pay: this period plus year-to-date
// plus a full wage for every month left in the year. For part-time-taxed
// employees the projection degrades to year-to-date only.
func (BasicPayFullTime) Project(valueOf, _ Resolver, payment *payroll.Payment, historical payroll.Items) (payroll.Money, error) {
	if payment.Employee.TaxComputation == payroll.TaxPartTime {
		return historical.BasicPayFullTime, nil
	}
	current, err := valueOf(payroll.ItemBasicPayFullTime)
	if err != nil {
		return payroll.Money{}, err
	}
	remaining := payment.MonthlyWage.MulInt(payroll.MonthsLeftInYear(payment.Period.End.Month()))
	return current.Add(historical.BasicPayFullTime).Add(remaining), nil
}

func (BasicPayFullTime) Describe(_ payroll.Money, payment *payroll.Payment, _ payroll.Items) string {
	return fmt.Sprintf("%s months", payment.TimeWorked.StringFixed(2))
}

// BasicPayPartTime sums hours x hourly wage over the period's work logs.
// Not projectable: future hours are unknown.
type BasicPayPartTime struct {
	Source payroll.TransactionSource
}

func (b BasicPayPartTime) Compute(_, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	logs, err := b.periodWorkLogs(payment)
	if err != nil {
		return payroll.Money{}, err
	}
	total := payment.Zero()
	for _, t := range logs {
		total = total.Add(t.HourlyWage.Mul(t.Hours.Decimal))
	}
	return total, nil
}

func (b BasicPayPartTime) Describe(_ payroll.Money, payment *payroll.Payment, _ payroll.Items) string {
	logs, err := b.periodWorkLogs(payment)
	if err != nil {
		return ""
	}
	hours := decimal.Zero
	for _, t := range logs {
		hours = hours.Add(t.Hours.Decimal)
	}
	return fmt.Sprintf("%s hours", hours)
}

func (b BasicPayPartTime) periodWorkLogs(payment *payroll.Payment) ([]payroll.Transaction, error) {
	return b.Source.Stream(payment.Employee.Key, payment.Period.Start.Year(), func(t payroll.Transaction) bool {
		return payroll.DateWithinPeriod(t.Dated, payment.Period)
	})
}

// =============================================================================
// STATUTORY BONUS
// =============================================================================

// StatutoryBonus pays the table amount for the target month, pro-rated
// linearly over a six-month eligibility window for recent hires and scaled
// by contracted hours over a 40-hour week.
type StatutoryBonus struct {
	Table *tables.MonetaryBonusTable
}

func (s StatutoryBonus) Compute(_, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	bonus := s.bonusForMonth(payment.Period.Start.Year(), payment.Period.Start.Month(), payment)
	bonus = bonus.Mul(s.hoursScale(payment))
	return payroll.NewMoney(bonus, payment.Currency).Round(2), nil
}

// Project sums the bonus rule across every remaining month of the year,
// same scaling, plus the bonus already paid this year.
func (s StatutoryBonus) Project(_, _ Resolver, payment *payroll.Payment, historical payroll.Items) (payroll.Money, error) {
	bonus := decimal.Zero
	for month := payment.Period.Start.Month(); month <= time.December; month++ {
		bonus = bonus.Add(s.bonusForMonth(payment.Period.Start.Year(), month, payment))
	}
	bonus = bonus.Mul(s.hoursScale(payment))
	return payroll.NewMoney(bonus, payment.Currency).Round(2).Add(historical.StatutoryBonus), nil
}

func (s StatutoryBonus) hoursScale(payment *payroll.Payment) decimal.Decimal {
	return decimal.NewFromInt(int64(payment.Employee.HoursPerWeek)).Div(forty)
}

// bonusForMonth scans the table in file order for the month's row. An
// employee whose start precedes the month-end by more than the six-month
// window earns the full bonus; later starters earn elapsed/window of it.
func (s StatutoryBonus) bonusForMonth(year int, month time.Month, payment *payroll.Payment) decimal.Decimal {
	for _, entry := range s.Table.Entries() {
		if entry.Month != month {
			continue
		}
		monthEnd := payroll.EndOfMonth(year, month)
		windowStart := monthEnd.AddMonths(-6)
		if payment.Employee.StartDate.Before(windowStart) {
			return entry.Bonus
		}
		elapsed := decimal.NewFromInt(int64(payroll.DaysBetween(monthEnd, payment.Employee.StartDate)))
		window := decimal.NewFromInt(int64(payroll.DaysBetween(monthEnd, windowStart)))
		return entry.Bonus.Mul(elapsed.Div(window))
	}
	return decimal.Zero
}

// =============================================================================
// TAXABLE GROSS
// =============================================================================

// TotalTaxableGrossEmoluments is the taxed part of the payment: both basic
// pays, manual adjustments and the statutory bonus. Reimbursements stay out.
type TotalTaxableGrossEmoluments struct{}

func (TotalTaxableGrossEmoluments) Compute(valueOf, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	total := payment.Zero()
	for _, name := range []payroll.ItemName{
		payroll.ItemBasicPayFullTime,
		payroll.ItemBasicPayPartTime,
		payroll.ItemManualAdjustments,
		payroll.ItemStatutoryBonus,
	} {
		value, err := valueOf(name)
		if err != nil {
			return payroll.Money{}, err
		}
		total = total.Add(value)
	}
	return total.Round(2), nil
}

// =============================================================================
// INCOME TAX
// =============================================================================

// IncomeTaxFullTime withholds the remaining projected annual liability
// smoothed proportionally over the remaining periods of the year, rounded
// to whole currency units.
type IncomeTaxFullTime struct {
	Table *tables.IncomeTaxTable
}

func (t IncomeTaxFullTime) Compute(_, projectionOf Resolver, payment *payroll.Payment, historical payroll.Items) (payroll.Money, error) {
	if payment.Employee.TaxComputation == payroll.TaxPartTime {
		return payment.Zero(), nil
	}

	projected, err := projectionOf(payroll.ItemIncomeTaxFullTime)
	if err != nil {
		return payroll.Money{}, err
	}
	remaining := projected.Sub(historical.IncomeTaxFullTime)

	monthsRemaining := decimal.NewFromInt(int64(payroll.MonthsLeftInYear(payment.Period.End.Month())))
	periods := payment.TimeWorked.Add(monthsRemaining)
	if periods.IsZero() {
		return payment.Zero(), nil
	}
	return remaining.Mul(payment.TimeWorked.Div(periods)).Round(0), nil
}

// Project runs the projected annual taxable income through the progressive
// table, net of prior-employer deductions, floored at the tax already
// withheld this year: withholding never decreases period over period.
func (t IncomeTaxFullTime) Project(valueOf, projectionOf Resolver, payment *payroll.Payment, historical payroll.Items) (payroll.Money, error) {
	if payment.Employee.TaxComputation == payroll.TaxPartTime {
		return historical.IncomeTaxFullTime, nil
	}

	priorGross, err := valueOf(payroll.ItemPriorGrossEmoluments)
	if err != nil {
		return payroll.Money{}, err
	}
	projectedBasicPay, err := projectionOf(payroll.ItemBasicPayFullTime)
	if err != nil {
		return payroll.Money{}, err
	}
	adjustments, err := valueOf(payroll.ItemManualAdjustments)
	if err != nil {
		return payroll.Money{}, err
	}
	projectedBonus, err := projectionOf(payroll.ItemStatutoryBonus)
	if err != nil {
		return payroll.Money{}, err
	}

	taxable := priorGross.Add(historical.PriorGrossEmoluments).
		Add(projectedBasicPay).
		Add(adjustments).Add(historical.ManualAdjustments).
		Add(projectedBonus)
	liability := t.Table.Apply(taxable)

	priorDeduction, err := valueOf(payroll.ItemPriorIncomeTaxDeduction)
	if err != nil {
		return payroll.Money{}, err
	}
	net := liability.Sub(priorDeduction).Sub(historical.PriorIncomeTaxDeduction)
	return net.Max(historical.IncomeTaxFullTime).Round(0), nil
}

// IncomeTaxPartTime applies the flat part-time rate to the taxable gross,
// rounded to whole currency units. Zero for everyone else.
type IncomeTaxPartTime struct {
	Rate decimal.Decimal
}

func (t IncomeTaxPartTime) Compute(valueOf, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	if payment.Employee.TaxComputation != payroll.TaxPartTime {
		return payment.Zero(), nil
	}
	gross, err := valueOf(payroll.ItemTotalTaxableGrossEmoluments)
	if err != nil {
		return payroll.Money{}, err
	}
	return gross.Mul(t.Rate).Round(0), nil
}

// =============================================================================
// SOCIAL SECURITY AND MATERNITY FUND
// =============================================================================

// SocialSecurityContribution levies the category's weekly contribution per
// Monday worked. The employee side is waived for part-time-taxed employees;
// the employer side applies regardless.
type SocialSecurityContribution struct {
	Table        *tables.CategoryRateTable
	EmployeeSide bool
}

func (s SocialSecurityContribution) Compute(_, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	if s.EmployeeSide && !payment.Employee.PaysSocialSecurity() {
		return payment.Zero(), nil
	}
	return weeklyContribution(s.Table, payment)
}

func (s SocialSecurityContribution) Describe(_ payroll.Money, payment *payroll.Payment, _ payroll.Items) string {
	return fmt.Sprintf("%d weeks", payment.WeeksWorked)
}

// MaternityFundContribution is the employer-funded maternity leave
// contribution, levied identically per Monday worked. Always applies.
type MaternityFundContribution struct {
	Table *tables.CategoryRateTable
}

func (m MaternityFundContribution) Compute(_, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	return weeklyContribution(m.Table, payment)
}

func (m MaternityFundContribution) Describe(_ payroll.Money, payment *payroll.Payment, _ payroll.Items) string {
	return fmt.Sprintf("%d weeks", payment.WeeksWorked)
}

func weeklyContribution(table *tables.CategoryRateTable, payment *payroll.Payment) (payroll.Money, error) {
	weekly, err := table.Apply(payment.Employee.SocialSecurityCategory, payment.WeeklyWage)
	if err != nil {
		return payroll.Money{}, err
	}
	return weekly.MulInt(payment.WeeksWorked).Round(2), nil
}

// =============================================================================
// TOTALS
// =============================================================================

// TotalDeductions is everything withheld from the employee: both income tax
// variants plus the employee-side social security contribution.
type TotalDeductions struct{}

func (TotalDeductions) Compute(valueOf, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	total := payment.Zero()
	for _, name := range []payroll.ItemName{
		payroll.ItemIncomeTaxFullTime,
		payroll.ItemIncomeTaxPartTime,
		payroll.ItemSocialSecurityContributionEmployee,
	} {
		value, err := valueOf(name)
		if err != nil {
			return payroll.Money{}, err
		}
		total = total.Add(value)
	}
	return total.Round(2), nil
}

// NetPay is what the employee receives: taxable gross plus reimbursements
// minus total deductions.
type NetPay struct{}

func (NetPay) Compute(valueOf, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	gross, err := valueOf(payroll.ItemTotalTaxableGrossEmoluments)
	if err != nil {
		return payroll.Money{}, err
	}
	reimbursements, err := valueOf(payroll.ItemReimbursements)
	if err != nil {
		return payroll.Money{}, err
	}
	deductions, err := valueOf(payroll.ItemTotalDeductions)
	if err != nil {
		return payroll.Money{}, err
	}
	return gross.Add(reimbursements).Sub(deductions).Round(2), nil
}

// TaxDue is what the employer remits to the authority: both income tax
// variants, both social security sides, and the maternity fund.
type TaxDue struct{}

func (TaxDue) Compute(valueOf, _ Resolver, payment *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	total := payment.Zero()
	for _, name := range []payroll.ItemName{
		payroll.ItemIncomeTaxFullTime,
		payroll.ItemIncomeTaxPartTime,
		payroll.ItemSocialSecurityContributionEmployee,
		payroll.ItemSocialSecurityContributionEmployer,
		payroll.ItemMaternityFundContributionEmployer,
	} {
		value, err := valueOf(name)
		if err != nil {
			return payroll.Money{}, err
		}
		total = total.Add(value)
	}
	return total, nil
}

// =============================================================================
// STANDARD REGISTRY
// =============================================================================

// Dependencies bundles the loaded rate tables, transaction sources and
// configured rates the standard registry needs.
type Dependencies struct {
	IncomeTax       *tables.IncomeTaxTable
	SocialSecurity  *tables.CategoryRateTable
	MaternityFund   *tables.CategoryRateTable
	StatutoryBonus  *tables.MonetaryBonusTable
	PartTimeTaxRate decimal.Decimal

	WorkLogs       payroll.TransactionSource
	Adjustments    payroll.TransactionSource
	Reimbursements payroll.TransactionSource
}

// Standard builds the full name-to-calculation registry covering every line
// item. Built once per run; calculators share it read-only.
func Standard(deps Dependencies) Registry {
	return Registry{
		payroll.ItemPriorGrossEmoluments:        PriorGrossEmoluments{},
		payroll.ItemPriorIncomeTaxDeduction:     PriorIncomeTaxDeduction{},
		payroll.ItemManualAdjustments:           ManualAdjustments{Source: deps.Adjustments},
		payroll.ItemBasicPayFullTime:            BasicPayFullTime{},
		payroll.ItemBasicPayPartTime:            BasicPayPartTime{Source: deps.WorkLogs},
		payroll.ItemStatutoryBonus:              StatutoryBonus{Table: deps.StatutoryBonus},
		payroll.ItemTotalTaxableGrossEmoluments: TotalTaxableGrossEmoluments{},
		payroll.ItemIncomeTaxFullTime:           IncomeTaxFullTime{Table: deps.IncomeTax},
		payroll.ItemIncomeTaxPartTime:           IncomeTaxPartTime{Rate: deps.PartTimeTaxRate},
		payroll.ItemSocialSecurityContributionEmployee: SocialSecurityContribution{
			Table:        deps.SocialSecurity,
			EmployeeSide: true,
		},
		payroll.ItemSocialSecurityContributionEmployer: SocialSecurityContribution{
			Table: deps.SocialSecurity,
		},
		payroll.ItemMaternityFundContributionEmployer: MaternityFundContribution{Table: deps.MaternityFund},
		payroll.ItemTotalDeductions:                   TotalDeductions{},
		payroll.ItemReimbursements:                    Reimbursements{Source: deps.Reimbursements},
		payroll.ItemNetPay:                            NetPay{},
		payroll.ItemTaxDue:                            TaxDue{},
	}
}
