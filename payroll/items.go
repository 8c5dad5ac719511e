/*
items.go - The closed set of payslip line items

PURPOSE:
  Items maps every named line item of a payment to its monetary value. The
  set of names is fixed: the calculator resolves each one exactly once per
  payment, and year-to-date history is accumulated by pointwise addition of
  the Items of all prior same-year payments.

KEY CONCEPTS:
  - ItemName: One of the sixteen statutory line-item names.
  - Items: An immutable value; With returns a new Items per assignment.
  - LineItem: The stored per-item record (current period, year to date,
    projected yearly) carried on persisted payments.
*/
package payroll

import "fmt"

// ItemName identifies one line item of a payment.
type ItemName string

const (
	ItemPriorGrossEmoluments               ItemName = "prior_gross_emoluments"
	ItemBasicPayFullTime                   ItemName = "basic_pay_full_time"
	ItemBasicPayPartTime                   ItemName = "basic_pay_part_time"
	ItemManualAdjustments                  ItemName = "manual_adjustments"
	ItemStatutoryBonus                     ItemName = "statutory_bonus"
	ItemTotalTaxableGrossEmoluments        ItemName = "total_taxable_gross_emoluments"
	ItemPriorIncomeTaxDeduction            ItemName = "prior_income_tax_deduction"
	ItemIncomeTaxFullTime                  ItemName = "income_tax_full_time"
	ItemIncomeTaxPartTime                  ItemName = "income_tax_part_time"
	ItemSocialSecurityContributionEmployee ItemName = "social_security_contribution_employee"
	ItemSocialSecurityContributionEmployer ItemName = "social_security_contribution_employer"
	ItemTotalDeductions                    ItemName = "total_deductions"
	ItemMaternityFundContributionEmployer  ItemName = "maternity_fund_contribution_employer"
	ItemReimbursements                     ItemName = "reimbursements"
	ItemNetPay                             ItemName = "net_pay"
	ItemTaxDue                             ItemName = "tax_due"
)

// ItemNames returns the closed set of line-item names in payslip order.
func ItemNames() []ItemName {
	return []ItemName{
		ItemPriorGrossEmoluments,
		ItemBasicPayFullTime,
		ItemBasicPayPartTime,
		ItemManualAdjustments,
		ItemStatutoryBonus,
		ItemTotalTaxableGrossEmoluments,
		ItemPriorIncomeTaxDeduction,
		ItemIncomeTaxFullTime,
		ItemIncomeTaxPartTime,
		ItemSocialSecurityContributionEmployee,
		ItemSocialSecurityContributionEmployer,
		ItemTotalDeductions,
		ItemMaternityFundContributionEmployer,
		ItemReimbursements,
		ItemNetPay,
		ItemTaxDue,
	}
}

// =============================================================================
// ITEMS - The full set of line-item values for one payment
// =============================================================================

// Items holds one Money per line item. Treat values as immutable: With
// returns a copy rather than mutating in place.
type Items struct {
	PriorGrossEmoluments               Money `yaml:"prior_gross_emoluments"`
	BasicPayFullTime                   Money `yaml:"basic_pay_full_time"`
	BasicPayPartTime                   Money `yaml:"basic_pay_part_time"`
	ManualAdjustments                  Money `yaml:"manual_adjustments"`
	StatutoryBonus                     Money `yaml:"statutory_bonus"`
	TotalTaxableGrossEmoluments        Money `yaml:"total_taxable_gross_emoluments"`
	PriorIncomeTaxDeduction            Money `yaml:"prior_income_tax_deduction"`
	IncomeTaxFullTime                  Money `yaml:"income_tax_full_time"`
	IncomeTaxPartTime                  Money `yaml:"income_tax_part_time"`
	SocialSecurityContributionEmployee Money `yaml:"social_security_contribution_employee"`
	SocialSecurityContributionEmployer Money `yaml:"social_security_contribution_employer"`
	TotalDeductions                    Money `yaml:"total_deductions"`
	MaternityFundContributionEmployer  Money `yaml:"maternity_fund_contribution_employer"`
	Reimbursements                     Money `yaml:"reimbursements"`
	NetPay                             Money `yaml:"net_pay"`
	TaxDue                             Money `yaml:"tax_due"`
}

// ZeroItems returns the additive identity: every line item at zero in the
// given currency.
func ZeroItems(currency string) Items {
	zero := Zero(currency)
	items := Items{}
	for _, name := range ItemNames() {
		items = items.With(name, zero)
	}
	return items
}

// Add performs pointwise addition over every line item. Used to accumulate
// year-to-date totals across payments.
func (i Items) Add(o Items) Items {
	sum := i
	for _, name := range ItemNames() {
		a, _ := i.Get(name)
		b, _ := o.Get(name)
		sum = sum.With(name, a.Add(b))
	}
	return sum
}

// Get returns the value of the named line item. A name outside the closed
// set is ErrUnknownLineItem.
func (i Items) Get(name ItemName) (Money, error) {
	switch name {
	case ItemPriorGrossEmoluments:
		return i.PriorGrossEmoluments, nil
	case ItemBasicPayFullTime:
		return i.BasicPayFullTime, nil
	case ItemBasicPayPartTime:
		return i.BasicPayPartTime, nil
	case ItemManualAdjustments:
		return i.ManualAdjustments, nil
	case ItemStatutoryBonus:
		return i.StatutoryBonus, nil
	case ItemTotalTaxableGrossEmoluments:
		return i.TotalTaxableGrossEmoluments, nil
	case ItemPriorIncomeTaxDeduction:
		return i.PriorIncomeTaxDeduction, nil
	case ItemIncomeTaxFullTime:
		return i.IncomeTaxFullTime, nil
	case ItemIncomeTaxPartTime:
		return i.IncomeTaxPartTime, nil
	case ItemSocialSecurityContributionEmployee:
		return i.SocialSecurityContributionEmployee, nil
	case ItemSocialSecurityContributionEmployer:
		return i.SocialSecurityContributionEmployer, nil
	case ItemTotalDeductions:
		return i.TotalDeductions, nil
	case ItemMaternityFundContributionEmployer:
		return i.MaternityFundContributionEmployer, nil
	case ItemReimbursements:
		return i.Reimbursements, nil
	case ItemNetPay:
		return i.NetPay, nil
	case ItemTaxDue:
		return i.TaxDue, nil
	default:
		return Money{}, fmt.Errorf("%w: %s", ErrUnknownLineItem, name)
	}
}

// With returns a copy of the Items with the named line item replaced.
// Unknown names are ignored; the closed set is fixed at compile time.
func (i Items) With(name ItemName, value Money) Items {
	switch name {
	case ItemPriorGrossEmoluments:
		i.PriorGrossEmoluments = value
	case ItemBasicPayFullTime:
		i.BasicPayFullTime = value
	case ItemBasicPayPartTime:
		i.BasicPayPartTime = value
	case ItemManualAdjustments:
		i.ManualAdjustments = value
	case ItemStatutoryBonus:
		i.StatutoryBonus = value
	case ItemTotalTaxableGrossEmoluments:
		i.TotalTaxableGrossEmoluments = value
	case ItemPriorIncomeTaxDeduction:
		i.PriorIncomeTaxDeduction = value
	case ItemIncomeTaxFullTime:
		i.IncomeTaxFullTime = value
	case ItemIncomeTaxPartTime:
		i.IncomeTaxPartTime = value
	case ItemSocialSecurityContributionEmployee:
		i.SocialSecurityContributionEmployee = value
	case ItemSocialSecurityContributionEmployer:
		i.SocialSecurityContributionEmployer = value
	case ItemTotalDeductions:
		i.TotalDeductions = value
	case ItemMaternityFundContributionEmployer:
		i.MaternityFundContributionEmployer = value
	case ItemReimbursements:
		i.Reimbursements = value
	case ItemNetPay:
		i.NetPay = value
	case ItemTaxDue:
		i.TaxDue = value
	}
	return i
}

// =============================================================================
// LINE ITEM - Stored per-item record
// =============================================================================

// LineItem is the persisted record for one line item of one payment.
type LineItem struct {
	CurrentPeriod   Decimal `yaml:"current_period"`
	YearToDate      Decimal `yaml:"year_to_date"`
	ProjectedYearly Decimal `yaml:"projected_yearly"`
}

// Validate enforces that stored aggregates are non-negative.
func (l LineItem) Validate() error {
	if l.YearToDate.IsNegative() {
		return fmt.Errorf("year_to_date '%s' cannot be < 0", l.YearToDate)
	}
	if l.ProjectedYearly.IsNegative() {
		return fmt.Errorf("projected_yearly '%s' cannot be < 0", l.ProjectedYearly)
	}
	return nil
}
