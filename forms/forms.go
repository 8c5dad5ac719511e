/*
Package forms generates the statutory year-end and monthly declaration
forms from saved payments.

PURPOSE:
  Three forms aggregate what the payroll already computed; no new tax logic
  lives here.

  FS3: Per employee per year. Gross emoluments, tax deductions, and the
       social security contributions broken down by weekly wage band.
  FS5: Per month. Payee counts and the employer's total remittance.
  FS7: Per year. The employer's annual reconciliation, summed over the
       year's FS3 forms.

OUTPUT:
  Forms are written as YAML under tax-fs3/, tax-fs5/ and tax-fs7/ in the
  data directory, one file per form.
*/
package forms

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store"
)

// Header carries the fields common to every form.
type Header struct {
	Dated     payroll.Date         `yaml:"dated"`
	BasisYear int                  `yaml:"basis_year"`
	Payer     payroll.Organisation `yaml:"payer"`
}

// =============================================================================
// FS3 - Per-employee annual statement
// =============================================================================

// Contribution is one weekly-wage band of an employee's social security and
// maternity fund contributions on the FS3.
type Contribution struct {
	BasicWage                  payroll.Money                  `yaml:"basic_wage"`
	WeeksWorked                int                            `yaml:"weeks_worked"`
	Category                   payroll.SocialSecurityCategory `yaml:"category"`
	SocialSecurityEmployee     payroll.Money                  `yaml:"social_security_contributions_employee"`
	SocialSecurityEmployer     payroll.Money                  `yaml:"social_security_contributions_employer"`
	SocialSecurityTotal        payroll.Money                  `yaml:"social_security_contributions_total"`
	MaternityFundContributions payroll.Money                  `yaml:"maternity_fund_contributions"`
}

func (c *Contribution) processPayment(payment *payroll.Payment) {
	c.WeeksWorked += payment.WeeksWorked
	c.SocialSecurityEmployee = c.SocialSecurityEmployee.Add(payment.Items.SocialSecurityContributionEmployee)
	c.SocialSecurityEmployer = c.SocialSecurityEmployer.Add(payment.Items.SocialSecurityContributionEmployer)
	c.SocialSecurityTotal = c.SocialSecurityTotal.
		Add(payment.Items.SocialSecurityContributionEmployee).
		Add(payment.Items.SocialSecurityContributionEmployer)
	c.MaternityFundContributions = c.MaternityFundContributions.Add(payment.Items.MaternityFundContributionEmployer)
}

// FS3 is an employee's annual statement of emoluments and deductions.
type FS3 struct {
	Header `yaml:",inline"`

	Payee  *payroll.Employee `yaml:"payee"`
	Period payroll.Period    `yaml:"period"`

	GrossEmolumentsFullTime payroll.Money `yaml:"gross_emoluments_full_time"`
	GrossEmolumentsPartTime payroll.Money `yaml:"gross_emoluments_part_time"`
	TotalGrossEmoluments    payroll.Money `yaml:"total_gross_emoluments_and_fringe_benefits"`
	IncomeTaxFullTime       payroll.Money `yaml:"income_tax_full_time"`
	IncomeTaxPartTime       payroll.Money `yaml:"income_tax_part_time"`
	TotalTaxDeductions      payroll.Money `yaml:"total_tax_deductions"`

	Contributions []*Contribution `yaml:"social_security_and_maternity_fund_contributions"`

	TotalSocialSecurityEmployee payroll.Money `yaml:"total_social_security_contributions_employee"`
	TotalSocialSecurityEmployer payroll.Money `yaml:"total_social_security_contributions_employer"`
	TotalSocialSecurity         payroll.Money `yaml:"total_social_security_contributions"`
	TotalMaternityFund          payroll.Money `yaml:"total_maternity_fund_contributions"`
}

func (f *FS3) processPayment(payment *payroll.Payment) {
	if payment.Employee.TaxComputation != payroll.TaxPartTime {
		f.GrossEmolumentsFullTime = f.GrossEmolumentsFullTime.Add(payment.Items.TotalTaxableGrossEmoluments)
	} else {
		f.GrossEmolumentsPartTime = f.GrossEmolumentsPartTime.Add(payment.Items.TotalTaxableGrossEmoluments)
	}
	f.TotalGrossEmoluments = f.TotalGrossEmoluments.Add(payment.Items.TotalTaxableGrossEmoluments)
	f.IncomeTaxFullTime = f.IncomeTaxFullTime.Add(payment.Items.IncomeTaxFullTime)
	f.IncomeTaxPartTime = f.IncomeTaxPartTime.Add(payment.Items.IncomeTaxPartTime)
	f.TotalTaxDeductions = f.TotalTaxDeductions.
		Add(payment.Items.IncomeTaxFullTime).
		Add(payment.Items.IncomeTaxPartTime)
	f.selectContribution(payment).processPayment(payment)
	f.TotalSocialSecurityEmployee = f.TotalSocialSecurityEmployee.Add(payment.Items.SocialSecurityContributionEmployee)
	f.TotalSocialSecurityEmployer = f.TotalSocialSecurityEmployer.Add(payment.Items.SocialSecurityContributionEmployer)
	f.TotalSocialSecurity = f.TotalSocialSecurity.
		Add(payment.Items.SocialSecurityContributionEmployee).
		Add(payment.Items.SocialSecurityContributionEmployer)
	f.TotalMaternityFund = f.TotalMaternityFund.Add(payment.Items.MaternityFundContributionEmployer)
}

// selectContribution finds the band for the payment's weekly wage, opening
// a new one the first time a wage appears. A wage changes mid-year only on
// a salary revision, so forms rarely carry more than two bands.
func (f *FS3) selectContribution(payment *payroll.Payment) *Contribution {
	for _, contribution := range f.Contributions {
		if contribution.BasicWage.Equal(payment.WeeklyWage) {
			return contribution
		}
	}
	zero := payment.Zero()
	contribution := &Contribution{
		BasicWage:                  payment.WeeklyWage,
		Category:                   payment.Employee.SocialSecurityCategory,
		SocialSecurityEmployee:     zero,
		SocialSecurityEmployer:     zero,
		SocialSecurityTotal:        zero,
		MaternityFundContributions: zero,
	}
	f.Contributions = append(f.Contributions, contribution)
	return contribution
}

// GeneratorFS3 computes and writes FS3 forms.
type GeneratorFS3 struct {
	payer     *payroll.Organisation
	dir       string
	employees store.Employees
	payments  store.Payments
}

func NewGeneratorFS3(payer *payroll.Organisation, dir string, employees store.Employees, payments store.Payments) *GeneratorFS3 {
	return &GeneratorFS3{payer: payer, dir: dir, employees: employees, payments: payments}
}

// Compute aggregates the employee's saved payments for the year into an
// FS3. The form's period is the intersection of the year and the
// employment span.
func (g *GeneratorFS3) Compute(year int, employeeKey string) (*FS3, error) {
	employee, err := g.employees.LoadByKey(employeeKey)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, fmt.Errorf("no employee stored under key %q", employeeKey)
	}

	start := payroll.Later(payroll.NewDate(year, 1, 1), employee.StartDate)
	end := payroll.NewDate(year, 12, 31)
	if employee.EndDate != nil {
		end = payroll.Earlier(end, *employee.EndDate)
	}
	period, err := payroll.NewPeriod(start, end)
	if err != nil {
		return nil, err
	}

	zero := payroll.Zero(g.payer.Currency)
	form := &FS3{
		Header: Header{Dated: payroll.Today(), BasisYear: year, Payer: *g.payer},
		Payee:  employee,
		Period: period,

		GrossEmolumentsFullTime:     zero,
		GrossEmolumentsPartTime:     zero,
		TotalGrossEmoluments:        zero,
		IncomeTaxFullTime:           zero,
		IncomeTaxPartTime:           zero,
		TotalTaxDeductions:          zero,
		TotalSocialSecurityEmployee: zero,
		TotalSocialSecurityEmployer: zero,
		TotalSocialSecurity:         zero,
		TotalMaternityFund:          zero,
	}

	payments, err := g.payments.Load(employeeKey, year, nil)
	if err != nil {
		return nil, err
	}
	for _, payment := range payments {
		form.processPayment(payment)
	}
	return form, nil
}

// Generate writes the employee's FS3 for the year to
// <dir>/<year>/<year>-fs3-<key>.yml.
func (g *GeneratorFS3) Generate(year int, employeeKey string) error {
	form, err := g.Compute(year, employeeKey)
	if err != nil {
		return err
	}
	dir := filepath.Join(g.dir, fmt.Sprintf("%d", year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeYAML(filepath.Join(dir, fmt.Sprintf("%d-fs3-%s.yml", year, employeeKey)), form)
}

// GenerateAll writes an FS3 for every employee employed at any point during
// the year.
func (g *GeneratorFS3) GenerateAll(year int) error {
	employees, err := g.employees.Load(func(e *payroll.Employee) bool {
		return e.EndDate == nil || e.EndDate.Year() >= year
	})
	if err != nil {
		return err
	}
	for _, employee := range employees {
		if err := g.Generate(year, employee.Key); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// FS5 - Monthly remittance advice
// =============================================================================

// FS5 is the employer's monthly declaration of payees, emoluments and the
// total remittance due.
type FS5 struct {
	Header `yaml:",inline"`

	Month int `yaml:"month"`

	PayeesFullTime int `yaml:"number_of_payees_full_time"`
	PayeesPartTime int `yaml:"number_of_payees_part_time"`

	TotalGrossEmolumentsFullTime payroll.Money `yaml:"total_gross_emoluments_full_time"`
	TotalGrossEmolumentsPartTime payroll.Money `yaml:"total_gross_emoluments_part_time"`
	TotalGrossEmoluments         payroll.Money `yaml:"total_gross_emoluments_and_fringe_benefits"`
	TotalIncomeTaxFullTime       payroll.Money `yaml:"total_income_tax_full_time"`
	TotalIncomeTaxPartTime       payroll.Money `yaml:"total_income_tax_part_time"`
	TotalTaxDeductions           payroll.Money `yaml:"total_tax_deductions"`
	TotalSocialSecurity          payroll.Money `yaml:"total_social_security_contributions"`
	TotalMaternityFund           payroll.Money `yaml:"total_maternity_fund_contributions"`
	TotalTaxDue                  payroll.Money `yaml:"total_tax_due"`
}

func (f *FS5) processPayment(payment *payroll.Payment) {
	gross := payment.Items.TotalTaxableGrossEmoluments.Round(0)
	if payment.Employee.TaxComputation != payroll.TaxPartTime {
		f.PayeesFullTime++
		f.TotalGrossEmolumentsFullTime = f.TotalGrossEmolumentsFullTime.Add(gross)
	} else {
		f.PayeesPartTime++
		f.TotalGrossEmolumentsPartTime = f.TotalGrossEmolumentsPartTime.Add(gross)
	}
	f.TotalGrossEmoluments = f.TotalGrossEmoluments.Add(gross)
	f.TotalIncomeTaxFullTime = f.TotalIncomeTaxFullTime.Add(payment.Items.IncomeTaxFullTime)
	f.TotalIncomeTaxPartTime = f.TotalIncomeTaxPartTime.Add(payment.Items.IncomeTaxPartTime)
	f.TotalTaxDeductions = f.TotalTaxDeductions.
		Add(payment.Items.IncomeTaxFullTime).
		Add(payment.Items.IncomeTaxPartTime)
	f.TotalSocialSecurity = f.TotalSocialSecurity.
		Add(payment.Items.SocialSecurityContributionEmployee).
		Add(payment.Items.SocialSecurityContributionEmployer)
	f.TotalMaternityFund = f.TotalMaternityFund.Add(payment.Items.MaternityFundContributionEmployer)
	f.TotalTaxDue = f.TotalTaxDue.Add(payment.Items.TaxDue)
}

// GeneratorFS5 computes and writes FS5 forms.
type GeneratorFS5 struct {
	payer    *payroll.Organisation
	dir      string
	payments store.Payments
}

func NewGeneratorFS5(payer *payroll.Organisation, dir string, payments store.Payments) *GeneratorFS5 {
	return &GeneratorFS5{payer: payer, dir: dir, payments: payments}
}

// Compute aggregates the month's saved payments into an FS5.
func (g *GeneratorFS5) Compute(year, month int) (*FS5, error) {
	zero := payroll.Zero(g.payer.Currency)
	form := &FS5{
		Header: Header{Dated: payroll.Today(), BasisYear: year, Payer: *g.payer},
		Month:  month,

		TotalGrossEmolumentsFullTime: zero,
		TotalGrossEmolumentsPartTime: zero,
		TotalGrossEmoluments:         zero,
		TotalIncomeTaxFullTime:       zero,
		TotalIncomeTaxPartTime:       zero,
		TotalTaxDeductions:           zero,
		TotalSocialSecurity:          zero,
		TotalMaternityFund:           zero,
		TotalTaxDue:                  zero,
	}

	payments, err := g.payments.LoadForMonth(year, month, nil)
	if err != nil {
		return nil, err
	}
	for _, payment := range payments {
		form.processPayment(payment)
	}
	return form, nil
}

// Generate writes the month's FS5 to <dir>/<year>/<year>-<month>-fs5.yml.
func (g *GeneratorFS5) Generate(year, month int) error {
	form, err := g.Compute(year, month)
	if err != nil {
		return err
	}
	dir := filepath.Join(g.dir, fmt.Sprintf("%d", year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeYAML(filepath.Join(dir, fmt.Sprintf("%d-%02d-fs5.yml", year, month)), form)
}

// =============================================================================
// FS7 - Annual reconciliation
// =============================================================================

// FS7 is the employer's annual reconciliation, summed over the year's FS3
// forms rather than recomputed from payments.
type FS7 struct {
	Header `yaml:",inline"`

	NumberOfFS3Forms int `yaml:"number_fs3_forms"`

	TotalGrossEmolumentsFullTime payroll.Money `yaml:"total_gross_emoluments_full_time"`
	TotalGrossEmolumentsPartTime payroll.Money `yaml:"total_gross_emoluments_part_time"`
	TotalGrossEmoluments         payroll.Money `yaml:"total_gross_emoluments_and_fringe_benefits"`
	TotalIncomeTaxFullTime       payroll.Money `yaml:"total_income_tax_full_time"`
	TotalIncomeTaxPartTime       payroll.Money `yaml:"total_income_tax_part_time"`
	TotalTaxDeductions           payroll.Money `yaml:"total_tax_deductions"`
	TotalSocialSecurity          payroll.Money `yaml:"total_social_security_contributions"`
	TotalMaternityFund           payroll.Money `yaml:"total_maternity_fund_contributions"`
}

func (f *FS7) processFS3(form *FS3) {
	f.NumberOfFS3Forms++
	f.TotalGrossEmolumentsFullTime = f.TotalGrossEmolumentsFullTime.Add(form.GrossEmolumentsFullTime)
	f.TotalGrossEmolumentsPartTime = f.TotalGrossEmolumentsPartTime.Add(form.GrossEmolumentsPartTime)
	f.TotalGrossEmoluments = f.TotalGrossEmoluments.
		Add(form.GrossEmolumentsFullTime).
		Add(form.GrossEmolumentsPartTime)
	f.TotalIncomeTaxFullTime = f.TotalIncomeTaxFullTime.Add(form.IncomeTaxFullTime)
	f.TotalIncomeTaxPartTime = f.TotalIncomeTaxPartTime.Add(form.IncomeTaxPartTime)
	f.TotalTaxDeductions = f.TotalTaxDeductions.
		Add(form.IncomeTaxFullTime).
		Add(form.IncomeTaxPartTime)
	f.TotalSocialSecurity = f.TotalSocialSecurity.Add(form.TotalSocialSecurity)
	f.TotalMaternityFund = f.TotalMaternityFund.Add(form.TotalMaternityFund)
}

// GeneratorFS7 computes and writes the FS7 from the year's generated FS3
// files.
type GeneratorFS7 struct {
	payer  *payroll.Organisation
	dir    string
	fs3Dir string
}

func NewGeneratorFS7(payer *payroll.Organisation, dir, fs3Dir string) *GeneratorFS7 {
	return &GeneratorFS7{payer: payer, dir: dir, fs3Dir: fs3Dir}
}

// Compute reads every FS3 generated for the year and sums it into an FS7.
func (g *GeneratorFS7) Compute(year int) (*FS7, error) {
	zero := payroll.Zero(g.payer.Currency)
	form := &FS7{
		Header: Header{Dated: payroll.Today(), BasisYear: year, Payer: *g.payer},

		TotalGrossEmolumentsFullTime: zero,
		TotalGrossEmolumentsPartTime: zero,
		TotalGrossEmoluments:         zero,
		TotalIncomeTaxFullTime:       zero,
		TotalIncomeTaxPartTime:       zero,
		TotalTaxDeductions:           zero,
		TotalSocialSecurity:          zero,
		TotalMaternityFund:           zero,
	}

	paths, err := filepath.Glob(filepath.Join(g.fs3Dir, fmt.Sprintf("%d", year), fmt.Sprintf("%d-fs3-*.yml", year)))
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, &payroll.RecordParseError{Source: path, Err: err}
		}
		var fs3 FS3
		if err := yaml.Unmarshal(content, &fs3); err != nil {
			return nil, &payroll.RecordParseError{Source: path, Err: err}
		}
		form.processFS3(&fs3)
	}
	return form, nil
}

// Generate writes the year's FS7 to <dir>/<year>-fs7.yml.
func (g *GeneratorFS7) Generate(year int) error {
	form, err := g.Compute(year)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return err
	}
	return writeYAML(filepath.Join(g.dir, fmt.Sprintf("%d-fs7.yml", year)), form)
}

func writeYAML(path string, form any) error {
	content, err := yaml.Marshal(form)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}
