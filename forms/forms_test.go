package forms_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/payroll-engine/forms"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const employeeYAML = `identifier: "0000001A"
first_name: Jane
surname: Doe
start_date: "2020-01-01"
hours_per_week: 40
tax_computation: single
social_security_category: B
gross_annual_salary: "24000"
`

func eur(s string) payroll.Money {
	return payroll.NewMoney(payroll.MustParseDecimal(s), "EUR")
}

type fixture struct {
	organisation *payroll.Organisation
	root         string
	employees    *store.FilesystemEmployees
	payments     *store.FilesystemPayments
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "employees"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "employees", "jdoe.yml"), []byte(employeeYAML), 0o644))

	return &fixture{
		organisation: &payroll.Organisation{Name: "Warp Ltd", Currency: "EUR", EmployerNumber: "EMP-1"},
		root:         root,
		employees:    store.NewFilesystemEmployees(filepath.Join(root, "employees"), zap.NewNop()),
		payments:     store.NewFilesystemPayments(filepath.Join(root, "payments"), zap.NewNop()),
	}
}

// savePayment stores a computed payment for jdoe with the statutory items a
// full month on 24000/year produces.
func (f *fixture) savePayment(t *testing.T, month time.Month) {
	t.Helper()
	employee, err := f.employees.LoadByKey("jdoe")
	require.NoError(t, err)
	payment, err := payroll.NewPayment(employee, payroll.MonthPeriod(2026, month), "EUR")
	require.NoError(t, err)
	payment.Items = payroll.ZeroItems("EUR").
		With(payroll.ItemBasicPayFullTime, eur("2000.00")).
		With(payroll.ItemTotalTaxableGrossEmoluments, eur("2135.10")).
		With(payroll.ItemIncomeTaxFullTime, eur("94.00")).
		With(payroll.ItemSocialSecurityContributionEmployee, eur("230.77")).
		With(payroll.ItemSocialSecurityContributionEmployer, eur("230.77")).
		With(payroll.ItemMaternityFundContributionEmployer, eur("6.92")).
		With(payroll.ItemTaxDue, eur("562.46"))
	require.NoError(t, f.payments.Save(payment))
}

// =============================================================================
// FS3 TESTS
// =============================================================================

func TestGeneratorFS3_Compute_AggregatesSavedPayments(t *testing.T) {
	// GIVEN: Two saved monthly payments for one employee
	// WHEN: Computing the annual FS3
	// THEN: Emoluments, deductions and contributions are summed

	f := newFixture(t)
	f.savePayment(t, time.May)
	f.savePayment(t, time.June)

	generator := forms.NewGeneratorFS3(f.organisation, filepath.Join(f.root, "tax-fs3"), f.employees, f.payments)
	form, err := generator.Compute(2026, "jdoe")
	require.NoError(t, err)

	assert.Equal(t, 2026, form.BasisYear)
	assert.Equal(t, "jdoe", form.Payee.Key)
	assert.Equal(t, "4270.20 EUR", form.GrossEmolumentsFullTime.String())
	assert.True(t, form.GrossEmolumentsPartTime.IsZero())
	assert.Equal(t, "4270.20 EUR", form.TotalGrossEmoluments.String())
	assert.Equal(t, "188.00 EUR", form.IncomeTaxFullTime.String())
	assert.Equal(t, "188.00 EUR", form.TotalTaxDeductions.String())
	assert.Equal(t, "461.54 EUR", form.TotalSocialSecurityEmployee.String())
	assert.Equal(t, "923.08 EUR", form.TotalSocialSecurity.String())
	assert.Equal(t, "13.84 EUR", form.TotalMaternityFund.String())
}

func TestGeneratorFS3_Compute_OneBandPerWeeklyWage(t *testing.T) {
	// Both months share the 461.54 weekly wage and land in one band. May
	// 2026 holds four Mondays, June five.

	f := newFixture(t)
	f.savePayment(t, time.May)
	f.savePayment(t, time.June)

	generator := forms.NewGeneratorFS3(f.organisation, filepath.Join(f.root, "tax-fs3"), f.employees, f.payments)
	form, err := generator.Compute(2026, "jdoe")
	require.NoError(t, err)

	require.Len(t, form.Contributions, 1)
	band := form.Contributions[0]
	assert.Equal(t, "461.54 EUR", band.BasicWage.String())
	assert.Equal(t, payroll.CategoryB, band.Category)
	assert.Equal(t, 9, band.WeeksWorked)
	assert.Equal(t, "461.54 EUR", band.SocialSecurityEmployee.String())
	assert.Equal(t, "923.08 EUR", band.SocialSecurityTotal.String())
}

func TestGeneratorFS3_Compute_PeriodClampedToYearAndEmployment(t *testing.T) {
	f := newFixture(t)

	generator := forms.NewGeneratorFS3(f.organisation, filepath.Join(f.root, "tax-fs3"), f.employees, f.payments)
	form, err := generator.Compute(2026, "jdoe")
	require.NoError(t, err)

	// Employment predates 2026, so the form covers the whole basis year.
	assert.True(t, form.Period.Start.Equal(payroll.NewDate(2026, 1, 1)))
	assert.True(t, form.Period.End.Equal(payroll.NewDate(2026, 12, 31)))
}

func TestGeneratorFS3_Compute_UnknownEmployee(t *testing.T) {
	f := newFixture(t)

	generator := forms.NewGeneratorFS3(f.organisation, filepath.Join(f.root, "tax-fs3"), f.employees, f.payments)
	_, err := generator.Compute(2026, "nobody")
	assert.Error(t, err)
}

func TestGeneratorFS3_GenerateAll_WritesOneFilePerEmployee(t *testing.T) {
	f := newFixture(t)
	f.savePayment(t, time.June)

	dir := filepath.Join(f.root, "tax-fs3")
	generator := forms.NewGeneratorFS3(f.organisation, dir, f.employees, f.payments)
	require.NoError(t, generator.GenerateAll(2026))

	_, err := os.Stat(filepath.Join(dir, "2026", "2026-fs3-jdoe.yml"))
	assert.NoError(t, err)
}

// =============================================================================
// FS5 TESTS
// =============================================================================

func TestGeneratorFS5_Compute_MonthlyRemittance(t *testing.T) {
	// GIVEN: One full-time payment saved for June
	// WHEN: Computing the June FS5
	// THEN: Payee counts, whole-unit gross and the remittance total line up

	f := newFixture(t)
	f.savePayment(t, time.May)
	f.savePayment(t, time.June)

	generator := forms.NewGeneratorFS5(f.organisation, filepath.Join(f.root, "tax-fs5"), f.payments)
	form, err := generator.Compute(2026, 6)
	require.NoError(t, err)

	assert.Equal(t, 6, form.Month)
	assert.Equal(t, 1, form.PayeesFullTime)
	assert.Equal(t, 0, form.PayeesPartTime)
	assert.Equal(t, "2135.00 EUR", form.TotalGrossEmoluments.String())
	assert.Equal(t, "94.00 EUR", form.TotalTaxDeductions.String())
	assert.Equal(t, "461.54 EUR", form.TotalSocialSecurity.String())
	assert.Equal(t, "6.92 EUR", form.TotalMaternityFund.String())
	assert.Equal(t, "562.46 EUR", form.TotalTaxDue.String())
}

func TestGeneratorFS5_Generate_WritesFile(t *testing.T) {
	f := newFixture(t)
	f.savePayment(t, time.June)

	dir := filepath.Join(f.root, "tax-fs5")
	generator := forms.NewGeneratorFS5(f.organisation, dir, f.payments)
	require.NoError(t, generator.Generate(2026, 6))

	_, err := os.Stat(filepath.Join(dir, "2026", "2026-06-fs5.yml"))
	assert.NoError(t, err)
}

// =============================================================================
// FS7 TESTS
// =============================================================================

func TestGeneratorFS7_Compute_SumsGeneratedFS3Forms(t *testing.T) {
	// GIVEN: A generated FS3 for the year
	// WHEN: Computing the FS7
	// THEN: The reconciliation restates the FS3 totals

	f := newFixture(t)
	f.savePayment(t, time.May)
	f.savePayment(t, time.June)

	fs3Dir := filepath.Join(f.root, "tax-fs3")
	fs3 := forms.NewGeneratorFS3(f.organisation, fs3Dir, f.employees, f.payments)
	require.NoError(t, fs3.GenerateAll(2026))

	generator := forms.NewGeneratorFS7(f.organisation, filepath.Join(f.root, "tax-fs7"), fs3Dir)
	form, err := generator.Compute(2026)
	require.NoError(t, err)

	assert.Equal(t, 1, form.NumberOfFS3Forms)
	assert.Equal(t, "4270.20 EUR", form.TotalGrossEmoluments.String())
	assert.Equal(t, "188.00 EUR", form.TotalTaxDeductions.String())
	assert.Equal(t, "923.08 EUR", form.TotalSocialSecurity.String())
	assert.Equal(t, "13.84 EUR", form.TotalMaternityFund.String())
}

func TestGeneratorFS7_Compute_NoForms(t *testing.T) {
	f := newFixture(t)

	generator := forms.NewGeneratorFS7(f.organisation, filepath.Join(f.root, "tax-fs7"), filepath.Join(f.root, "tax-fs3"))
	form, err := generator.Compute(2026)
	require.NoError(t, err)

	assert.Equal(t, 0, form.NumberOfFS3Forms)
	assert.True(t, form.TotalGrossEmoluments.IsZero())
}
