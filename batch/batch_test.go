package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/payroll-engine/batch"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST FIXTURE - A complete data directory
// =============================================================================

const organisationYAML = `name: Warp Ltd
address: 10 Harbour Street
currency: EUR
employer_number: "EMP-1"
`

const employeeYAML = `identifier: "0000001A"
first_name: Jane
surname: Doe
start_date: "2020-01-01"
hours_per_week: 40
tax_computation: single
social_security_category: B
gross_annual_salary: "24000"
`

var tableFixtures = map[string]string{
	"2026-income-tax-single.csv": "upto,rate,subtract\n10000,0,0\n20000,0.15,1500\n-1,0.25,3500\n",
	"2026-ssc.csv":               "category,rate_type,rate,maximum\nA,Fixed,6.62,6.62\nB,Rate,0.10,49.97\n",
	"2026-maternity.csv":         "category,rate_type,rate,maximum\nA,Fixed,0.20,0.20\nB,Rate,0.003,1.50\n",
	"2026-statutory-bonus.csv":   "month,bonus\nmarch,121.16\njune,135.10\nseptember,121.16\ndecember,135.10\n",
}

func newDataDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write := func(relative, content string) {
		path := filepath.Join(root, relative)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("organisation.yml", organisationYAML)
	write(filepath.Join("employees", "jdoe.yml"), employeeYAML)
	for name, content := range tableFixtures {
		write(filepath.Join("tables", name), content)
	}
	return root
}

func newPayroll(t *testing.T, root string) *batch.Payroll {
	t.Helper()
	p, err := batch.New(root, batch.Options{PartTimeRate: payroll.MustParseDecimal("0.15")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

// =============================================================================
// RUN TESTS
// =============================================================================

func TestPayroll_Run_ComputesAndSaves(t *testing.T) {
	// GIVEN: A data directory with one employee and the year's tables
	// WHEN: Running June 2026
	// THEN: The payment is computed, saved and reloadable

	root := newDataDir(t)
	p := newPayroll(t, root)

	computed, err := p.Run(context.Background(), 2026, time.June)
	require.NoError(t, err)
	require.Len(t, computed, 1)
	assert.Equal(t, "1810.33 EUR", computed[0].Items.NetPay.String())

	saved, err := p.Payments().Load("jdoe", 2026, nil)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].Items.NetPay.Equal(computed[0].Items.NetPay))
}

func TestPayroll_Run_SecondMonthUsesHistory(t *testing.T) {
	// GIVEN: June already run and saved
	// WHEN: Running July
	// THEN: Year-to-date figures feed the smoothing, and July has no
	//       statutory bonus month

	root := newDataDir(t)
	p := newPayroll(t, root)

	_, err := p.Run(context.Background(), 2026, time.June)
	require.NoError(t, err)

	computed, err := p.Run(context.Background(), 2026, time.July)
	require.NoError(t, err)
	require.Len(t, computed, 1)

	items := computed[0].Items
	assert.True(t, items.StatutoryBonus.IsZero())
	assert.Equal(t, "2000.00 EUR", items.TotalTaxableGrossEmoluments.String())
	assert.Equal(t, "94.00 EUR", items.IncomeTaxFullTime.String())
	// Four Mondays in July 2026.
	assert.Equal(t, "184.62 EUR", items.SocialSecurityContributionEmployee.String())
	assert.Equal(t, "1721.38 EUR", items.NetPay.String())
}

func TestPayroll_Run_SkipsEmployeesOutsideEmployment(t *testing.T) {
	root := newDataDir(t)
	future := `identifier: "0000003C"
first_name: Max
surname: Later
start_date: "2027-01-01"
hours_per_week: 40
tax_computation: single
social_security_category: B
gross_annual_salary: "30000"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "employees", "mlater.yml"), []byte(future), 0o644))
	p := newPayroll(t, root)

	computed, err := p.Run(context.Background(), 2026, time.June)
	require.NoError(t, err)
	require.Len(t, computed, 1)
	assert.Equal(t, "jdoe", computed[0].Employee.Key)
}

func TestPayroll_Run_MissingTablesAbort(t *testing.T) {
	root := newDataDir(t)
	require.NoError(t, os.Remove(filepath.Join(root, "tables", "2026-ssc.csv")))
	p := newPayroll(t, root)

	_, err := p.Run(context.Background(), 2026, time.June)
	var cfgErr *payroll.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestPayroll_Run_CancelledContext(t *testing.T) {
	root := newDataDir(t)
	p := newPayroll(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, 2026, time.June)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// REVERT AND PAYSLIP TESTS
// =============================================================================

func TestPayroll_Revert_RemovesMonth(t *testing.T) {
	root := newDataDir(t)
	p := newPayroll(t, root)

	_, err := p.Run(context.Background(), 2026, time.June)
	require.NoError(t, err)

	require.NoError(t, p.Revert(2026, time.June))

	saved, err := p.Payments().Load("jdoe", 2026, nil)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestPayroll_Payslips_RendersSavedPayments(t *testing.T) {
	root := newDataDir(t)
	p := newPayroll(t, root)

	_, err := p.Run(context.Background(), 2026, time.June)
	require.NoError(t, err)

	paths, err := p.Payslips(2026, time.June)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "payslips", "jdoe", "2026", "2026-06-payslip-jdoe.pdf"), paths[0])

	info, err := os.Stat(paths[0])
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
