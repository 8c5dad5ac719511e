package calculation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/calculation"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// countingCalculation returns a constant and counts Compute invocations so
// tests can observe memoization.
type countingCalculation struct {
	value payroll.Money
	calls int
}

func (c *countingCalculation) Compute(_, _ calculation.Resolver, _ *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	c.calls++
	return c.value, nil
}

// dependentCalculation resolves another item's value and passes it through.
type dependentCalculation struct {
	on payroll.ItemName
}

func (d dependentCalculation) Compute(valueOf, _ calculation.Resolver, _ *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	return valueOf(d.on)
}

func testPayment(t *testing.T) *payroll.Payment {
	t.Helper()
	employee := fullTimeEmployee(payroll.NewDate(2020, 1, 1))
	payment, err := payroll.NewPayment(employee, payroll.MonthPeriod(2026, time.June), "EUR")
	require.NoError(t, err)
	return payment
}

// =============================================================================
// MEMOIZATION TESTS
// =============================================================================

func TestCalculator_ValueOf_ComputesOnce(t *testing.T) {
	// GIVEN: Two items that both depend on a third
	// WHEN: Resolving each of them
	// THEN: The shared dependency's Compute runs exactly once

	shared := &countingCalculation{value: eur("100.00")}
	registry := calculation.Registry{
		payroll.ItemBasicPayFullTime:  shared,
		payroll.ItemStatutoryBonus:    dependentCalculation{on: payroll.ItemBasicPayFullTime},
		payroll.ItemManualAdjustments: dependentCalculation{on: payroll.ItemBasicPayFullTime},
	}
	calc := calculation.NewCalculator(testPayment(t), payroll.ZeroItems("EUR"), registry)

	first, err := calc.ValueOf(payroll.ItemStatutoryBonus)
	require.NoError(t, err)
	second, err := calc.ValueOf(payroll.ItemManualAdjustments)
	require.NoError(t, err)

	assert.True(t, first.Equal(eur("100.00")))
	assert.True(t, second.Equal(eur("100.00")))
	assert.Equal(t, 1, shared.calls)
}

func TestCalculator_ValueOf_UnknownItem(t *testing.T) {
	calc := calculation.NewCalculator(testPayment(t), payroll.ZeroItems("EUR"), calculation.Registry{})

	_, err := calc.ValueOf(payroll.ItemNetPay)
	assert.ErrorIs(t, err, payroll.ErrUnknownLineItem)
}

// =============================================================================
// PROJECTION TESTS
// =============================================================================

func TestCalculator_ProjectionOf_NonProjectorFails(t *testing.T) {
	// GIVEN: An item whose calculation has no annual projection
	// WHEN: Requesting its projection
	// THEN: The request fails explicitly instead of defaulting to zero

	registry := calculation.Registry{
		payroll.ItemNetPay: &countingCalculation{value: eur("1.00")},
	}
	calc := calculation.NewCalculator(testPayment(t), payroll.ZeroItems("EUR"), registry)

	_, err := calc.ProjectionOf(payroll.ItemNetPay)
	assert.ErrorIs(t, err, payroll.ErrProjectionUnavailable)

	var projErr *payroll.ProjectionUnavailableError
	require.ErrorAs(t, err, &projErr)
	assert.Equal(t, payroll.ItemNetPay, projErr.Item)
	assert.False(t, calc.CanProject(payroll.ItemNetPay))
}

// =============================================================================
// CYCLE DETECTION TESTS
// =============================================================================

func TestCalculator_DetectsDependencyCycle(t *testing.T) {
	// GIVEN: Two items that each resolve the other
	// WHEN: Resolving either one
	// THEN: The cycle is reported with its resolution path

	registry := calculation.Registry{
		payroll.ItemNetPay:          dependentCalculation{on: payroll.ItemTotalDeductions},
		payroll.ItemTotalDeductions: dependentCalculation{on: payroll.ItemNetPay},
	}
	calc := calculation.NewCalculator(testPayment(t), payroll.ZeroItems("EUR"), registry)

	_, err := calc.ValueOf(payroll.ItemNetPay)
	require.ErrorIs(t, err, payroll.ErrDependencyCycle)

	var cycleErr *payroll.DependencyCycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"net_pay", "total_deductions", "net_pay"}, cycleErr.Path)
}

func TestCalculator_SelfCycle(t *testing.T) {
	registry := calculation.Registry{
		payroll.ItemNetPay: dependentCalculation{on: payroll.ItemNetPay},
	}
	calc := calculation.NewCalculator(testPayment(t), payroll.ZeroItems("EUR"), registry)

	_, err := calc.ValueOf(payroll.ItemNetPay)
	assert.ErrorIs(t, err, payroll.ErrDependencyCycle)
}

func TestCalculator_ValueFromOwnProjection_IsNotACycle(t *testing.T) {
	// A value resolution may read the same item's projection; the two are
	// distinct resolutions, as income tax smoothing relies on.

	registry := calculation.Registry{
		payroll.ItemIncomeTaxFullTime: selfProjectingCalculation{},
	}
	calc := calculation.NewCalculator(testPayment(t), payroll.ZeroItems("EUR"), registry)

	value, err := calc.ValueOf(payroll.ItemIncomeTaxFullTime)
	require.NoError(t, err)
	assert.True(t, value.Equal(eur("1200.00")))
}

type selfProjectingCalculation struct{}

func (selfProjectingCalculation) Compute(_, projectionOf calculation.Resolver, _ *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	yearly, err := projectionOf(payroll.ItemIncomeTaxFullTime)
	if err != nil {
		return payroll.Money{}, err
	}
	return yearly.Mul(payroll.MustParseDecimal("0.5")), nil
}

func (selfProjectingCalculation) Project(_, _ calculation.Resolver, _ *payroll.Payment, _ payroll.Items) (payroll.Money, error) {
	return eur("2400.00"), nil
}
