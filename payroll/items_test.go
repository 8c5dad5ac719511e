package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// ITEMS TESTS
// =============================================================================

func TestZeroItems_IsAdditiveIdentity(t *testing.T) {
	zero := payroll.ZeroItems("EUR")
	filled := zero.
		With(payroll.ItemBasicPayFullTime, eur("2000.00")).
		With(payroll.ItemNetPay, eur("1810.33"))

	sum := filled.Add(zero)

	for _, name := range payroll.ItemNames() {
		want, err := filled.Get(name)
		require.NoError(t, err)
		got, err := sum.Get(name)
		require.NoError(t, err)
		assert.True(t, got.Equal(want), "item %s changed when adding zero", name)
	}
}

func TestItems_Add_IsPointwise(t *testing.T) {
	// GIVEN: Two months of stored items
	// WHEN: Accumulating them
	// THEN: Every line item is summed independently

	january := payroll.ZeroItems("EUR").
		With(payroll.ItemBasicPayFullTime, eur("2000.00")).
		With(payroll.ItemIncomeTaxFullTime, eur("94.00"))
	february := payroll.ZeroItems("EUR").
		With(payroll.ItemBasicPayFullTime, eur("2000.00")).
		With(payroll.ItemStatutoryBonus, eur("121.16"))

	ytd := january.Add(february)

	assert.Equal(t, "4000.00 EUR", ytd.BasicPayFullTime.String())
	assert.Equal(t, "94.00 EUR", ytd.IncomeTaxFullTime.String())
	assert.Equal(t, "121.16 EUR", ytd.StatutoryBonus.String())
	assert.True(t, ytd.NetPay.IsZero())
}

func TestItems_With_DoesNotMutateReceiver(t *testing.T) {
	original := payroll.ZeroItems("EUR")
	modified := original.With(payroll.ItemNetPay, eur("100.00"))

	assert.True(t, original.NetPay.IsZero())
	assert.Equal(t, "100.00 EUR", modified.NetPay.String())
}

func TestItems_Get_UnknownName(t *testing.T) {
	_, err := payroll.ZeroItems("EUR").Get("overtime_pay")
	assert.ErrorIs(t, err, payroll.ErrUnknownLineItem)
}

func TestItemNames_CoversEveryLineItem(t *testing.T) {
	names := payroll.ItemNames()
	require.Len(t, names, 16)

	seen := make(map[payroll.ItemName]bool, len(names))
	for _, name := range names {
		assert.False(t, seen[name], "duplicate item name %s", name)
		seen[name] = true
	}
}
