package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

func eur(s string) payroll.Money {
	return payroll.NewMoney(payroll.MustParseDecimal(s), "EUR")
}

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "transactions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// =============================================================================
// APPEND AND STREAM TESTS
// =============================================================================

func TestDB_AppendAndStream_Roundtrip(t *testing.T) {
	// GIVEN: A reimbursement appended for one employee
	// WHEN: Streaming that employee's year
	// THEN: The record comes back with its decimal values intact

	db := openTestDB(t)
	ctx := context.Background()

	record := payroll.Transaction{
		Employee:    "jdoe",
		Dated:       payroll.NewDate(2026, 6, 12),
		Value:       eur("42.50"),
		Description: "travel expenses",
	}
	require.NoError(t, db.Append(ctx, payroll.KindReimbursement, record))

	records, err := db.Source(payroll.KindReimbursement).Stream("jdoe", 2026, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "jdoe", records[0].Employee)
	assert.True(t, records[0].Dated.Equal(payroll.NewDate(2026, 6, 12)))
	assert.True(t, records[0].Value.Equal(eur("42.5")))
	assert.Equal(t, "travel expenses", records[0].Description)
}

func TestDB_Stream_FiltersByKindEmployeeAndYear(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AppendBatch(ctx, payroll.KindWorkLog, []payroll.Transaction{
		{Employee: "asmith", Dated: payroll.NewDate(2026, 6, 5), Hours: payroll.NewDecimal(decimal.NewFromInt(10)), HourlyWage: eur("12.00")},
		{Employee: "asmith", Dated: payroll.NewDate(2025, 6, 5), Hours: payroll.NewDecimal(decimal.NewFromInt(8)), HourlyWage: eur("12.00")},
		{Employee: "jdoe", Dated: payroll.NewDate(2026, 6, 5), Hours: payroll.NewDecimal(decimal.NewFromInt(4)), HourlyWage: eur("15.00")},
	}))
	require.NoError(t, db.Append(ctx, payroll.KindReimbursement, payroll.Transaction{
		Employee: "asmith", Dated: payroll.NewDate(2026, 6, 20), Value: eur("99.00"),
	}))

	worklogs, err := db.Source(payroll.KindWorkLog).Stream("asmith", 2026, nil)
	require.NoError(t, err)
	require.Len(t, worklogs, 1)
	assert.Equal(t, "10", worklogs[0].Hours.String())
	assert.True(t, worklogs[0].HourlyWage.Equal(eur("12")))
}

func TestDB_Stream_PredicateNarrowsToPeriod(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AppendBatch(ctx, payroll.KindManualAdjustment, []payroll.Transaction{
		{Employee: "jdoe", Dated: payroll.NewDate(2026, 5, 30), Value: eur("100.00")},
		{Employee: "jdoe", Dated: payroll.NewDate(2026, 6, 1), Value: eur("200.00")},
	}))

	june := payroll.MonthPeriod(2026, time.June)
	records, err := db.Source(payroll.KindManualAdjustment).Stream("jdoe", 2026, func(tr payroll.Transaction) bool {
		return payroll.DateWithinPeriod(tr.Dated, june)
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Value.Equal(eur("200")))
}

func TestDB_Stream_EmptyResult(t *testing.T) {
	db := openTestDB(t)

	records, err := db.Source(payroll.KindWorkLog).Stream("nobody", 2026, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}
