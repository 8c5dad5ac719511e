/*
Package tables loads and applies the authority-published rate tables.

PURPOSE:
  Three tabular schedules encode the tax law a payroll run depends on:

  IncomeTaxTable:     Progressive brackets. The first row whose upper bound
                      covers the taxable amount yields taxable*rate - subtract.
  CategoryRateTable:  Social security / maternity fund rates keyed by
                      contribution category: a fixed weekly amount or a
                      proportion of the weekly wage, capped per row.
  MonetaryBonusTable: Statutory bonus amounts keyed by payout month.

FIRST-MATCH-WINS:
  Rows are authored in priority order by the issuing authority. Lookup scans
  in file order and takes the first match. This is policy, not optimization.

VALIDATION:
  Loading validates every row: bounds must be orderable, rates must lie in
  [0,1], amounts must be non-negative. The first invalid row fails the whole
  table with a ConfigurationError naming the file and row. An unmatched
  category at apply time is likewise a configuration error, never a silent
  empty result.

CSV FORMATS:
  income tax:      upto,rate,subtract      ("-1" upto marks the unbounded row)
  category rates:  category,rate_type,rate,maximum
  monthly bonus:   month,bonus             (lowercase English month names)
*/
package tables

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// CSV SCAFFOLDING - Header-mapped row reader shared by the three loaders
// =============================================================================

type row struct {
	n      int // 1-based data row number
	fields map[string]string
}

func (r row) get(name string) (string, error) {
	v, ok := r.fields[name]
	if !ok {
		return "", fmt.Errorf("missing column %q", name)
	}
	return strings.TrimSpace(v), nil
}

func (r row) decimal(name string) (decimal.Decimal, error) {
	raw, err := r.get(name)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("column %q: invalid decimal %q", name, raw)
	}
	return d, nil
}

func readRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &payroll.ConfigurationError{Source: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, &payroll.ConfigurationError{Source: path, Err: fmt.Errorf("missing header: %w", err)}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []row
	for n := 1; ; n++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &payroll.ConfigurationError{Source: path, Row: n, Err: err}
		}
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				fields[name] = record[i]
			}
		}
		rows = append(rows, row{n: n, fields: fields})
	}
	return rows, nil
}

func rowError(path string, n int, err error) error {
	return &payroll.ConfigurationError{Source: path, Row: n, Err: err}
}

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(1))
}

// =============================================================================
// INCOME TAX TABLE - Progressive brackets
// =============================================================================

// IncomeTaxEntry is one bracket row. A nil UpTo is the unbounded sentinel
// that always matches last.
type IncomeTaxEntry struct {
	UpTo     *decimal.Decimal
	Rate     decimal.Decimal
	Subtract decimal.Decimal
}

type IncomeTaxTable struct {
	source  string
	entries []IncomeTaxEntry
}

// LoadIncomeTaxTable reads and validates a bracket table from CSV.
func LoadIncomeTaxTable(path string) (*IncomeTaxTable, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	table := &IncomeTaxTable{source: path}
	for _, r := range rows {
		upto, err := r.decimal("upto")
		if err != nil {
			return nil, rowError(path, r.n, err)
		}
		rate, err := r.decimal("rate")
		if err != nil {
			return nil, rowError(path, r.n, err)
		}
		subtract, err := r.decimal("subtract")
		if err != nil {
			return nil, rowError(path, r.n, err)
		}

		entry := IncomeTaxEntry{Rate: rate, Subtract: subtract}
		switch {
		case upto.Equal(decimal.NewFromInt(-1)):
			// unbounded sentinel
		case upto.IsNegative():
			return nil, rowError(path, r.n, fmt.Errorf("upto '%s' cannot be < 0", upto))
		default:
			bound := upto
			entry.UpTo = &bound
		}
		if !validRate(rate) {
			return nil, rowError(path, r.n, fmt.Errorf("rate '%s' must be between 0 and 1.0", rate))
		}
		if subtract.IsNegative() {
			return nil, rowError(path, r.n, fmt.Errorf("subtract '%s' cannot be < 0", subtract))
		}
		table.entries = append(table.entries, entry)
	}
	return table, nil
}

// Apply runs a taxable amount through the brackets: the first row whose
// upper bound covers it yields taxable*rate - subtract. No matching row
// yields zero.
func (t *IncomeTaxTable) Apply(taxable payroll.Money) payroll.Money {
	for _, entry := range t.entries {
		if entry.UpTo == nil || entry.UpTo.GreaterThanOrEqual(taxable.Amount) {
			return taxable.Mul(entry.Rate).Sub(payroll.NewMoney(entry.Subtract, taxable.Currency))
		}
	}
	return payroll.Zero(taxable.Currency)
}

func (t *IncomeTaxTable) Entries() []IncomeTaxEntry { return t.entries }

// =============================================================================
// CATEGORY RATE TABLE - Social security / maternity fund
// =============================================================================

// RateKind distinguishes fixed weekly amounts from wage-proportional rates.
type RateKind string

const (
	RateFixed        RateKind = "Fixed"
	RateProportional RateKind = "Rate"
)

// CategoryRateEntry is one category row. Rate holds the fixed amount for
// RateFixed, the proportion for RateProportional. Maximum caps either.
type CategoryRateEntry struct {
	Category payroll.SocialSecurityCategory
	Kind     RateKind
	Rate     decimal.Decimal
	Maximum  decimal.Decimal
}

type CategoryRateTable struct {
	source  string
	entries []CategoryRateEntry
}

// LoadCategoryRateTable reads and validates a category rate table from CSV.
func LoadCategoryRateTable(path string) (*CategoryRateTable, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	table := &CategoryRateTable{source: path}
	for _, r := range rows {
		rawCategory, err := r.get("category")
		if err != nil {
			return nil, rowError(path, r.n, err)
		}
		category := payroll.SocialSecurityCategory(rawCategory)
		if !category.Valid() {
			return nil, rowError(path, r.n, fmt.Errorf("invalid category %q", rawCategory))
		}

		rawKind, err := r.get("rate_type")
		if err != nil {
			return nil, rowError(path, r.n, err)
		}
		kind := RateKind(rawKind)
		if kind != RateFixed && kind != RateProportional {
			return nil, rowError(path, r.n, fmt.Errorf("rate_type must be one of: Fixed, Rate"))
		}

		rate, err := r.decimal("rate")
		if err != nil {
			return nil, rowError(path, r.n, err)
		}
		maximum, err := r.decimal("maximum")
		if err != nil {
			return nil, rowError(path, r.n, err)
		}

		if kind == RateProportional && !validRate(rate) {
			return nil, rowError(path, r.n, fmt.Errorf("rate '%s' must be between 0 and 1.0", rate))
		}
		if rate.IsNegative() {
			return nil, rowError(path, r.n, fmt.Errorf("rate '%s' cannot be < 0", rate))
		}
		if maximum.IsNegative() {
			return nil, rowError(path, r.n, fmt.Errorf("maximum '%s' cannot be < 0", maximum))
		}

		table.entries = append(table.entries, CategoryRateEntry{
			Category: category,
			Kind:     kind,
			Rate:     rate,
			Maximum:  maximum,
		})
	}
	return table, nil
}

// Apply returns the weekly contribution for a category: the fixed amount or
// weeklyWage*rate, capped at the row's maximum. A category with no row is a
// configuration error.
func (t *CategoryRateTable) Apply(category payroll.SocialSecurityCategory, weeklyWage payroll.Money) (payroll.Money, error) {
	for _, entry := range t.entries {
		if entry.Category != category {
			continue
		}
		var total payroll.Money
		if entry.Kind == RateFixed {
			total = payroll.NewMoney(entry.Rate, weeklyWage.Currency)
		} else {
			total = weeklyWage.Mul(entry.Rate)
		}
		return total.Min(payroll.NewMoney(entry.Maximum, weeklyWage.Currency)), nil
	}
	return payroll.Money{}, &payroll.ConfigurationError{
		Source: t.source,
		Err:    fmt.Errorf("%w: %s", payroll.ErrUnmatchedCategory, category),
	}
}

func (t *CategoryRateTable) Entries() []CategoryRateEntry { return t.entries }

// =============================================================================
// MONETARY BONUS TABLE - Statutory bonus by payout month
// =============================================================================

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// MonetaryBonusEntry is the statutory bonus paid out in a given month.
type MonetaryBonusEntry struct {
	Month time.Month
	Bonus decimal.Decimal
}

type MonetaryBonusTable struct {
	source  string
	entries []MonetaryBonusEntry
}

// LoadMonetaryBonusTable reads and validates a bonus table from CSV.
func LoadMonetaryBonusTable(path string) (*MonetaryBonusTable, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	table := &MonetaryBonusTable{source: path}
	for _, r := range rows {
		rawMonth, err := r.get("month")
		if err != nil {
			return nil, rowError(path, r.n, err)
		}
		month := time.Month(0)
		for i, name := range monthNames {
			if strings.EqualFold(rawMonth, name) {
				month = time.Month(i + 1)
				break
			}
		}
		if month == 0 {
			return nil, rowError(path, r.n, fmt.Errorf("invalid month %q", rawMonth))
		}

		bonus, err := r.decimal("bonus")
		if err != nil {
			return nil, rowError(path, r.n, err)
		}
		if bonus.IsNegative() {
			return nil, rowError(path, r.n, fmt.Errorf("bonus '%s' cannot be < 0", bonus))
		}

		table.entries = append(table.entries, MonetaryBonusEntry{Month: month, Bonus: bonus})
	}
	return table, nil
}

// Entries returns the rows in file order. First-match-wins scanning over
// the month key is the caller's responsibility.
func (t *MonetaryBonusTable) Entries() []MonetaryBonusEntry { return t.entries }
