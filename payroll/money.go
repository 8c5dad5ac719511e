package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point decimal amount tagged with a currency
// =============================================================================

// Money is a decimal amount in a single currency. Arithmetic never rounds
// implicitly; callers apply Round at the points the calculation rules state
// (2 fractional digits for currency amounts, 0 for income tax).
//
// All arithmetic assumes both operands share a currency. A payroll run is
// single-currency, so mixing currencies is a programming error.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns the additive identity in the given currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// MustParseDecimal parses a decimal literal, returning zero on bad input.
// Intended for constants and tests.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Decimal is a decimal.Decimal that serializes to YAML as its string form.
// The YAML codec never invokes text marshalling on decode, so persisted
// decimal fields use this wrapper instead of the bare type.
type Decimal struct {
	decimal.Decimal
}

func NewDecimal(d decimal.Decimal) Decimal { return Decimal{Decimal: d} }

func (d Decimal) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Decimal) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", raw, err)
	}
	d.Decimal = parsed
	return nil
}

func (m Money) Add(o Money) Money { return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency} }
func (m Money) Sub(o Money) Money { return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency} }
func (m Money) Mul(s decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(s), Currency: m.Currency}
}
func (m Money) MulInt(n int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(n))), Currency: m.Currency}
}
func (m Money) Neg() Money { return Money{Amount: m.Amount.Neg(), Currency: m.Currency} }

// Round applies banker's rounding to the given number of fractional digits.
func (m Money) Round(places int32) Money {
	return Money{Amount: m.Amount.RoundBank(places), Currency: m.Currency}
}

func (m Money) IsZero() bool             { return m.Amount.IsZero() }
func (m Money) IsNegative() bool         { return m.Amount.IsNegative() }
func (m Money) IsPositive() bool         { return m.Amount.IsPositive() }
func (m Money) Equal(o Money) bool       { return m.Currency == o.Currency && m.Amount.Equal(o.Amount) }
func (m Money) GreaterThan(o Money) bool { return m.Amount.GreaterThan(o.Amount) }
func (m Money) LessThan(o Money) bool    { return m.Amount.LessThan(o.Amount) }

func (m Money) Max(o Money) Money {
	if m.GreaterThan(o) {
		return m
	}
	return o
}

func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

// String formats as "1234.56 EUR".
func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

// MarshalYAML serializes Money as "amount currency", e.g. "1234.56 EUR".
func (m Money) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML accepts "amount currency" or a bare decimal (currency left
// empty for the caller to fill from context).
func (m *Money) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	fields := strings.Fields(raw)
	switch len(fields) {
	case 1:
		amount, err := decimal.NewFromString(fields[0])
		if err != nil {
			return fmt.Errorf("invalid monetary amount %q: %w", raw, err)
		}
		m.Amount = amount
	case 2:
		amount, err := decimal.NewFromString(fields[0])
		if err != nil {
			return fmt.Errorf("invalid monetary amount %q: %w", raw, err)
		}
		m.Amount = amount
		m.Currency = fields[1]
	default:
		return fmt.Errorf("invalid monetary value %q", raw)
	}
	return nil
}
