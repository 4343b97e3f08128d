package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a signed decimal quantity with at least 2 fractional digits of
// precision. Arithmetic is exact; division (VAT splitting) rounds
// half-away-from-zero at the cent, matching decimal.Decimal's default
// rounding mode.
type Money struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{d: decimal.Zero}

// NewMoney builds a Money from a float (used for literal test fixtures and
// pattern amounts coming off the wire as JSON numbers).
func NewMoney(amount float64) Money {
	return Money{d: decimal.NewFromFloat(amount).Round(2)}
}

// MoneyFromDecimal wraps an already-computed decimal.Decimal, rounding it
// to the cent.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// NewMoneyFromString parses a decimal literal such as "1234.56".
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{d: d.Round(2)}, nil
}

func (m Money) Add(other Money) Money     { return Money{d: m.d.Add(other.d)} }
func (m Money) Sub(other Money) Money     { return Money{d: m.d.Sub(other.d)} }
func (m Money) Neg() Money                { return Money{d: m.d.Neg()} }
func (m Money) Abs() Money                { return Money{d: m.d.Abs()} }
func (m Money) MulInt(n int64) Money      { return Money{d: m.d.Mul(decimal.NewFromInt(n))} }
func (m Money) IsZero() bool              { return m.d.IsZero() }
func (m Money) IsPositive() bool          { return m.d.IsPositive() }
func (m Money) IsNegative() bool          { return m.d.IsNegative() }
func (m Money) Float64() float64          { f, _ := m.d.Float64(); return f }
func (m Money) String() string            { return m.d.StringFixed(2) }
func (m Money) Decimal() decimal.Decimal  { return m.d }

// MulRate multiplies by a decimal fraction (e.g. a VAT rate of 0.20) and
// rounds to the cent, half-away-from-zero.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{d: m.d.Mul(rate).Round(2)}
}

// DivRate divides by (1 + rate) and rounds to the cent.
func (m Money) DivRate(onePlusRate decimal.Decimal) Money {
	return Money{d: m.d.Div(onePlusRate).Round(2)}
}

// Equal01 reports whether two Money values are within 0.01 of each other,
// the tolerance every invariant in this engine is checked against.
func (m Money) Equal01(other Money) bool {
	delta := m.d.Sub(other.d).Abs()
	return delta.LessThanOrEqual(decimal.NewFromFloat(0.01))
}

// MarshalJSON renders Money as a plain decimal number, e.g. 1234.56.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.d = d.Round(2)
	return nil
}
