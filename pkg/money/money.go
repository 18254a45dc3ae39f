// Package money provides an exact fixed-point amount with two fractional
// digits. Amounts never pass through binary floats; parsing rejects input
// carrying more precision than the scale instead of truncating it.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every amount carries.
const Scale = 2

type Money struct {
	d decimal.Decimal
}

var Zero = Money{}

// Parse builds an amount from its decimal string form. Values with more than
// two meaningful fractional digits are rejected.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q", s)
	}

	if !d.Equal(d.Truncate(Scale)) {
		return Money{}, fmt.Errorf("amount %q has more than %d decimal places", s, Scale)
	}

	return Money{d: d}, nil
}

// MustParse is Parse for literals in tests and defaults.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromUnits builds an amount from whole units and cents (0..99).
func FromUnits(units int64, cents int64) (Money, error) {
	if cents < 0 || cents >= 100 {
		return Money{}, fmt.Errorf("cents out of range: %d", cents)
	}
	if units < 0 {
		return Money{}, fmt.Errorf("units must be non-negative: %d", units)
	}

	d := decimal.NewFromInt(units).Add(decimal.New(cents, -Scale))
	return Money{d: d}, nil
}

// FromDecimal wraps a decimal scanned from the database.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n))}
}

func (m Money) Cmp(o Money) int {
	return m.d.Cmp(o.d)
}

func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// String renders the amount with exactly two decimal places.
func (m Money) String() string {
	return m.d.StringFixed(Scale)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON string or a bare number token, so both
// {"price": "1000.00"} and {"price": 1000} decode.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*m = parsed
	return nil
}
