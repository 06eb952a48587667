package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary amount carried at full precision until it is rounded for output
type Money struct {
	decimal.Decimal
}

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// New creates a Money value from a float64 using its shortest decimal representation
func New(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// FromDecimal wraps a decimal.Decimal
func FromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Parse creates a Money value from a string such as "1250.50" or "$1,250.50"
func Parse(value string) (Money, error) {
	d, err := decimal.NewFromString(cleanNumber(value))
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// Cents rounds to two decimal places, halves away from zero.
func (m Money) Cents() Money {
	return Money{m.Decimal.Round(2)}
}

// Annual converts a monthly amount to annual
func (m Money) Annual() Money {
	return Money{m.Decimal.Mul(twelve)}
}

// Monthly converts an annual amount to monthly
func (m Money) Monthly() Money {
	return Money{m.Decimal.Div(twelve)}
}

// Float returns the nearest float64, for use in rate arithmetic
func (m Money) Float() float64 {
	return m.Decimal.InexactFloat64()
}

// Add adds another Money amount
func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}

// Sub subtracts another Money amount
func (m Money) Sub(other Money) Money {
	return Money{m.Decimal.Sub(other.Decimal)}
}

// Max returns the larger of two amounts
func Max(a, b Money) Money {
	if a.GreaterThan(b.Decimal) {
		return a
	}
	return b
}

// Zero returns a zero Money amount
func Zero() Money {
	return Money{decimal.Zero}
}

// String returns the amount with exactly two decimals
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// Format renders the amount as US currency with thousands separators, e.g. "$1,389,535.89".
func (m Money) Format() string {
	s := m.Decimal.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	if m.Decimal.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(whole) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(whole[:lead])
	for i := lead; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

func cleanNumber(value string) string {
	r := strings.NewReplacer("$", "", ",", "", "_", "", " ", "")
	return r.Replace(strings.TrimSpace(value))
}
