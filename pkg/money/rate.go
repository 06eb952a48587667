package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultAnnualInflation is the inflation assumed whenever a caller does not supply its own.
var DefaultAnnualInflation = decimal.NewFromFloat(0.02)

// EffectiveMonthlyRate converts an annual rate compounded once a year into the monthly rate
// that compounds to the same annual growth: (1 + annual)^(1/12) - 1.
// annual must be greater than -1.
func EffectiveMonthlyRate(annual float64) float64 {
	if annual == 0 {
		return 0
	}
	return math.Pow(1+annual, 1.0/12) - 1
}

// RealRate returns the inflation-adjusted rate (1 + nominal) / (1 + inflation) - 1.
func RealRate(nominal, inflation float64) float64 {
	if inflation == 0 {
		return nominal
	}
	return (1+nominal)/(1+inflation) - 1
}

// FromPercent converts a percentage (7.5) to a fraction (0.075).
func FromPercent(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}

// ToPercent converts a fraction (0.075) to a percentage (7.5).
func ToPercent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}

// ParsePercent parses "7", "7.5" or "7.5%" as a percentage and returns the fraction.
func ParsePercent(value string) (decimal.Decimal, error) {
	s := strings.TrimSuffix(strings.TrimSpace(value), "%")
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid percentage %q: %w", value, err)
	}
	return FromPercent(d), nil
}
