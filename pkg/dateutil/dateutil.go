package dateutil

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthsPerYear is the number of compounding periods in a year.
const MonthsPerYear = 12

var twelve = decimal.NewFromInt(MonthsPerYear)

// AgeInMonths returns the number of completed months between birthDate and atDate.
func AgeInMonths(birthDate, atDate time.Time) int {
	months := (atDate.Year()-birthDate.Year())*MonthsPerYear + int(atDate.Month()) - int(birthDate.Month())
	if atDate.Day() < birthDate.Day() {
		months--
	}
	return months
}

// FractionalAge returns the age in years at month precision, e.g. 34 years 6 months = 34.5.
func FractionalAge(birthDate, atDate time.Time) decimal.Decimal {
	return decimal.NewFromInt(int64(AgeInMonths(birthDate, atDate))).Div(twelve)
}

// MonthsRoundHalfUp converts a span in years to whole months, rounding half a month up.
// Negative spans round toward positive infinity as well, so -0.5 months is 0.
func MonthsRoundHalfUp(years decimal.Decimal) int {
	return int(years.Mul(twelve).Add(decimal.NewFromFloat(0.5)).Floor().IntPart())
}

// MonthsFloor converts a span in years to completed months.
func MonthsFloor(years decimal.Decimal) int {
	return int(years.Mul(twelve).Floor().IntPart())
}
