package output

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-projector/pkg/money"
)

// FormatCurrency formats a decimal as USD currency with thousands separators and 2 decimals.
// Kept here so it can be reused by multiple formatters and unit tested in isolation.
func FormatCurrency(amount decimal.Decimal) string { return money.FromDecimal(amount).Format() }

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// FormatRate formats a fractional rate (0.07) as a percentage ("7.00%").
func FormatRate(rate decimal.Decimal) string { return FormatPercentage(money.ToPercent(rate)) }

func intToString(i int) string { return strconv.Itoa(i) }

func boolToString(b bool) string { return strconv.FormatBool(b) }

func decimalFromInt(i int) decimal.Decimal { return decimal.NewFromInt(int64(i)) }
