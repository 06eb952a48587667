package output

import (
	"bytes"
	"fmt"

	"github.com/rpgo/retirement-projector/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(report *domain.ProjectionReport) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "RETIREMENT PROJECTION SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Inflation adjustment: %s\n", enabledLabel(report.InflationAdjustmentEnabled))
	fmt.Fprintln(&buf)
	for _, sc := range sortedScenarios(report) {
		r := sc.Result
		fmt.Fprintf(&buf, "%s: Projected=%s Required=%s Shortfall=%s %s\n",
			sc.Name,
			FormatCurrency(r.TotalSavingsAtRetirement),
			FormatCurrency(r.RequiredSavings),
			FormatCurrency(r.Shortfall),
			verdict(r.IsSufficient),
		)
	}
	rec := AnalyzeScenarios(report)
	if rec.ScenarioName != "" {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Best funded: %s (surplus %s, %s funded)\n", rec.ScenarioName, FormatCurrency(rec.Surplus), FormatPercentage(rec.FundedPercent))
	}
	return buf.Bytes(), nil
}

func enabledLabel(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func verdict(sufficient bool) string {
	if sufficient {
		return "ON TRACK"
	}
	return "SHORTFALL"
}
