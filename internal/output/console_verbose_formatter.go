package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/rpgo/retirement-projector/internal/domain"
)

// ConsoleVerboseFormatter renders the detailed console report: assumptions, the projection
// breakdown and the accumulation schedule of every scenario.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(report *domain.ProjectionReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf, "DETAILED RETIREMENT SAVINGS PROJECTION")
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range assumptionsFor(report.Assumptions) {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	for i, sc := range report.Scenarios {
		fmt.Fprintf(&buf, "SCENARIO %d: %s\n", i+1, sc.Name)
		fmt.Fprintln(&buf, strings.Repeat("=", 50))
		writeScenarioDetail(&buf, sc)
		fmt.Fprintln(&buf)
	}

	rec := AnalyzeScenarios(report)
	if rec.ScenarioName != "" {
		fmt.Fprintln(&buf, "RECOMMENDATION")
		fmt.Fprintln(&buf, strings.Repeat("=", 50))
		fmt.Fprintf(&buf, "Best funded scenario: %s\n", rec.ScenarioName)
		fmt.Fprintf(&buf, "Surplus at retirement: %s (%s of required savings)\n", FormatCurrency(rec.Surplus), FormatPercentage(rec.FundedPercent))
	}
	return buf.Bytes(), nil
}

func writeScenarioDetail(w io.Writer, sc domain.ScenarioResult) {
	in, r, b := sc.Input, sc.Result, sc.Result.Breakdown

	fmt.Fprintf(w, "Ages: current %s, retire at %s, plan to %s\n", in.CurrentAge.StringFixed(2), in.RetirementAge.StringFixed(2), in.LifeExpectancy.StringFixed(2))
	fmt.Fprintf(w, "Months to retirement: %d   Months in retirement: %d\n", b.MonthsToRetirement, b.MonthsInRetirement)
	fmt.Fprintf(w, "Current savings:      %s\n", FormatCurrency(in.CurrentSavings))
	fmt.Fprintf(w, "Monthly contribution: %s\n", FormatCurrency(in.MonthlyContribution))
	fmt.Fprintf(w, "Annual return:        %s\n", FormatRate(in.AnnualReturnRate))
	fmt.Fprintf(w, "Inflation used:       %s\n", FormatRate(b.InflationRateUsed))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Growth of current savings: %s\n", FormatCurrency(b.FutureValueCurrentSavings))
	fmt.Fprintf(w, "  Growth of contributions:   %s\n", FormatCurrency(b.FutureValueContributions))
	fmt.Fprintf(w, "  Projected at retirement:   %s\n", FormatCurrency(r.TotalSavingsAtRetirement))
	fmt.Fprintf(w, "  First monthly withdrawal:  %s\n", FormatCurrency(b.MonthlyWithdrawal))
	fmt.Fprintf(w, "  Required at retirement:    %s\n", FormatCurrency(r.RequiredSavings))
	if r.IsSufficient {
		fmt.Fprintln(w, "  Status: ON TRACK")
	} else {
		fmt.Fprintf(w, "  Status: SHORTFALL of %s\n", FormatCurrency(r.Shortfall))
	}

	if len(sc.Schedule) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-6s %18s\n", "Year", "Balance")
	for _, p := range sc.Schedule {
		fmt.Fprintf(w, "  %-6d %18s\n", p.Year, FormatCurrency(p.Balance))
	}
}
