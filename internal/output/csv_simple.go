package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/retirement-projector/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per scenario).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *domain.ProjectionReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Scenario", "CurrentAge", "RetirementAge", "LifeExpectancy", "MonthsToRetirement", "MonthsInRetirement", "TotalSavingsAtRetirement", "RequiredSavings", "Shortfall", "IsSufficient", "InflationAdjusted"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, sc := range sortedScenarios(report) {
		row := []string{
			sc.Name,
			sc.Input.CurrentAge.StringFixed(2),
			sc.Input.RetirementAge.StringFixed(2),
			sc.Input.LifeExpectancy.StringFixed(2),
			intToString(sc.Result.Breakdown.MonthsToRetirement),
			intToString(sc.Result.Breakdown.MonthsInRetirement),
			sc.Result.TotalSavingsAtRetirement.StringFixed(2),
			sc.Result.RequiredSavings.StringFixed(2),
			sc.Result.Shortfall.StringFixed(2),
			boolToString(sc.Result.IsSufficient),
			boolToString(sc.Result.InflationAdjustmentEnabled),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
