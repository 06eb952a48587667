package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/retirement-projector/internal/domain"
)

// CSVDetailedExporter writes the year-by-year accumulation schedule of every scenario.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(report *domain.ProjectionReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Scenario", "Year", "Age", "Balance"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, sc := range sortedScenarios(report) {
		for _, p := range sc.Schedule {
			age := sc.Input.CurrentAge.Add(decimalFromInt(p.Year))
			if age.GreaterThan(sc.Input.RetirementAge) {
				age = sc.Input.RetirementAge
			}
			row := []string{
				sc.Name,
				intToString(p.Year),
				age.StringFixed(2),
				p.Balance.StringFixed(2),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
