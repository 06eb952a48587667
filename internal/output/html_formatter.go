package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"

	"github.com/rpgo/retirement-projector/internal/domain"
)

// HTMLFormatter produces a self-contained HTML report with a balance chart per scenario.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr": FormatCurrency,
	"rate": FormatRate,
	"pct":  FormatPercentage,
	"add":  func(i, j int) int { return i + j },
	"json": func(v interface{}) template.JS {
		b, _ := json.Marshal(v)
		return template.JS(b)
	},
}).Parse(htmlTemplateSource))

// chartSeries is the per-scenario data handed to the inline chart script.
type chartSeries struct {
	Name     string    `json:"name"`
	Years    []int     `json:"years"`
	Balances []float64 `json:"balances"`
}

func (h HTMLFormatter) Format(report *domain.ProjectionReport) ([]byte, error) {
	var buf bytes.Buffer

	series := make([]chartSeries, 0, len(report.Scenarios))
	for _, sc := range report.Scenarios {
		s := chartSeries{Name: sc.Name}
		for _, p := range sc.Schedule {
			s.Years = append(s.Years, p.Year)
			s.Balances = append(s.Balances, p.Balance.InexactFloat64())
		}
		series = append(series, s)
	}

	data := struct {
		*domain.ProjectionReport
		Recommendation Recommendation
		Assumptions    []string
		Chart          []chartSeries
	}{report, AnalyzeScenarios(report), assumptionsFor(report.Assumptions), series}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
