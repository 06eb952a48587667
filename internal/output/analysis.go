package output

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-projector/internal/domain"
)

// Recommendation encapsulates the selection result of the best funded scenario.
type Recommendation struct {
	ScenarioName  string
	Surplus       decimal.Decimal
	FundedPercent decimal.Decimal
}

// AnalyzeScenarios picks the scenario with the largest surplus of projected over required
// savings. FundedPercent is zero when nothing is required.
func AnalyzeScenarios(report *domain.ProjectionReport) Recommendation {
	if len(report.Scenarios) == 0 {
		return Recommendation{}
	}
	type ranked struct {
		name    string
		surplus decimal.Decimal
		res     domain.ProjectionResult
	}
	ranks := make([]ranked, 0, len(report.Scenarios))
	for _, sc := range report.Scenarios {
		ranks = append(ranks, ranked{sc.Name, sc.Result.TotalSavingsAtRetirement.Sub(sc.Result.RequiredSavings), sc.Result})
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].surplus.GreaterThan(ranks[j].surplus) })

	best := ranks[0]
	pct := decimal.Zero
	if !best.res.RequiredSavings.IsZero() {
		pct = best.res.TotalSavingsAtRetirement.Div(best.res.RequiredSavings).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return Recommendation{ScenarioName: best.name, Surplus: best.surplus, FundedPercent: pct}
}
