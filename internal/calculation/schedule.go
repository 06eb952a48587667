package calculation

import (
	"github.com/rpgo/retirement-projector/internal/domain"
	"github.com/rpgo/retirement-projector/pkg/dateutil"
	"github.com/rpgo/retirement-projector/pkg/money"
)

// AccumulationSchedule returns the balance at the end of each year until retirement, the last
// (possibly partial) year ending at retirement. The input is assumed valid.
func AccumulationSchedule(in domain.ProjectionInput) []domain.GrowthPoint {
	months := dateutil.MonthsRoundHalfUp(in.RetirementAge.Sub(in.CurrentAge))
	rate := money.EffectiveMonthlyRate(in.AnnualReturnRate.InexactFloat64())
	savings := in.CurrentSavings.InexactFloat64()
	contribution := in.MonthlyContribution.InexactFloat64()

	points := make([]domain.GrowthPoint, 0, (months+dateutil.MonthsPerYear-1)/dateutil.MonthsPerYear)
	for year := 1; (year-1)*dateutil.MonthsPerYear < months; year++ {
		m := year * dateutil.MonthsPerYear
		if m > months {
			m = months
		}
		balance := FutureValueLumpSum(savings, rate, m) + FutureValueAnnuity(contribution, rate, m)
		points = append(points, domain.GrowthPoint{Year: year, Balance: money.New(balance).Cents().Decimal})
	}
	return points
}
