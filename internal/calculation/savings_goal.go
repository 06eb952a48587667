package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-projector/internal/domain"
	"github.com/rpgo/retirement-projector/pkg/money"
)

// PlanSavingsGoal solves for the level yearly contribution, paid at the end of each year, that
// grows to the target. With inflation adjustment enabled the target is read in today's dollars
// and grown to its nominal value first.
func (ce *CalculationEngine) PlanSavingsGoal(in domain.SavingsGoalInput) (domain.SavingsGoalResult, error) {
	if err := in.Validate(); err != nil {
		return domain.SavingsGoalResult{}, err
	}

	rate := in.AnnualReturnRate.InexactFloat64()
	target := in.TargetAmount.InexactFloat64()
	if in.InflationAdjustmentEnabled {
		target = FutureValueLumpSum(target, in.AnnualInflationRate.InexactFloat64(), in.Years)
		ce.Logger.Debugf("Inflation-adjusted target: %.2f", target)
	}

	payment := SinkingFundPayment(target, rate, in.Years)
	if err := finite(
		check{"target_amount", target},
		check{"annual_return_rate", payment},
		check{"target_amount", payment * float64(in.Years)},
	); err != nil {
		return domain.SavingsGoalResult{}, err
	}
	schedule := GrowthSchedule(payment, rate, in.Years)
	ce.Logger.Debugf("Annual contribution for %.2f over %d years at %v: %.2f", target, in.Years, rate, payment)

	contributed := money.New(payment).Cents().Mul(decimal.NewFromInt(int64(in.Years)))
	adjusted := money.New(target).Cents()
	final := adjusted.Decimal
	if n := len(schedule); n > 0 {
		final = schedule[n-1].Balance
	}

	return domain.SavingsGoalResult{
		TargetAmount:               money.FromDecimal(in.TargetAmount).Cents().Decimal,
		AdjustedTarget:             adjusted.Decimal,
		AnnualContribution:         money.New(payment).Cents().Decimal,
		MonthlyEquivalent:          money.New(payment).Monthly().Cents().Decimal,
		TotalContributed:           contributed,
		InvestmentGrowth:           final.Sub(contributed),
		InflationAdjustmentEnabled: in.InflationAdjustmentEnabled,
		Growth:                     schedule,
	}, nil
}

// GrowthSchedule returns the balance at the end of each year when payment is added at the end of
// every year: balance = balance * (1 + rate) + payment.
func GrowthSchedule(payment, rate float64, years int) []domain.GrowthPoint {
	points := make([]domain.GrowthPoint, 0, years)
	balance := 0.0
	for year := 1; year <= years; year++ {
		balance = balance*(1+rate) + payment
		points = append(points, domain.GrowthPoint{Year: year, Balance: money.New(balance).Cents().Decimal})
	}
	return points
}

// ProjectAnnualSavings grows a fixed deposit made at the start of every year. With inflation
// adjustment enabled the real rate is used, so the result is in today's dollars.
func (ce *CalculationEngine) ProjectAnnualSavings(in domain.AnnualSavingsInput) (domain.AnnualSavingsResult, error) {
	if err := in.Validate(); err != nil {
		return domain.AnnualSavingsResult{}, err
	}

	rate := in.AnnualReturnRate.InexactFloat64()
	if in.InflationAdjustmentEnabled {
		rate = money.RealRate(rate, in.AnnualInflationRate.InexactFloat64())
	}

	deposit := in.AnnualDeposit.InexactFloat64()
	fv := 0.0
	for y := 0; y < in.Years; y++ {
		fv = (fv + deposit) * (1 + rate)
	}
	if err := finite(check{"annual_return_rate", fv}); err != nil {
		return domain.AnnualSavingsResult{}, err
	}

	return domain.AnnualSavingsResult{
		FutureValue:                money.New(fv).Cents().Decimal,
		TotalDeposited:             in.AnnualDeposit.Mul(decimal.NewFromInt(int64(in.Years))),
		EffectiveRate:              decimal.NewFromFloat(rate).Round(6),
		InflationAdjustmentEnabled: in.InflationAdjustmentEnabled,
	}, nil
}
