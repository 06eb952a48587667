package calculation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-projector/internal/domain"
	"github.com/rpgo/retirement-projector/pkg/dateutil"
	"github.com/rpgo/retirement-projector/pkg/money"
)

// CalculationEngine runs retirement projections. It holds no per-call state and may be shared
// between goroutines once configured.
type CalculationEngine struct {
	// DefaultInflationRate is used whenever inflation adjustment is disabled.
	DefaultInflationRate decimal.Decimal
	Logger               Logger
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{
		DefaultInflationRate: money.DefaultAnnualInflation,
		Logger:               NopLogger{},
	}
}

// SetLogger sets the logger for the calculation engine. If nil is provided, a no-op logger is used.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

var defaultEngine = NewCalculationEngine()

// Project runs a projection with the default engine.
func Project(in domain.ProjectionInput) (domain.ProjectionResult, error) {
	return defaultEngine.Project(in)
}

// Project computes the savings at retirement and the savings required to fund the desired income
// through life expectancy. Months to retirement are rounded half up; months in retirement are
// truncated. Invalid input returns an error wrapping domain.ErrInvalidInput and no result.
func (ce *CalculationEngine) Project(in domain.ProjectionInput) (domain.ProjectionResult, error) {
	return ce.project(in, ce.Logger)
}

func (ce *CalculationEngine) project(in domain.ProjectionInput, log Logger) (domain.ProjectionResult, error) {
	if err := in.Validate(); err != nil {
		return domain.ProjectionResult{}, err
	}

	inflationRate := ce.DefaultInflationRate
	if in.InflationAdjustmentEnabled {
		inflationRate = in.AnnualInflationRate
		log.Debugf("Using custom inflation rate: %s%%", money.ToPercent(inflationRate).String())
	} else {
		log.Debugf("Using default inflation rate: %s%%", money.ToPercent(inflationRate).String())
	}

	monthlyReturn := money.EffectiveMonthlyRate(in.AnnualReturnRate.InexactFloat64())
	monthlyInflation := money.EffectiveMonthlyRate(inflationRate.InexactFloat64())
	log.Debugf("Monthly return rate: %v, monthly inflation rate: %v", monthlyReturn, monthlyInflation)

	monthsToRetirement := dateutil.MonthsRoundHalfUp(in.RetirementAge.Sub(in.CurrentAge))
	if monthsToRetirement < 0 {
		return domain.ProjectionResult{}, domain.InvalidField("retirement_age", "is before current age")
	}

	fvSavings := FutureValueLumpSum(in.CurrentSavings.InexactFloat64(), monthlyReturn, monthsToRetirement)
	fvContributions := FutureValueAnnuity(in.MonthlyContribution.InexactFloat64(), monthlyReturn, monthsToRetirement)
	totalSavings := fvSavings + fvContributions
	log.Debugf("Months to retirement: %d, FV savings: %.2f, FV contributions: %.2f, total: %.2f",
		monthsToRetirement, fvSavings, fvContributions, totalSavings)

	monthsInRetirement := dateutil.MonthsFloor(in.LifeExpectancy.Sub(in.RetirementAge))
	if monthsInRetirement < 0 {
		monthsInRetirement = 0
	}
	monthlyWithdrawal := in.DesiredAnnualIncome.InexactFloat64() / dateutil.MonthsPerYear
	required := PresentValueGrowingAnnuity(monthlyWithdrawal, monthlyReturn, monthlyInflation, monthsInRetirement)
	log.Debugf("Months in retirement: %d, monthly withdrawal: %.2f, required savings: %.2f",
		monthsInRetirement, monthlyWithdrawal, required)

	if err := finite(
		check{"annual_return_rate", monthlyReturn},
		check{"annual_inflation_rate", monthlyInflation},
		check{"current_savings", fvSavings},
		check{"monthly_contribution", fvContributions},
		check{"current_savings", totalSavings},
		check{"desired_annual_income", monthlyWithdrawal},
		check{"desired_annual_income", required},
	); err != nil {
		return domain.ProjectionResult{}, err
	}

	total := money.New(totalSavings).Cents()
	req := money.New(required).Cents()
	shortfall := money.Max(money.Zero(), req.Sub(total))

	return domain.ProjectionResult{
		TotalSavingsAtRetirement:   total.Decimal,
		RequiredSavings:            req.Decimal,
		IsSufficient:               shortfall.IsZero(),
		Shortfall:                  shortfall.Decimal,
		InflationAdjustmentEnabled: in.InflationAdjustmentEnabled,
		Breakdown: domain.ProjectionBreakdown{
			MonthsToRetirement:        monthsToRetirement,
			MonthsInRetirement:        monthsInRetirement,
			MonthlyReturnRate:         decimal.NewFromFloat(monthlyReturn),
			MonthlyInflationRate:      decimal.NewFromFloat(monthlyInflation),
			InflationRateUsed:         inflationRate,
			FutureValueCurrentSavings: money.New(fvSavings).Cents().Decimal,
			FutureValueContributions:  money.New(fvContributions).Cents().Decimal,
			MonthlyWithdrawal:         money.New(monthlyWithdrawal).Cents().Decimal,
		},
	}, nil
}

type check struct {
	field string
	v     float64
}

// finite rejects the first value that overflowed to ±Inf or became NaN, blaming its field.
// Decimal conversion panics on either.
func finite(checks ...check) error {
	for _, c := range checks {
		if math.IsInf(c.v, 0) || math.IsNaN(c.v) {
			return domain.InvalidField(c.field, "produces a non-finite amount")
		}
	}
	return nil
}

// RunScenarios projects every scenario in the configuration. inflationEnabled is the resolved
// flag value applied to all of them.
func (ce *CalculationEngine) RunScenarios(config *domain.Configuration, inflationEnabled bool) (*domain.ProjectionReport, error) {
	at := nowFunc()
	results := make([]domain.ScenarioResult, 0, len(config.Scenarios))

	for _, scenario := range config.Scenarios {
		in, err := scenario.Resolve(config.GlobalAssumptions, at, inflationEnabled)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		res, err := ce.project(in, withScenario(ce.Logger, scenario.Name))
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		results = append(results, domain.ScenarioResult{
			Name:     scenario.Name,
			Input:    in,
			Result:   res,
			Schedule: AccumulationSchedule(in),
		})
	}

	return &domain.ProjectionReport{
		GeneratedAt:                at,
		InflationAdjustmentEnabled: inflationEnabled,
		Scenarios:                  results,
		Assumptions:                GenerateAssumptions(config.GlobalAssumptions, inflationEnabled, ce.DefaultInflationRate),
	}, nil
}

// GenerateAssumptions creates the assumptions list rendered alongside a report.
func GenerateAssumptions(ga domain.GlobalAssumptions, inflationEnabled bool, defaultInflation decimal.Decimal) []string {
	inflation := fmt.Sprintf("Inflation: %s%% annually (default; adjustment disabled)", money.ToPercent(defaultInflation).StringFixed(1))
	if inflationEnabled {
		inflation = fmt.Sprintf("Inflation: %s%% annually (adjustment enabled)", money.ToPercent(ga.AnnualInflationRate).StringFixed(1))
	}
	return []string{
		fmt.Sprintf("Investment return: %s%% annually, compounded monthly", money.ToPercent(ga.AnnualReturnRate).StringFixed(1)),
		inflation,
		fmt.Sprintf("Life expectancy: %s", ga.LifeExpectancy.String()),
		"Contributions are made at the end of each month until retirement",
		"Withdrawals start at retirement and grow with inflation",
	}
}
