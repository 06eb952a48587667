package calculation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-projector/internal/domain"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func baselineInput() domain.ProjectionInput {
	return domain.ProjectionInput{
		CurrentAge:          dec(30),
		RetirementAge:       dec(65),
		LifeExpectancy:      dec(90),
		CurrentSavings:      dec(50000),
		MonthlyContribution: dec(500),
		DesiredAnnualIncome: dec(60000),
		AnnualReturnRate:    dec(0.07),
		AnnualInflationRate: dec(0.03),
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msgAndArgs...)
}

// TestProjectRegressionFixtures locks in the projection results for known inputs.
func TestProjectRegressionFixtures(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*domain.ProjectionInput)
		total      string
		required   string
		shortfall  string
		sufficient bool
	}{
		{
			name:       "baseline, default 2% inflation",
			mutate:     func(*domain.ProjectionInput) {},
			total:      "1389535.89",
			required:   "876519.01",
			shortfall:  "0.00",
			sufficient: true,
		},
		{
			name:       "baseline, 3% inflation enabled",
			mutate:     func(in *domain.ProjectionInput) { in.InflationAdjustmentEnabled = true },
			total:      "1389535.89",
			required:   "968820.81",
			shortfall:  "0.00",
			sufficient: true,
		},
		{
			name:       "zero return",
			mutate:     func(in *domain.ProjectionInput) { in.AnnualReturnRate = decimal.Zero },
			total:      "260000.00",
			required:   "1939371.66",
			shortfall:  "1679371.66",
			sufficient: false,
		},
		{
			name: "mid career saver",
			mutate: func(in *domain.ProjectionInput) {
				in.CurrentAge = dec(40)
				in.RetirementAge = dec(67)
				in.LifeExpectancy = dec(92)
				in.CurrentSavings = dec(250000)
				in.MonthlyContribution = dec(2000)
				in.DesiredAnnualIncome = dec(80000)
				in.AnnualReturnRate = dec(0.06)
				in.AnnualInflationRate = dec(0.025)
				in.InflationAdjustmentEnabled = true
			},
			total:      "2776128.34",
			required:   "1355310.02",
			shortfall:  "0.00",
			sufficient: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baselineInput()
			tt.mutate(&in)

			res, err := Project(in)
			require.NoError(t, err)
			assertMoney(t, tt.total, res.TotalSavingsAtRetirement, "total savings")
			assertMoney(t, tt.required, res.RequiredSavings, "required savings")
			assertMoney(t, tt.shortfall, res.Shortfall, "shortfall")
			assert.Equal(t, tt.sufficient, res.IsSufficient)
			assert.Equal(t, in.InflationAdjustmentEnabled, res.InflationAdjustmentEnabled)
		})
	}
}

func TestProjectBreakdown(t *testing.T) {
	res, err := Project(baselineInput())
	require.NoError(t, err)

	b := res.Breakdown
	assert.Equal(t, 420, b.MonthsToRetirement)
	assert.Equal(t, 300, b.MonthsInRetirement)
	assertMoney(t, "5000.00", b.MonthlyWithdrawal)
	assert.True(t, b.InflationRateUsed.Equal(dec(0.02)), "default inflation expected, got %s", b.InflationRateUsed)
	assert.InDelta(t, 0.005654145387405274, b.MonthlyReturnRate.InexactFloat64(), 1e-15)
	assert.InDelta(t, 0.0016515813019202241, b.MonthlyInflationRate.InexactFloat64(), 1e-15)
	assert.True(t, b.FutureValueCurrentSavings.Add(b.FutureValueContributions).Sub(res.TotalSavingsAtRetirement).Abs().LessThanOrEqual(dec(0.01)))
}

func TestProjectZeroReturnContributionsAreExact(t *testing.T) {
	in := baselineInput()
	in.AnnualReturnRate = decimal.Zero
	in.CurrentSavings = decimal.Zero
	in.MonthlyContribution = dec(123.45)

	res, err := Project(in)
	require.NoError(t, err)

	want := dec(123.45).Mul(decimal.NewFromInt(420))
	assert.True(t, res.Breakdown.FutureValueContributions.Equal(want), "got %s want %s", res.Breakdown.FutureValueContributions, want)
	assert.True(t, res.TotalSavingsAtRetirement.Equal(want))
}

func TestProjectShortfallConsistency(t *testing.T) {
	for _, contribution := range []float64{0, 100, 250, 500, 1000, 2500} {
		for _, income := range []float64{0, 30000, 60000, 120000} {
			in := baselineInput()
			in.MonthlyContribution = dec(contribution)
			in.DesiredAnnualIncome = dec(income)

			res, err := Project(in)
			require.NoError(t, err)

			expected := res.RequiredSavings.Sub(res.TotalSavingsAtRetirement)
			if expected.IsNegative() {
				expected = decimal.Zero
			}
			label := fmt.Sprintf("contribution=%v income=%v", contribution, income)
			assert.True(t, res.Shortfall.Equal(expected), label)
			assert.Equal(t, res.Shortfall.IsZero(), res.IsSufficient, label)
			assert.Equal(t, res.TotalSavingsAtRetirement.GreaterThanOrEqual(res.RequiredSavings), res.IsSufficient, label)
		}
	}
}

func TestProjectMonotonicInContribution(t *testing.T) {
	prev := decimal.NewFromInt(-1)
	for c := 0; c <= 5000; c += 250 {
		in := baselineInput()
		in.MonthlyContribution = decimal.NewFromInt(int64(c))
		res, err := Project(in)
		require.NoError(t, err)
		assert.True(t, res.TotalSavingsAtRetirement.GreaterThanOrEqual(prev), "contribution %d decreased savings", c)
		prev = res.TotalSavingsAtRetirement
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	in := baselineInput()
	first, err := Project(in)
	require.NoError(t, err)
	second, err := Project(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProjectInflationToggleRaisesRequiredSavings(t *testing.T) {
	for _, rate := range []float64{0.021, 0.03, 0.05, 0.08} {
		in := baselineInput()
		in.AnnualInflationRate = dec(rate)

		off, err := Project(in)
		require.NoError(t, err)
		in.InflationAdjustmentEnabled = true
		on, err := Project(in)
		require.NoError(t, err)

		assert.True(t, on.RequiredSavings.GreaterThan(off.RequiredSavings), "inflation %v: %s <= %s", rate, on.RequiredSavings, off.RequiredSavings)
		assert.True(t, on.TotalSavingsAtRetirement.Equal(off.TotalSavingsAtRetirement))
	}
}

func TestProjectReturnEqualsInflation(t *testing.T) {
	in := baselineInput()
	in.AnnualReturnRate = dec(0.03)
	in.InflationAdjustmentEnabled = true

	res, err := Project(in)
	require.NoError(t, err)
	// Each withdrawal is discounted exactly as much as it grows.
	assertMoney(t, "1500000.00", res.RequiredSavings)
}

func TestProjectRetiringNow(t *testing.T) {
	in := baselineInput()
	in.RetirementAge = in.CurrentAge

	res, err := Project(in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Breakdown.MonthsToRetirement)
	assertMoney(t, "50000.00", res.TotalSavingsAtRetirement)
}

func TestProjectNoRetirementMonths(t *testing.T) {
	in := baselineInput()
	in.LifeExpectancy = in.RetirementAge

	res, err := Project(in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Breakdown.MonthsInRetirement)
	assert.True(t, res.RequiredSavings.IsZero())
	assert.True(t, res.IsSufficient)
}

func TestProjectFractionalAgesRounding(t *testing.T) {
	in := baselineInput()
	in.CurrentAge = dec(30.04)     // 34.96 years to go = 419.52 months -> 420
	in.LifeExpectancy = dec(90.99) // 25.99 years = 311.88 months -> 311

	res, err := Project(in)
	require.NoError(t, err)
	assert.Equal(t, 420, res.Breakdown.MonthsToRetirement)
	assert.Equal(t, 311, res.Breakdown.MonthsInRetirement)
}

func TestProjectInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ProjectionInput)
	}{
		{"retirement before current age", func(in *domain.ProjectionInput) { in.RetirementAge = dec(25) }},
		{"return of -100%", func(in *domain.ProjectionInput) { in.AnnualReturnRate = dec(-1) }},
		{"return below -100%", func(in *domain.ProjectionInput) { in.AnnualReturnRate = dec(-2) }},
		{"enabled inflation of -100%", func(in *domain.ProjectionInput) {
			in.InflationAdjustmentEnabled = true
			in.AnnualInflationRate = dec(-1)
		}},
		{"negative age", func(in *domain.ProjectionInput) { in.CurrentAge = dec(-5) }},
		{"negative savings", func(in *domain.ProjectionInput) { in.CurrentSavings = dec(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baselineInput()
			tt.mutate(&in)

			res, err := Project(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			assert.Equal(t, domain.ProjectionResult{}, res, "no partial result")
		})
	}
}

func TestProjectRejectsOverflow(t *testing.T) {
	huge := decimal.RequireFromString("1e400")

	tests := []struct {
		name   string
		mutate func(*domain.ProjectionInput)
		field  string
	}{
		{"savings beyond float range", func(in *domain.ProjectionInput) { in.CurrentSavings = huge }, "current_savings"},
		{"contribution beyond float range", func(in *domain.ProjectionInput) { in.MonthlyContribution = huge }, "monthly_contribution"},
		{"income beyond float range", func(in *domain.ProjectionInput) { in.DesiredAnnualIncome = huge }, "desired_annual_income"},
		{"life expectancy past the age ceiling", func(in *domain.ProjectionInput) { in.LifeExpectancy = dec(100000) }, "life_expectancy"},
		{"current age past the age ceiling", func(in *domain.ProjectionInput) {
			in.CurrentAge = dec(151)
			in.RetirementAge = dec(151)
			in.LifeExpectancy = dec(151)
		}, "current_age"},
		{"runaway inflation over a maximal retirement", func(in *domain.ProjectionInput) {
			in.CurrentAge = dec(0)
			in.RetirementAge = dec(0)
			in.LifeExpectancy = dec(domain.MaxAge)
			in.AnnualReturnRate = dec(0)
			in.AnnualInflationRate = dec(1000)
			in.InflationAdjustmentEnabled = true
		}, "desired_annual_income"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baselineInput()
			tt.mutate(&in)

			var res domain.ProjectionResult
			var err error
			require.NotPanics(t, func() { res, err = Project(in) })
			require.Error(t, err)
			assert.True(t, domain.IsInvalidInput(err))
			var inputErr *domain.InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
			assert.Equal(t, domain.ProjectionResult{}, res)
		})
	}
}

func TestProjectAtAgeCeiling(t *testing.T) {
	in := baselineInput()
	in.LifeExpectancy = dec(domain.MaxAge)

	res, err := Project(in)
	require.NoError(t, err)
	assert.Equal(t, (domain.MaxAge-65)*12, res.Breakdown.MonthsInRetirement)
}

func TestProjectNegativeReturnAboveLimit(t *testing.T) {
	in := baselineInput()
	in.AnnualReturnRate = dec(-0.05)

	res, err := Project(in)
	require.NoError(t, err)
	assert.True(t, res.TotalSavingsAtRetirement.LessThan(dec(50000+500*420)))
	assert.False(t, res.IsSufficient)
}

type recordingLogger struct {
	NopLogger
	debug []string
}

func (r *recordingLogger) Debugf(format string, args ...any) {
	r.debug = append(r.debug, fmt.Sprintf(format, args...))
}

func TestSetLogger(t *testing.T) {
	ce := NewCalculationEngine()
	rec := &recordingLogger{}
	ce.SetLogger(rec)

	_, err := ce.Project(baselineInput())
	require.NoError(t, err)
	require.NotEmpty(t, rec.debug)
	assert.Contains(t, rec.debug[0], "Using default inflation rate: 2%")

	ce.SetLogger(nil)
	assert.IsType(t, NopLogger{}, ce.Logger)
}

func TestRunScenarios(t *testing.T) {
	SetNowFunc(func() time.Time { return time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC) })
	defer SetNowFunc(time.Now)

	age := dec(30)
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	cfg := &domain.Configuration{
		GlobalAssumptions: domain.GlobalAssumptions{
			AnnualReturnRate:    dec(0.07),
			AnnualInflationRate: dec(0.03),
			LifeExpectancy:      dec(90),
		},
		Scenarios: []domain.Scenario{
			{Name: "Baseline", CurrentAge: &age, RetirementAge: dec(65), CurrentSavings: dec(50000), MonthlyContribution: dec(500), DesiredAnnualIncome: dec(60000)},
			{Name: "From birth date", BirthDate: &birth, RetirementAge: dec(65), CurrentSavings: dec(50000), MonthlyContribution: dec(500), DesiredAnnualIncome: dec(60000)},
		},
	}

	ce := NewCalculationEngine()
	rec := &recordingLogger{}
	ce.SetLogger(rec)

	report, err := ce.RunScenarios(cfg, false)
	require.NoError(t, err)
	require.Len(t, report.Scenarios, 2)
	assert.Equal(t, time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), report.GeneratedAt)

	assertMoney(t, "1389535.89", report.Scenarios[0].Result.TotalSavingsAtRetirement)
	assert.Len(t, report.Scenarios[0].Schedule, 35)
	assert.True(t, report.Scenarios[1].Input.CurrentAge.Equal(dec(35.5)))
	assert.Equal(t, 354, report.Scenarios[1].Result.Breakdown.MonthsToRetirement)
	assert.Contains(t, report.Assumptions[1], "2.0%")
	assert.Contains(t, rec.debug[0], "[Baseline] ")
}

func TestRunScenariosWrapsScenarioErrors(t *testing.T) {
	age := dec(70)
	cfg := &domain.Configuration{
		GlobalAssumptions: domain.GlobalAssumptions{LifeExpectancy: dec(90)},
		Scenarios:         []domain.Scenario{{Name: "Late", CurrentAge: &age, RetirementAge: dec(65)}},
	}

	_, err := NewCalculationEngine().RunScenarios(cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scenario "Late"`)
	assert.True(t, domain.IsInvalidInput(err))
}

func TestGenerateAssumptions(t *testing.T) {
	ga := domain.GlobalAssumptions{AnnualReturnRate: dec(0.07), AnnualInflationRate: dec(0.035), LifeExpectancy: dec(90)}

	on := GenerateAssumptions(ga, true, dec(0.02))
	assert.Equal(t, "Investment return: 7.0% annually, compounded monthly", on[0])
	assert.Equal(t, "Inflation: 3.5% annually (adjustment enabled)", on[1])

	off := GenerateAssumptions(ga, false, dec(0.02))
	assert.Equal(t, "Inflation: 2.0% annually (default; adjustment disabled)", off[1])
}
