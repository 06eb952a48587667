package domain

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-projector/pkg/money"
)

// MaxAge bounds every age in a projection.
const MaxAge = 150

var (
	minusOne = decimal.NewFromInt(-1)
	maxAge   = decimal.NewFromInt(MaxAge)
)

// ProjectionInput holds everything needed to project one saver's retirement.
// Ages are in years, amounts in dollars and rates are fractions (0.07 for 7%).
type ProjectionInput struct {
	CurrentAge          decimal.Decimal `yaml:"current_age" json:"current_age"`
	RetirementAge       decimal.Decimal `yaml:"retirement_age" json:"retirement_age"`
	LifeExpectancy      decimal.Decimal `yaml:"life_expectancy" json:"life_expectancy"`
	CurrentSavings      decimal.Decimal `yaml:"current_savings" json:"current_savings"`
	MonthlyContribution decimal.Decimal `yaml:"monthly_contribution" json:"monthly_contribution"`
	DesiredAnnualIncome decimal.Decimal `yaml:"desired_annual_income" json:"desired_annual_income"`
	AnnualReturnRate    decimal.Decimal `yaml:"annual_return_rate" json:"annual_return_rate"`
	AnnualInflationRate decimal.Decimal `yaml:"annual_inflation_rate" json:"annual_inflation_rate"`

	// Supplied by the feature flag source, never looked up by the engine.
	InflationAdjustmentEnabled bool `yaml:"inflation_adjustment_enabled" json:"inflation_adjustment_enabled"`
}

// Validate checks the input against the projection's domain and returns an *InputError for the
// first violation found.
func (in ProjectionInput) Validate() error {
	if in.CurrentAge.IsNegative() {
		return InvalidField("current_age", "cannot be negative")
	}
	if in.RetirementAge.IsNegative() {
		return InvalidField("retirement_age", "cannot be negative")
	}
	if in.LifeExpectancy.IsNegative() {
		return InvalidField("life_expectancy", "cannot be negative")
	}
	for _, a := range []struct {
		field string
		v     decimal.Decimal
	}{
		{"current_age", in.CurrentAge},
		{"retirement_age", in.RetirementAge},
		{"life_expectancy", in.LifeExpectancy},
	} {
		if a.v.GreaterThan(maxAge) {
			return InvalidField(a.field, "must be at most %d", MaxAge)
		}
	}
	if in.RetirementAge.LessThan(in.CurrentAge) {
		return InvalidField("retirement_age", "(%s) cannot be before current age (%s)", in.RetirementAge, in.CurrentAge)
	}
	if in.LifeExpectancy.LessThan(in.RetirementAge) {
		return InvalidField("life_expectancy", "(%s) cannot be before retirement age (%s)", in.LifeExpectancy, in.RetirementAge)
	}

	if in.CurrentSavings.IsNegative() {
		return InvalidField("current_savings", "cannot be negative")
	}
	if in.MonthlyContribution.IsNegative() {
		return InvalidField("monthly_contribution", "cannot be negative")
	}
	if in.DesiredAnnualIncome.IsNegative() {
		return InvalidField("desired_annual_income", "cannot be negative")
	}

	if in.AnnualReturnRate.LessThanOrEqual(minusOne) {
		return InvalidField("annual_return_rate", "must be greater than -100%%")
	}
	if in.InflationAdjustmentEnabled && in.AnnualInflationRate.LessThanOrEqual(minusOne) {
		return InvalidField("annual_inflation_rate", "must be greater than -100%%")
	}
	return nil
}

// ProjectionResult is the outcome of a projection. Monetary fields are rounded to cents.
type ProjectionResult struct {
	TotalSavingsAtRetirement   decimal.Decimal `yaml:"total_savings_at_retirement" json:"total_savings_at_retirement"`
	RequiredSavings            decimal.Decimal `yaml:"required_savings" json:"required_savings"`
	IsSufficient               bool            `yaml:"is_sufficient" json:"is_sufficient"`
	Shortfall                  decimal.Decimal `yaml:"shortfall" json:"shortfall"`
	InflationAdjustmentEnabled bool            `yaml:"inflation_adjustment_enabled" json:"inflation_adjustment_enabled"`

	Breakdown ProjectionBreakdown `yaml:"breakdown" json:"breakdown"`
}

// ProjectionBreakdown exposes the intermediate values behind a ProjectionResult.
type ProjectionBreakdown struct {
	MonthsToRetirement        int             `yaml:"months_to_retirement" json:"months_to_retirement"`
	MonthsInRetirement        int             `yaml:"months_in_retirement" json:"months_in_retirement"`
	MonthlyReturnRate         decimal.Decimal `yaml:"monthly_return_rate" json:"monthly_return_rate"`
	MonthlyInflationRate      decimal.Decimal `yaml:"monthly_inflation_rate" json:"monthly_inflation_rate"`
	InflationRateUsed         decimal.Decimal `yaml:"inflation_rate_used" json:"inflation_rate_used"`
	FutureValueCurrentSavings decimal.Decimal `yaml:"future_value_current_savings" json:"future_value_current_savings"`
	FutureValueContributions  decimal.Decimal `yaml:"future_value_contributions" json:"future_value_contributions"`
	MonthlyWithdrawal         decimal.Decimal `yaml:"monthly_withdrawal" json:"monthly_withdrawal"`
}

// ProjectionRequest is the wire shape accepted by the /calculate endpoint. Rates are percentages
// (7 for 7%). The inflation flag is not part of the request; the server resolves it.
type ProjectionRequest struct {
	CurrentAge          *decimal.Decimal `json:"currentAge"`
	RetirementAge       *decimal.Decimal `json:"retirementAge"`
	CurrentSavings      *decimal.Decimal `json:"currentSavings"`
	MonthlyContribution *decimal.Decimal `json:"monthlyContribution"`
	AnnualReturn        *decimal.Decimal `json:"annualReturn"`
	InflationRate       *decimal.Decimal `json:"inflationRate"`
	DesiredIncome       *decimal.Decimal `json:"desiredIncome"`
	LifeExpectancy      *decimal.Decimal `json:"lifeExpectancy"`
}

// ToInput converts the request into a ProjectionInput. inflationRate may be omitted when the
// flag is off, in which case the engine's default applies anyway.
func (r ProjectionRequest) ToInput(inflationEnabled bool) (ProjectionInput, error) {
	fields := []struct {
		name string
		v    *decimal.Decimal
	}{
		{"currentAge", r.CurrentAge},
		{"retirementAge", r.RetirementAge},
		{"currentSavings", r.CurrentSavings},
		{"monthlyContribution", r.MonthlyContribution},
		{"annualReturn", r.AnnualReturn},
		{"desiredIncome", r.DesiredIncome},
		{"lifeExpectancy", r.LifeExpectancy},
	}
	for _, f := range fields {
		if f.v == nil {
			return ProjectionInput{}, InvalidField(f.name, "is required")
		}
	}

	inflation := decimal.Zero
	if r.InflationRate != nil {
		inflation = money.FromPercent(*r.InflationRate)
	} else if inflationEnabled {
		return ProjectionInput{}, InvalidField("inflationRate", "is required when inflation adjustment is enabled")
	}

	return ProjectionInput{
		CurrentAge:                 *r.CurrentAge,
		RetirementAge:              *r.RetirementAge,
		LifeExpectancy:             *r.LifeExpectancy,
		CurrentSavings:             *r.CurrentSavings,
		MonthlyContribution:        *r.MonthlyContribution,
		DesiredAnnualIncome:        *r.DesiredIncome,
		AnnualReturnRate:           money.FromPercent(*r.AnnualReturn),
		AnnualInflationRate:        inflation,
		InflationAdjustmentEnabled: inflationEnabled,
	}, nil
}
