package domain

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-projector/pkg/money"
)

// MaxGoalYears bounds the savings-goal horizon.
const MaxGoalYears = 100

// SavingsGoalInput describes a target nest egg to be reached with equal yearly contributions.
type SavingsGoalInput struct {
	TargetAmount        decimal.Decimal `yaml:"target_amount" json:"target_amount"`
	Years               int             `yaml:"years" json:"years"`
	AnnualReturnRate    decimal.Decimal `yaml:"annual_return_rate" json:"annual_return_rate"`
	AnnualInflationRate decimal.Decimal `yaml:"annual_inflation_rate" json:"annual_inflation_rate"`

	// When set, TargetAmount is in today's dollars and is grown by inflation before solving.
	InflationAdjustmentEnabled bool `yaml:"inflation_adjustment_enabled" json:"inflation_adjustment_enabled"`
}

// Validate checks the goal input and returns an *InputError for the first violation found.
func (in SavingsGoalInput) Validate() error {
	if !in.TargetAmount.IsPositive() {
		return InvalidField("target_amount", "must be positive")
	}
	if in.Years < 1 || in.Years > MaxGoalYears {
		return InvalidField("years", "must be between 1 and %d", MaxGoalYears)
	}
	if in.AnnualReturnRate.LessThanOrEqual(minusOne) {
		return InvalidField("annual_return_rate", "must be greater than -100%%")
	}
	if in.InflationAdjustmentEnabled && in.AnnualInflationRate.LessThanOrEqual(minusOne) {
		return InvalidField("annual_inflation_rate", "must be greater than -100%%")
	}
	return nil
}

// GrowthPoint is the balance at the end of one contribution year.
type GrowthPoint struct {
	Year    int             `yaml:"year" json:"year"`
	Balance decimal.Decimal `yaml:"balance" json:"balance"`
}

// SavingsGoalResult is the yearly contribution that reaches the goal and its growth schedule.
type SavingsGoalResult struct {
	TargetAmount               decimal.Decimal `yaml:"target_amount" json:"target_amount"`
	AdjustedTarget             decimal.Decimal `yaml:"adjusted_target" json:"adjusted_target"`
	AnnualContribution         decimal.Decimal `yaml:"annual_contribution" json:"annual_contribution"`
	MonthlyEquivalent          decimal.Decimal `yaml:"monthly_equivalent" json:"monthly_equivalent"`
	TotalContributed           decimal.Decimal `yaml:"total_contributed" json:"total_contributed"`
	InvestmentGrowth           decimal.Decimal `yaml:"investment_growth" json:"investment_growth"`
	InflationAdjustmentEnabled bool            `yaml:"inflation_adjustment_enabled" json:"inflation_adjustment_enabled"`
	Growth                     []GrowthPoint   `yaml:"growth" json:"growth"`
}

// AnnualSavingsInput describes a fixed deposit made at the start of every year.
type AnnualSavingsInput struct {
	AnnualDeposit       decimal.Decimal `yaml:"annual_deposit" json:"annual_deposit"`
	Years               int             `yaml:"years" json:"years"`
	AnnualReturnRate    decimal.Decimal `yaml:"annual_return_rate" json:"annual_return_rate"`
	AnnualInflationRate decimal.Decimal `yaml:"annual_inflation_rate" json:"annual_inflation_rate"`

	InflationAdjustmentEnabled bool `yaml:"inflation_adjustment_enabled" json:"inflation_adjustment_enabled"`
}

// Validate checks the deposit plan and returns an *InputError for the first violation found.
func (in AnnualSavingsInput) Validate() error {
	if in.AnnualDeposit.IsNegative() {
		return InvalidField("annual_deposit", "cannot be negative")
	}
	if in.Years < 0 || in.Years > MaxGoalYears {
		return InvalidField("years", "must be between 0 and %d", MaxGoalYears)
	}
	if in.AnnualReturnRate.LessThanOrEqual(minusOne) {
		return InvalidField("annual_return_rate", "must be greater than -100%%")
	}
	if in.InflationAdjustmentEnabled && in.AnnualInflationRate.LessThanOrEqual(minusOne) {
		return InvalidField("annual_inflation_rate", "must be greater than -100%%")
	}
	return nil
}

// AnnualSavingsResult is the projected value of an AnnualSavingsInput plan.
type AnnualSavingsResult struct {
	FutureValue                decimal.Decimal `yaml:"future_value" json:"future_value"`
	TotalDeposited             decimal.Decimal `yaml:"total_deposited" json:"total_deposited"`
	EffectiveRate              decimal.Decimal `yaml:"effective_rate" json:"effective_rate"`
	InflationAdjustmentEnabled bool            `yaml:"inflation_adjustment_enabled" json:"inflation_adjustment_enabled"`
}

// SavingsGoalRequest is the wire shape accepted by the /savings-goal endpoint. Rates are
// percentages. AdjustForInflation is the user's choice; it only takes effect when the
// inflation feature flag is on.
type SavingsGoalRequest struct {
	TargetAmount       *decimal.Decimal `json:"targetAmount"`
	Years              int              `json:"years"`
	AnnualReturn       *decimal.Decimal `json:"annualReturn"`
	InflationRate      *decimal.Decimal `json:"inflationRate"`
	AdjustForInflation bool             `json:"adjustForInflation"`
}

// ToInput converts the request into a SavingsGoalInput.
func (r SavingsGoalRequest) ToInput(inflationEnabled bool) (SavingsGoalInput, error) {
	if r.TargetAmount == nil {
		return SavingsGoalInput{}, InvalidField("targetAmount", "is required")
	}
	if r.AnnualReturn == nil {
		return SavingsGoalInput{}, InvalidField("annualReturn", "is required")
	}

	apply := inflationEnabled && r.AdjustForInflation
	inflation := decimal.Zero
	if apply {
		if r.InflationRate == nil {
			return SavingsGoalInput{}, InvalidField("inflationRate", "is required when adjusting for inflation")
		}
		inflation = money.FromPercent(*r.InflationRate)
	}

	return SavingsGoalInput{
		TargetAmount:               *r.TargetAmount,
		Years:                      r.Years,
		AnnualReturnRate:           money.FromPercent(*r.AnnualReturn),
		AnnualInflationRate:        inflation,
		InflationAdjustmentEnabled: apply,
	}, nil
}
