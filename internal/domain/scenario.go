package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rpgo/retirement-projector/pkg/dateutil"
)

// Configuration is the top-level scenario file: shared assumptions plus named scenarios.
type Configuration struct {
	GlobalAssumptions GlobalAssumptions `yaml:"global_assumptions" json:"global_assumptions"`
	Scenarios         []Scenario        `yaml:"scenarios" json:"scenarios"`
}

// GlobalAssumptions are applied to every scenario unless the scenario overrides them.
type GlobalAssumptions struct {
	AnnualReturnRate    decimal.Decimal `yaml:"annual_return_rate" json:"annual_return_rate"`
	AnnualInflationRate decimal.Decimal `yaml:"annual_inflation_rate" json:"annual_inflation_rate"`
	LifeExpectancy      decimal.Decimal `yaml:"life_expectancy" json:"life_expectancy"`

	// Used only when no flag source is configured (CLI runs without --flag-source).
	InflationAdjustmentEnabled bool `yaml:"inflation_adjustment_enabled" json:"inflation_adjustment_enabled"`
}

// Scenario is one saver's situation. Either CurrentAge or BirthDate must be given.
type Scenario struct {
	Name                string           `yaml:"name" json:"name"`
	CurrentAge          *decimal.Decimal `yaml:"current_age,omitempty" json:"current_age,omitempty"`
	BirthDate           *time.Time       `yaml:"birth_date,omitempty" json:"birth_date,omitempty"`
	RetirementAge       decimal.Decimal  `yaml:"retirement_age" json:"retirement_age"`
	CurrentSavings      decimal.Decimal  `yaml:"current_savings" json:"current_savings"`
	MonthlyContribution decimal.Decimal  `yaml:"monthly_contribution" json:"monthly_contribution"`
	DesiredAnnualIncome decimal.Decimal  `yaml:"desired_annual_income" json:"desired_annual_income"`

	// Optional overrides of the global assumptions
	AnnualReturnRate    *decimal.Decimal `yaml:"annual_return_rate,omitempty" json:"annual_return_rate,omitempty"`
	AnnualInflationRate *decimal.Decimal `yaml:"annual_inflation_rate,omitempty" json:"annual_inflation_rate,omitempty"`
	LifeExpectancy      *decimal.Decimal `yaml:"life_expectancy,omitempty" json:"life_expectancy,omitempty"`
}

// UnmarshalYAML implements custom YAML unmarshaling for Scenario so optional decimal
// overrides can be written as plain numbers.
func (s *Scenario) UnmarshalYAML(value *yaml.Node) error {
	type Alias struct {
		Name                string          `yaml:"name"`
		CurrentAge          *string         `yaml:"current_age,omitempty"`
		BirthDate           *string         `yaml:"birth_date,omitempty"`
		RetirementAge       decimal.Decimal `yaml:"retirement_age"`
		CurrentSavings      decimal.Decimal `yaml:"current_savings"`
		MonthlyContribution decimal.Decimal `yaml:"monthly_contribution"`
		DesiredAnnualIncome decimal.Decimal `yaml:"desired_annual_income"`
		AnnualReturnRate    *string         `yaml:"annual_return_rate,omitempty"`
		AnnualInflationRate *string         `yaml:"annual_inflation_rate,omitempty"`
		LifeExpectancy      *string         `yaml:"life_expectancy,omitempty"`
	}

	var aux Alias
	if err := value.Decode(&aux); err != nil {
		return err
	}

	s.Name = aux.Name
	s.RetirementAge = aux.RetirementAge
	s.CurrentSavings = aux.CurrentSavings
	s.MonthlyContribution = aux.MonthlyContribution
	s.DesiredAnnualIncome = aux.DesiredAnnualIncome

	if aux.BirthDate != nil {
		bd, err := parseDate(*aux.BirthDate)
		if err != nil {
			return fmt.Errorf("birth_date: %w", err)
		}
		s.BirthDate = &bd
	}

	optional := []struct {
		name string
		src  *string
		dst  **decimal.Decimal
	}{
		{"current_age", aux.CurrentAge, &s.CurrentAge},
		{"annual_return_rate", aux.AnnualReturnRate, &s.AnnualReturnRate},
		{"annual_inflation_rate", aux.AnnualInflationRate, &s.AnnualInflationRate},
		{"life_expectancy", aux.LifeExpectancy, &s.LifeExpectancy},
	}
	for _, o := range optional {
		if o.src == nil {
			continue
		}
		val, err := decimal.NewFromString(*o.src)
		if err != nil {
			return fmt.Errorf("%s: %w", o.name, err)
		}
		*o.dst = &val
	}

	return nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD)", value)
}

// Resolve merges the scenario with the global assumptions into a ProjectionInput. at is the
// date used to derive the current age from BirthDate.
func (s Scenario) Resolve(ga GlobalAssumptions, at time.Time, inflationEnabled bool) (ProjectionInput, error) {
	var age decimal.Decimal
	switch {
	case s.CurrentAge != nil:
		age = *s.CurrentAge
	case s.BirthDate != nil:
		if s.BirthDate.After(at) {
			return ProjectionInput{}, InvalidField("birth_date", "cannot be in the future")
		}
		age = dateutil.FractionalAge(*s.BirthDate, at)
	default:
		return ProjectionInput{}, InvalidField("current_age", "or birth_date is required")
	}

	in := ProjectionInput{
		CurrentAge:                 age,
		RetirementAge:              s.RetirementAge,
		LifeExpectancy:             ga.LifeExpectancy,
		CurrentSavings:             s.CurrentSavings,
		MonthlyContribution:        s.MonthlyContribution,
		DesiredAnnualIncome:        s.DesiredAnnualIncome,
		AnnualReturnRate:           ga.AnnualReturnRate,
		AnnualInflationRate:        ga.AnnualInflationRate,
		InflationAdjustmentEnabled: inflationEnabled,
	}
	if s.LifeExpectancy != nil {
		in.LifeExpectancy = *s.LifeExpectancy
	}
	if s.AnnualReturnRate != nil {
		in.AnnualReturnRate = *s.AnnualReturnRate
	}
	if s.AnnualInflationRate != nil {
		in.AnnualInflationRate = *s.AnnualInflationRate
	}
	return in, nil
}

// ScenarioResult pairs a resolved scenario with its projection.
type ScenarioResult struct {
	Name     string           `json:"name"`
	Input    ProjectionInput  `json:"input"`
	Result   ProjectionResult `json:"result"`
	Schedule []GrowthPoint    `json:"schedule"`
}

// ProjectionReport is the outcome of running every scenario in a Configuration.
type ProjectionReport struct {
	GeneratedAt                time.Time        `json:"generated_at"`
	InflationAdjustmentEnabled bool             `json:"inflation_adjustment_enabled"`
	Scenarios                  []ScenarioResult `json:"scenarios"`
	Assumptions                []string         `json:"assumptions"`
}
