package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rpgo/retirement-projector/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of scenario configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a configuration document. JSON is accepted since it is valid YAML.
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := ip.validateGlobalAssumptions(&config.GlobalAssumptions); err != nil {
		return fmt.Errorf("global assumptions validation failed: %w", err)
	}

	if len(config.Scenarios) == 0 {
		return fmt.Errorf("no scenarios provided")
	}

	seen := make(map[string]bool, len(config.Scenarios))
	for i, scenario := range config.Scenarios {
		if err := ip.validateScenario(&scenario); err != nil {
			return fmt.Errorf("scenario %d validation failed: %w", i, err)
		}
		if seen[scenario.Name] {
			return fmt.Errorf("scenario %d validation failed: duplicate name %q", i, scenario.Name)
		}
		seen[scenario.Name] = true
	}

	return nil
}

var minusOne = decimal.NewFromInt(-1)

// validateGlobalAssumptions validates global assumptions
func (ip *InputParser) validateGlobalAssumptions(assumptions *domain.GlobalAssumptions) error {
	if assumptions.AnnualReturnRate.LessThanOrEqual(minusOne) {
		return fmt.Errorf("annual return rate must be greater than -100%%")
	}
	if assumptions.AnnualInflationRate.LessThanOrEqual(minusOne) {
		return fmt.Errorf("annual inflation rate must be greater than -100%%")
	}
	if !assumptions.LifeExpectancy.IsPositive() {
		return fmt.Errorf("life expectancy must be positive")
	}
	return nil
}

// validateScenario checks what can be checked without a reference date. Age ordering is
// enforced again when the scenario is resolved and projected.
func (ip *InputParser) validateScenario(scenario *domain.Scenario) error {
	if scenario.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if scenario.CurrentAge == nil && scenario.BirthDate == nil {
		return fmt.Errorf("either current_age or birth_date is required")
	}
	if scenario.CurrentAge != nil && scenario.BirthDate != nil {
		return fmt.Errorf("specify either current_age or birth_date, not both")
	}
	if scenario.CurrentAge != nil && scenario.RetirementAge.LessThan(*scenario.CurrentAge) {
		return fmt.Errorf("retirement age cannot be before current age")
	}
	if scenario.CurrentSavings.IsNegative() {
		return fmt.Errorf("current savings cannot be negative")
	}
	if scenario.MonthlyContribution.IsNegative() {
		return fmt.Errorf("monthly contribution cannot be negative")
	}
	if scenario.DesiredAnnualIncome.IsNegative() {
		return fmt.Errorf("desired annual income cannot be negative")
	}
	if scenario.AnnualReturnRate != nil && scenario.AnnualReturnRate.LessThanOrEqual(minusOne) {
		return fmt.Errorf("annual return rate must be greater than -100%%")
	}
	if scenario.AnnualInflationRate != nil && scenario.AnnualInflationRate.LessThanOrEqual(minusOne) {
		return fmt.Errorf("annual inflation rate must be greater than -100%%")
	}
	return nil
}

// CreateExampleConfiguration creates an example configuration file
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	birthDate, _ := time.Parse("2006-01-02", "1985-04-12")
	age := decimal.NewFromInt(30)
	cautiousReturn := decimal.NewFromFloat(0.05)

	return &domain.Configuration{
		GlobalAssumptions: domain.GlobalAssumptions{
			AnnualReturnRate:    decimal.NewFromFloat(0.07),
			AnnualInflationRate: decimal.NewFromFloat(0.03),
			LifeExpectancy:      decimal.NewFromInt(90),
		},
		Scenarios: []domain.Scenario{
			{
				Name:                "Baseline",
				CurrentAge:          &age,
				RetirementAge:       decimal.NewFromInt(65),
				CurrentSavings:      decimal.NewFromInt(50000),
				MonthlyContribution: decimal.NewFromInt(500),
				DesiredAnnualIncome: decimal.NewFromInt(60000),
			},
			{
				Name:                "Early Retirement",
				CurrentAge:          &age,
				RetirementAge:       decimal.NewFromInt(55),
				CurrentSavings:      decimal.NewFromInt(50000),
				MonthlyContribution: decimal.NewFromInt(1500),
				DesiredAnnualIncome: decimal.NewFromInt(60000),
			},
			{
				Name:                "Conservative Mid Career",
				BirthDate:           &birthDate,
				RetirementAge:       decimal.NewFromInt(67),
				CurrentSavings:      decimal.NewFromInt(250000),
				MonthlyContribution: decimal.NewFromInt(2000),
				DesiredAnnualIncome: decimal.NewFromInt(80000),
				AnnualReturnRate:    &cautiousReturn,
			},
		},
	}
}
