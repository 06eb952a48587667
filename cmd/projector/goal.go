package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-projector/internal/calculation"
	"github.com/rpgo/retirement-projector/internal/domain"
	"github.com/rpgo/retirement-projector/internal/output"
	"github.com/rpgo/retirement-projector/pkg/money"
)

func newGoalCmd(a *app) *cobra.Command {
	var (
		target, returnPct, inflationPct string
		years                           int
		adjust, asJSON                  bool
	)

	cmd := &cobra.Command{
		Use:     "goal",
		Short:   "Compute the yearly saving needed to reach a target",
		Example: "  projector goal --target 1000000 --years 30 --return 7 --inflation-rate 2.5 --adjust",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := money.Parse(target)
			if err != nil {
				return domain.InvalidField("target", "must be a number, got %q", target)
			}
			ret, err := money.ParsePercent(returnPct)
			if err != nil {
				return domain.InvalidField("return", "%v", err)
			}
			infl, err := money.ParsePercent(inflationPct)
			if err != nil {
				return domain.InvalidField("inflation-rate", "%v", err)
			}

			engine := calculation.NewCalculationEngine()
			engine.SetLogger(a.log)
			res, err := engine.PlanSavingsGoal(domain.SavingsGoalInput{
				TargetAmount:               amount.Decimal,
				Years:                      years,
				AnnualReturnRate:           ret,
				AnnualInflationRate:        infl,
				InflationAdjustmentEnabled: adjust,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			writeGoal(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "savings target in dollars")
	cmd.Flags().IntVar(&years, "years", 30, "years to reach the target")
	cmd.Flags().StringVar(&returnPct, "return", "7", "expected annual return, percent")
	cmd.Flags().StringVar(&inflationPct, "inflation-rate", "2", "annual inflation, percent")
	cmd.Flags().BoolVar(&adjust, "adjust", false, "treat the target as today's dollars and inflate it")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func writeGoal(w io.Writer, res domain.SavingsGoalResult) {
	fmt.Fprintf(w, "Target:               %s\n", output.FormatCurrency(res.TargetAmount))
	if res.InflationAdjustmentEnabled {
		fmt.Fprintf(w, "Inflation-adjusted:   %s\n", output.FormatCurrency(res.AdjustedTarget))
	}
	fmt.Fprintf(w, "Save each year:       %s\n", output.FormatCurrency(res.AnnualContribution))
	fmt.Fprintf(w, "Monthly equivalent:   %s\n", output.FormatCurrency(res.MonthlyEquivalent))
	fmt.Fprintf(w, "Total contributed:    %s\n", output.FormatCurrency(res.TotalContributed))
	fmt.Fprintf(w, "Investment growth:    %s\n", output.FormatCurrency(res.InvestmentGrowth))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-6s %18s\n", "Year", "Balance")
	for _, p := range res.Growth {
		fmt.Fprintf(w, "%-6d %18s\n", p.Year, output.FormatCurrency(p.Balance))
	}
}

func newAnnualCmd(a *app) *cobra.Command {
	var (
		deposit, returnPct, inflationPct string
		years                            int
		adjust                           bool
	)

	cmd := &cobra.Command{
		Use:     "annual",
		Short:   "Project a fixed deposit made at the start of every year",
		Example: "  projector annual --deposit 10000 --years 30 --return 5 --inflation-rate 2 --adjust",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := money.Parse(deposit)
			if err != nil {
				return domain.InvalidField("deposit", "must be a number, got %q", deposit)
			}
			ret, err := money.ParsePercent(returnPct)
			if err != nil {
				return domain.InvalidField("return", "%v", err)
			}
			infl, err := money.ParsePercent(inflationPct)
			if err != nil {
				return domain.InvalidField("inflation-rate", "%v", err)
			}

			engine := calculation.NewCalculationEngine()
			engine.SetLogger(a.log)
			res, err := engine.ProjectAnnualSavings(domain.AnnualSavingsInput{
				AnnualDeposit:              amount.Decimal,
				Years:                      years,
				AnnualReturnRate:           ret,
				AnnualInflationRate:        infl,
				InflationAdjustmentEnabled: adjust,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			label := "Future value"
			if res.InflationAdjustmentEnabled {
				label = "Future value (today's dollars)"
			}
			fmt.Fprintf(w, "%s: %s\n", label, output.FormatCurrency(res.FutureValue))
			fmt.Fprintf(w, "Total deposited: %s\n", output.FormatCurrency(res.TotalDeposited))
			fmt.Fprintf(w, "Effective rate: %s\n", output.FormatRate(res.EffectiveRate))
			return nil
		},
	}

	cmd.Flags().StringVar(&deposit, "deposit", "", "amount deposited each year")
	cmd.Flags().IntVar(&years, "years", 30, "number of yearly deposits")
	cmd.Flags().StringVar(&returnPct, "return", "5", "expected annual return, percent")
	cmd.Flags().StringVar(&inflationPct, "inflation-rate", "2", "annual inflation, percent")
	cmd.Flags().BoolVar(&adjust, "adjust", false, "grow at the real rate to report today's dollars")
	_ = cmd.MarkFlagRequired("deposit")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
