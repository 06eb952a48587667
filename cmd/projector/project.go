package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-projector/internal/calculation"
	"github.com/rpgo/retirement-projector/internal/config"
	"github.com/rpgo/retirement-projector/internal/output"
)

func newProjectCmd(a *app) *cobra.Command {
	var (
		configFile string
		format     string
		outputDir  string
		inflation  bool
		flagSource string
	)

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project every scenario in a configuration file",
		Long: `Runs each scenario of a YAML configuration file and renders the report.

The inflation adjustment comes from --inflation when given, otherwise from --flag-source
(redis or launchdarkly, configured through the environment), otherwise from the file's
global_assumptions.inflation_adjustment_enabled.`,
		Example: "  projector project --config scenarios.yaml --format html --output-dir reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(configFile)
			if err != nil {
				return err
			}

			enabled := cfg.GlobalAssumptions.InflationAdjustmentEnabled
			switch {
			case cmd.Flags().Changed("inflation"):
				enabled = inflation
			case flagSource != "":
				if enabled, err = a.resolveFlag(cmd.Context(), flagSource, enabled); err != nil {
					return err
				}
			}

			engine := calculation.NewCalculationEngine()
			engine.SetLogger(a.log)
			report, err := engine.RunScenarios(cfg, enabled)
			if err != nil {
				return err
			}

			if outputDir == "" {
				f := output.GetFormatterByName(format)
				if f == nil {
					return fmt.Errorf("%w: %q (use --output-dir for \"all\")", output.ErrUnsupportedFormat, format)
				}
				data, err := f.Format(report)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			paths, err := output.GenerateReport(report, format, outputDir)
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "scenario configuration file (YAML or JSON)")
	cmd.Flags().StringVarP(&format, "format", "f", "console", fmt.Sprintf("output format %v, aliases or \"all\"", output.AvailableFormatterNames()))
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "write timestamped report files here instead of stdout")
	cmd.Flags().BoolVar(&inflation, "inflation", false, "enable inflation adjustment, overriding the flag source and file")
	cmd.Flags().StringVar(&flagSource, "flag-source", "", "resolve inflation adjustment from this flag source (redis or launchdarkly)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// resolveFlag evaluates the inflation flag once from the given source, configured from the
// environment. fallback is used when the source cannot answer.
func (a *app) resolveFlag(ctx context.Context, source string, fallback bool) (bool, error) {
	cfg, err := config.NewServerConfig()
	if err != nil {
		return fallback, err
	}
	cfg.FlagSource = source
	cfg.FlagDefault = fallback
	if err := cfg.Validate(); err != nil {
		return fallback, err
	}

	rdb := newRedisClient(cfg)
	if rdb != nil {
		defer rdb.Close()
	}
	src, closeSource, err := buildFlagSource(cfg, rdb)
	if err != nil {
		return fallback, err
	}
	defer closeSource()

	enabled, err := src.BoolVariation(ctx, cfg.FlagKey, fallback)
	if err != nil {
		a.log.WithError(err).WithField("flag", cfg.FlagKey).Warn("flag evaluation failed, using fallback")
		return fallback, nil
	}
	a.log.WithField("flag", cfg.FlagKey).Debugf("inflation adjustment %t", enabled)
	return enabled, nil
}
