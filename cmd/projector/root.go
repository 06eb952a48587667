package main

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries state shared by the subcommands.
type app struct {
	log      *logrus.Logger
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}

	root := &cobra.Command{
		Use:          "projector",
		Short:        "Retirement savings projector",
		Long:         "Projects retirement savings against the amount needed to fund a desired income, from scenario files or over HTTP.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogger(cmd)
		},
	}

	defaultLevel := os.Getenv("LOG_LEVEL")
	if defaultLevel == "" {
		defaultLevel = "info"
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", defaultLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(a),
		newProjectCmd(a),
		newGoalCmd(a),
		newAnnualCmd(a),
		newExampleCmd(a),
	)
	return root
}

// setupLogger configures the JSON logger on stderr so command output stays clean.
func (a *app) setupLogger(cmd *cobra.Command) error {
	level, err := logrus.ParseLevel(strings.ToLower(a.logLevel))
	if err != nil {
		return err
	}
	a.log.SetFormatter(&logrus.JSONFormatter{})
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetLevel(level)
	return nil
}
