package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-projector/internal/config"
	"github.com/rpgo/retirement-projector/internal/output"
)

func newExampleCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "example [file]",
		Short: "Write an example scenario configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "example_config.yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			cfg := config.NewInputParser().CreateExampleConfiguration()
			if err := output.SaveConfiguration(cfg, filename); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "example configuration written to %s\n", filename)
			return nil
		},
	}
}
