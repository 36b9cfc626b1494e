package main

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rescue-sim/server/internal/app"
	"rescue-sim/server/internal/config"
	"rescue-sim/server/internal/observability"
)

func newSimulateCmd(cfg **config.Config) *cobra.Command {
	var (
		ticks  uint64
		output string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the scenario headless until it finishes or the tick limit is hit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "yaml" && output != "json" {
				return fmt.Errorf("unsupported output %q", output)
			}
			summary, err := app.Simulate(cmd.Context(), *cfg, observability.GetLogger(), ticks)
			if err != nil {
				return err
			}

			var data []byte
			if output == "json" {
				data, err = jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(summary, "", "  ")
				data = append(data, '\n')
			} else {
				data, err = yaml.Marshal(summary)
			}
			if err != nil {
				return fmt.Errorf("encode summary: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().Uint64Var(&ticks, "ticks", 10000, "maximum number of ticks to run (0 runs until done)")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "summary format: yaml or json")
	return cmd
}
