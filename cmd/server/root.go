package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rescue-sim/server/internal/config"
	"rescue-sim/server/internal/observability"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// newRootCmd builds an isolated command tree. The returned pointer is filled
// in by PersistentPreRunE before any subcommand runs.
func newRootCmd() (*cobra.Command, **config.Config) {
	var (
		cfgFile string
		cfg     *config.Config
	)

	root := &cobra.Command{
		Use:           "rescue-sim",
		Short:         "Steering and rescue simulation server.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, _, err := config.Load(cfgFile)
			if err != nil {
				observability.InitializeLogger(config.Default().Logger)
				return err
			}
			observability.InitializeLogger(loaded.Logger)
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			cfg = loaded
			observability.GetLogger().Debug("configuration loaded",
				zap.String("version", Version),
				zap.String("scenario", cfg.Simulation.Scenario),
			)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml or ~/.rescue-sim/config.yaml)")
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	root.AddCommand(
		newServeCmd(&cfg),
		newSimulateCmd(&cfg),
		newVersionCmd(),
	)
	return root, &cfg
}
