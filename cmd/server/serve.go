package main

import (
	"github.com/spf13/cobra"

	"rescue-sim/server/internal/app"
	"rescue-sim/server/internal/config"
	"rescue-sim/server/internal/observability"
)

func newServeCmd(cfg **config.Config) *cobra.Command {
	var (
		addr      string
		clientDir string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and stream it over websockets.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCfg := **cfg
			if addr != "" {
				runCfg.Server.Addr = addr
			}
			return app.Run(cmd.Context(), &runCfg, app.Options{
				Logger:    observability.GetLogger(),
				ClientDir: clientDir,
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&clientDir, "client-dir", "", "directory of static client files to serve at /")
	return cmd
}
