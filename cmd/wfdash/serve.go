package main

import (
	"fmt"

	"github.com/janekbaraniewski/wfdash/internal/config"
	"github.com/janekbaraniewski/wfdash/internal/metrics"
	"github.com/janekbaraniewski/wfdash/internal/server"
	"github.com/janekbaraniewski/wfdash/internal/version"
	"github.com/spf13/cobra"
)

func newServeCommand(cfg config.Config, flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the view and grid API over HTTP",
		Long:  "Open the local store, seed it from the bulk source when empty, and serve the view, grid and seed endpoints plus /metrics.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cfg.LogMode, false)
			if err != nil {
				return err
			}
			defer log.Sync()

			defaultRange, err := cfg.UI.Range()
			if err != nil {
				return fmt.Errorf("config ui range: %w", err)
			}

			m := metrics.New()
			rt, err := openLocal(cfg, flags, log, m)
			if err != nil {
				return err
			}
			defer rt.Close()

			svc := server.NewService(server.Config{
				Addr:           addr,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				DefaultRange:   defaultRange,
			}, rt.store, rt.source, log, m)

			log.Info("wfdash_starting", "version", version.Version, "db", rt.path, "source_configured", rt.source != nil)
			svc.Bootstrap(cmd.Context())
			return svc.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", cfg.Server.Addr, "listen address")
	return cmd
}
