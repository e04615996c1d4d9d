package main

import (
	"fmt"

	"github.com/janekbaraniewski/wfdash/internal/config"
	"github.com/spf13/cobra"
)

func newSeedCommand(cfg config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate an empty store from the bulk source",
		Long:  "Seed the store from the configured workbook. A store that already holds rows is left untouched.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if client := newClient(flags); client != nil {
				res, err := client.Seed(cmd.Context())
				if err != nil {
					return err
				}
				if res.Degraded {
					return fmt.Errorf("bulk source unavailable: %s", res.Error)
				}
				if !res.Seeded {
					fmt.Fprintln(out, "store already initialized, nothing seeded")
					return nil
				}
				fmt.Fprintf(out, "seeded %d rows\n", res.Rows)
				if res.Summary != "" {
					fmt.Fprintf(out, "warning: %s\n", res.Summary)
				}
				return nil
			}

			log, err := newLogger(cfg.LogMode, false)
			if err != nil {
				return err
			}
			defer log.Sync()

			rt, err := openLocal(cfg, flags, log, nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.source == nil {
				return fmt.Errorf("no bulk source configured; set source.path or source.url in %s", config.ConfigPath())
			}

			res, err := rt.store.EnsureInitialized(cmd.Context(), seederFor(rt))
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintln(out, describeSeed(res))
			return nil
		},
	}
}
