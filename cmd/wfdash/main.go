package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/janekbaraniewski/wfdash/internal/config"
	"github.com/janekbaraniewski/wfdash/internal/version"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = newRootCommand(cfg).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand that reads or writes the store.
type globalFlags struct {
	remote string
	dbPath string
}

func newRootCommand(cfg config.Config) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "wfdash",
		Short:        "wfdash tracks editorial contributions through the publication workflow.",
		Long:         "wfdash shows a timeline and a publication heat map of editorial contributions and lets you edit the contribution grid.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd.Context(), cfg, flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.remote, "remote", "", "address of a running 'wfdash serve' (e.g. 127.0.0.1:8050); empty uses the local store")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", cfg.Store.Path, "path of the SQLite store (default: XDG state dir)")

	root.AddCommand(newServeCommand(cfg, flags))
	root.AddCommand(newSeedCommand(cfg, flags))
	root.AddCommand(newGridCommand(cfg, flags))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "wfdash "+version.String())
		},
	})

	return root
}
