package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/config"
	"github.com/janekbaraniewski/wfdash/internal/projection"
	"github.com/spf13/cobra"
)

func newGridCommand(cfg config.Config, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Export or save the contribution grid",
		Long:  "Read the whole grid as JSON with day-first dates, or replace the store with an edited grid.",
	}

	cmd.AddCommand(newGridExportCommand(cfg, flags))
	cmd.AddCommand(newGridSaveCommand(cfg, flags))
	return cmd
}

func newGridExportCommand(cfg config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the grid as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := loadGrid(cmd.Context(), cfg, flags)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		},
	}
}

func loadGrid(ctx context.Context, cfg config.Config, flags *globalFlags) ([]codec.GridRow, error) {
	if client := newClient(flags); client != nil {
		resp, err := client.Grid(ctx)
		if err != nil {
			return nil, err
		}
		return resp.Rows, nil
	}

	log, err := newLogger(cfg.LogMode, false)
	if err != nil {
		return nil, err
	}
	defer log.Sync()

	rt, err := openLocal(cfg, flags, log, nil)
	if err != nil {
		return nil, err
	}
	defer rt.Close()
	rt.ensureSeeded(ctx, log)

	rows, err := rt.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	projection.SortByPublication(rows)
	return codec.EncodeGrid(rows), nil
}

func newGridSaveCommand(cfg config.Config, flags *globalFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "save <file|->",
		Short: "Replace the store with an edited grid",
		Long:  "Read a JSON grid (as printed by 'grid export') and make the store equal to it. Dates are day-first (DD.MM.YYYY).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readGrid(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			var saved int
			var summary string
			if client := newClient(flags); client != nil {
				res, err := client.SaveGrid(cmd.Context(), rows, strict)
				if err != nil {
					return err
				}
				saved, summary = res.Rows, res.Summary
			} else {
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

				res, err := rt.store.ReplaceAll(cmd.Context(), codec.RawRecords(rows), codec.DecodeOptions{Strict: strict})
				if err != nil {
					return fmt.Errorf("save grid: %w", err)
				}
				saved, summary = res.Rows, res.Report.Summary()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %d rows\n", saved)
			if summary != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", summary)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "reject the whole save when any date cannot be parsed")
	return cmd
}

// readGrid decodes a JSON array of grid rows from a file, or from stdin
// when name is "-".
func readGrid(stdin io.Reader, name string) ([]codec.GridRow, error) {
	var r io.Reader
	if strings.TrimSpace(name) == "-" {
		r = stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open grid file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var rows []codec.GridRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("grid input is empty")
		}
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	if rows == nil {
		return nil, errors.New("grid input must be a JSON array of rows")
	}
	return rows, nil
}
