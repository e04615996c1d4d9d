package main

import (
	"context"
	"fmt"
	"time"

	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/config"
	"github.com/janekbaraniewski/wfdash/internal/projection"
	"github.com/janekbaraniewski/wfdash/internal/server"
	"github.com/janekbaraniewski/wfdash/internal/store"
	"github.com/janekbaraniewski/wfdash/internal/tui"
)

func runDashboard(ctx context.Context, cfg config.Config, flags *globalFlags) error {
	log, err := newLogger(cfg.LogMode, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	initial, err := cfg.UI.Range()
	if err != nil {
		return fmt.Errorf("config ui range: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interval := time.Duration(cfg.UI.RefreshIntervalSeconds) * time.Second

	var model tui.Model
	if client := newClient(flags); client != nil {
		model = tui.NewModel(remoteLoader(client), initial)
		model.SetRefreshInterval(interval)
	} else {
		rt, err := openLocal(cfg, flags, log, nil)
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.ensureSeeded(ctx, log)

		model = tui.NewModel(localLoader(rt.store), initial)
		if w, err := tui.NewWatcher(rt.path); err != nil {
			log.Warn("store_watch_unavailable", "error", err)
			model.SetRefreshInterval(interval)
		} else {
			defer w.Close()
			go w.Run(ctx)
			model.SetChanges(w.Events())
		}
	}
	model.SetOnRangeChange(config.SaveRange)

	if err := tui.Run(model); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// localLoader reads the store directly, the same way the server's view and
// grid endpoints do.
func localLoader(st *store.Store) tui.Loader {
	return func(ctx context.Context, r projection.Range) (tui.Snapshot, error) {
		rows, err := st.LoadAll(ctx)
		if err != nil {
			return tui.Snapshot{}, err
		}
		view := projection.NewView(rows, r, projection.Today(nil))
		projection.SortByPublication(rows)
		return tui.Snapshot{View: view, Grid: codec.EncodeGrid(rows)}, nil
	}
}

func remoteLoader(client *server.Client) tui.Loader {
	return func(ctx context.Context, r projection.Range) (tui.Snapshot, error) {
		view, err := client.View(ctx, r, false)
		if err != nil {
			return tui.Snapshot{}, err
		}
		grid, err := client.Grid(ctx)
		if err != nil {
			return tui.Snapshot{}, err
		}
		return tui.Snapshot{View: view, Grid: grid.Rows}, nil
	}
}
