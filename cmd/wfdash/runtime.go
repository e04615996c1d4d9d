package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/janekbaraniewski/wfdash/internal/config"
	"github.com/janekbaraniewski/wfdash/internal/logger"
	"github.com/janekbaraniewski/wfdash/internal/metrics"
	"github.com/janekbaraniewski/wfdash/internal/server"
	"github.com/janekbaraniewski/wfdash/internal/source"
	"github.com/janekbaraniewski/wfdash/internal/store"
)

// resolveDBPath prefers the --db flag over the configured or default path.
func resolveDBPath(cfg config.Config, flagPath string) string {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p
	}
	return cfg.DBPath()
}

// newLogger builds the process logger. Interactive commands stay quiet
// unless WFDASH_DEBUG is set, since log lines would tear the dashboard.
func newLogger(mode string, interactive bool) (*logger.Logger, error) {
	if interactive && os.Getenv("WFDASH_DEBUG") == "" {
		return logger.NewNop(), nil
	}
	return logger.New(mode)
}

// localRuntime is the store plus bulk source used when no --remote is set.
type localRuntime struct {
	path   string
	store  *store.Store
	source source.Source
}

func openLocal(cfg config.Config, flags *globalFlags, log *logger.Logger, m *metrics.Metrics) (*localRuntime, error) {
	path := resolveDBPath(cfg, flags.dbPath)
	st, err := store.OpenStore(path, store.WithLogger(log), store.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	return &localRuntime{
		path:   path,
		store:  st,
		source: source.New(cfg.SourceConfig()),
	}, nil
}

func (r *localRuntime) Close() error {
	return r.store.Close()
}

// ensureSeeded fills an empty store from the bulk source. A missing or
// failing source is reported but leaves the store usable.
func (r *localRuntime) ensureSeeded(ctx context.Context, log *logger.Logger) store.SeedResult {
	res, err := r.store.EnsureInitialized(ctx, seederFor(r))
	if err != nil {
		log.Warn("seed_failed", "error", err)
	}
	return res
}

// seederFor returns nil without a source, which makes seeding a no-op.
func seederFor(r *localRuntime) store.Seeder {
	if r.source == nil {
		return nil
	}
	return source.SeedRecords(r.source)
}

func newClient(flags *globalFlags) *server.Client {
	if strings.TrimSpace(flags.remote) == "" {
		return nil
	}
	return server.NewClient(flags.remote)
}

func describeSeed(res store.SeedResult) string {
	if !res.Seeded {
		return "store already initialized, nothing seeded"
	}
	msg := fmt.Sprintf("seeded %d rows", res.Rows)
	if summary := res.Report.Summary(); summary != "" {
		msg += "; " + summary
	}
	return msg
}
