// Package server exposes the query and save boundary over HTTP and holds the
// client the CLI uses to talk to it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/janekbaraniewski/wfdash/internal/logger"
	"github.com/janekbaraniewski/wfdash/internal/metrics"
	"github.com/janekbaraniewski/wfdash/internal/projection"
	"github.com/janekbaraniewski/wfdash/internal/schema"
	"github.com/janekbaraniewski/wfdash/internal/source"
	"github.com/janekbaraniewski/wfdash/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 8 << 20
)

type Config struct {
	Addr           string
	AllowedOrigins []string
	// DefaultRange applies when a view request names neither bound.
	DefaultRange projection.Range
}

type Service struct {
	cfg     Config
	store   *store.Store
	source  source.Source
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	rostersMu sync.RWMutex
	rosters   core.Rosters
}

// NewService wires the HTTP surface. src may be nil, in which case seeding
// is skipped and rosters stay empty.
func NewService(cfg Config, st *store.Store, src source.Source, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		cfg:     cfg,
		store:   st,
		source:  src,
		log:     log.With("component", "server"),
		metrics: m,
		now:     time.Now,
	}
}

// Bootstrap seeds an empty store and loads rosters. Source failures are
// logged and leave the store empty; they never stop the service.
func (s *Service) Bootstrap(ctx context.Context) {
	res, err := s.seed(ctx)
	switch {
	case err != nil:
		s.log.Warn("bootstrap_seed_failed", "error", err)
	case res.Seeded:
		s.log.Info("bootstrap_seeded", "rows", res.Rows)
	default:
		s.log.Debug("bootstrap_seed_skipped", "rows", res.Rows)
	}

	if s.source != nil && s.currentRosters().Empty() {
		if _, err := s.refreshRosters(ctx); err != nil {
			s.log.Warn("bootstrap_rosters_failed", "error", err)
		}
	}
}

func (s *Service) seed(ctx context.Context) (store.SeedResult, error) {
	if s.source == nil {
		return s.store.EnsureInitialized(ctx, nil)
	}
	return s.store.EnsureInitialized(ctx, func(ctx context.Context) ([]schema.RawRecord, error) {
		wb, err := s.source.Workbook(ctx)
		if err != nil {
			return nil, err
		}
		s.setRosters(wb.Rosters)
		return wb.Data, nil
	})
}

func (s *Service) currentRosters() core.Rosters {
	s.rostersMu.RLock()
	defer s.rostersMu.RUnlock()
	return s.rosters
}

func (s *Service) setRosters(r core.Rosters) {
	s.rostersMu.Lock()
	s.rosters = r
	s.rostersMu.Unlock()
}

func (s *Service) refreshRosters(ctx context.Context) (core.Rosters, error) {
	r, err := source.Rosters(ctx, s.source)
	if err != nil {
		return core.Rosters{}, err
	}
	s.setRosters(r)
	return r, nil
}

// Handler builds the gin engine with all routes.
func (s *Service) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(s.cfg.AllowedOrigins))
	router.Use(requestLogger(s.log))
	if s.metrics != nil {
		router.Use(requestMetrics(s.metrics))
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	router.GET("/healthz", s.handleHealth)
	api := router.Group("/" + APIVersion)
	{
		api.GET("/view", s.handleView)
		api.GET("/grid", s.handleGrid)
		api.PUT("/grid", s.handleSaveGrid)
		api.GET("/rosters", s.handleRosters)
		api.POST("/seed", s.handleSeed)
	}
	return router
}

// Run listens on cfg.Addr and serves until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve runs the HTTP server on listener and shuts it down gracefully once
// ctx is done.
func (s *Service) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.log.Info("server_listening", "addr", listener.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("server_shutdown", "reason", "context_done")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
