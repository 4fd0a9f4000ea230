package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-tourforms/internal/config"
	"github.com/goliatone/go-tourforms/internal/directory"
	"github.com/goliatone/go-tourforms/internal/logger"
	"github.com/goliatone/go-tourforms/internal/metrics"
	"github.com/goliatone/go-tourforms/internal/store/contract"
	"github.com/goliatone/go-tourforms/internal/store/memory"
	"github.com/goliatone/go-tourforms/internal/store/sqlite"
	"github.com/goliatone/go-tourforms/pkg/forms"
	"github.com/goliatone/go-tourforms/pkg/options"
	"github.com/goliatone/go-tourforms/pkg/record"
	"github.com/goliatone/go-tourforms/pkg/session"
)

// reader looks records up after they are saved.
type reader interface {
	Get(ctx context.Context, id string) (record.Record, error)
	List(ctx context.Context, form string, limit int) ([]record.Record, error)
}

type memoryReader struct {
	*memory.Store
}

func (m memoryReader) List(ctx context.Context, form string, limit int) ([]record.Record, error) {
	recs, err := m.Store.List(ctx, form)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// app holds everything a command needs, built from the configuration.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	catalog   *forms.Catalog
	store     record.Store
	records   reader
	directory *directory.Directory
	recorder  *metrics.Recorder
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, err := logger.NewStructured(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	var catalogOpts []forms.CatalogOption
	if cfg.Options.File != "" {
		overrides, err := options.LoadSeedFile(cfg.Options.File)
		if err != nil {
			return nil, err
		}
		catalogOpts = append(catalogOpts, forms.WithSeedOverrides(overrides))
		log.Debug("option overrides loaded", map[string]any{"file": cfg.Options.File, "lists": len(overrides)})
	}

	if addr := cfg.Directory.Redis.Addr; addr != "" {
		dir := directory.New(directory.Config{
			Address:  addr,
			Password: cfg.Directory.Redis.Password,
			DB:       cfg.Directory.Redis.DB,
			Prefix:   cfg.Directory.Redis.Key,
		}, log)
		if err := dir.Ping(ctx); err != nil {
			_ = dir.Close()
			return nil, fmt.Errorf("directory: %w", err)
		}
		a.directory = dir
		a.closers = append(a.closers, dir.Close)
		catalogOpts = append(catalogOpts, forms.WithDirectory(dir))
	}
	a.catalog = forms.NewCatalog(catalogOpts...)

	switch cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Store.DSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.store, a.records = db, db
	default:
		mem := memory.New()
		a.store, a.records = mem, memoryReader{mem}
	}

	if cfg.Store.Contract {
		guarded, err := contract.New(a.store, a.catalog.Definitions()...)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.store = guarded
	}

	if cfg.Metrics.Enabled {
		a.recorder = metrics.New(prometheus.DefaultRegisterer)
	}

	log.Info("console ready", map[string]any{
		"store":     cfg.Store.Driver,
		"contract":  cfg.Store.Contract,
		"directory": a.directory != nil,
		"metrics":   cfg.Metrics.Enabled,
	})
	return a, nil
}

// open starts a session wired to the configured store, logger and metrics.
func (a *app) open(ctx context.Context, form string) (*session.Session, error) {
	opts := []session.Option{
		session.WithStore(a.store),
		session.WithLogger(a.log.With(map[string]any{"form": form})),
	}
	if a.recorder != nil {
		opts = append(opts, session.WithObserver(a.recorder))
	}
	return a.catalog.Open(ctx, form, opts...)
}

// serveMetrics exposes /metrics until the app is closed.
func (a *app) serveMetrics() {
	if a.recorder == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Error("metrics server stopped", map[string]any{"addr": srv.Addr})
		}
	}()
	a.closers = append(a.closers, func() error {
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	a.log.Info("metrics listening", map[string]any{"addr": srv.Addr})
}

// Close releases resources in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("close failed", nil)
		}
	}
	a.closers = nil
}
