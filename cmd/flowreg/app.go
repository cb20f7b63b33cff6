package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/flowreg/config"
	"github.com/BaSui01/flowreg/flowstate"
	"github.com/BaSui01/flowreg/internal/database"
	"github.com/BaSui01/flowreg/internal/metrics"
	"github.com/BaSui01/flowreg/internal/reflection"
	"github.com/BaSui01/flowreg/internal/server"
	"github.com/BaSui01/flowreg/internal/telemetry"
	"github.com/BaSui01/flowreg/registry"
	"github.com/BaSui01/flowreg/tracestore"
)

const metricsNamespace = "flowreg"

// App owns the process-wide registry and everything bound to it.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	promReg   *prometheus.Registry
	collector *metrics.Collector
	telemetry *telemetry.Providers
	reg       *registry.Registry
	server    *server.Manager

	dbOnce sync.Once
	db     *gorm.DB
	pool   *database.PoolManager
	dbErr  error

	mu      sync.Mutex
	closers []io.Closer
}

// NewApp builds the root registry from cfg. Store providers are bound but
// nothing is constructed until the first lookup. observers are notified
// of registry events alongside the metrics collector.
func NewApp(cfg *config.Config, logger *zap.Logger, observers ...registry.Observer) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	providers, err := telemetry.Init(cfg.Telemetry, cfg.Runtime.Env, logger)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(metricsNamespace, promReg, logger)

	app := &App{
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "app")),
		promReg:   promReg,
		collector: collector,
		telemetry: providers,
		reg: registry.New(
			registry.WithLogger(logger),
			registry.WithObserver(registry.MultiObserver(append([]registry.Observer{collector}, observers...)...)),
			registry.WithTracerProvider(providers.TracerProvider()),
		),
	}

	app.bindStores()
	if err := registerBuiltins(app.reg); err != nil {
		return nil, err
	}
	return app, nil
}

// Registry returns the root registry of the process.
func (a *App) Registry() *registry.Registry { return a.reg }

// Gatherer exposes the metrics registry the collector writes to.
func (a *App) Gatherer() prometheus.Gatherer { return a.promReg }

// bindStores registers store providers for both environments. dev always
// uses in-memory stores; prod follows the configured backends.
func (a *App) bindStores() {
	a.reg.RegisterTraceStore(config.EnvDev, func(context.Context) (tracestore.Store, error) {
		return track(a, tracestore.NewMemoryStore()), nil
	})
	a.reg.RegisterFlowStateStore(config.EnvDev, func(context.Context) (flowstate.Store, error) {
		return track(a, flowstate.NewMemoryStore()), nil
	})

	a.reg.RegisterTraceStore(config.EnvProd, func(context.Context) (tracestore.Store, error) {
		var db *gorm.DB
		if a.cfg.TraceStore.Type == tracestore.StoreTypeGorm {
			var err error
			if db, err = a.database(); err != nil {
				return nil, err
			}
		}
		store, err := tracestore.New(a.cfg.TraceStore, db, a.logger)
		if err != nil {
			return nil, err
		}
		return track(a, store), nil
	})
	a.reg.RegisterFlowStateStore(config.EnvProd, func(context.Context) (flowstate.Store, error) {
		store, err := flowstate.New(a.cfg.FlowState, a.logger)
		if err != nil {
			return nil, err
		}
		return track(a, store), nil
	})
}

// database opens the shared database on first use.
func (a *App) database() (*gorm.DB, error) {
	a.dbOnce.Do(func() {
		db, err := database.Open(a.cfg.Database, a.logger)
		if err != nil {
			a.dbErr = err
			return
		}
		reporter := func(s database.PoolStats) {
			a.collector.RecordDBConnections(a.cfg.Database.Driver, s.OpenConnections, s.Idle)
		}
		pool, err := database.NewPoolManager(db, database.PoolConfigFrom(a.cfg.Database), reporter, a.logger)
		if err != nil {
			a.dbErr = err
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return
		}
		a.db, a.pool = db, pool
	})
	return a.db, a.dbErr
}

func track[T io.Closer](a *App, c T) T {
	a.mu.Lock()
	a.closers = append(a.closers, c)
	a.mu.Unlock()
	return c
}

// Start binds the reflection server when running in dev.
func (a *App) Start(ctx context.Context) error {
	if !a.cfg.Runtime.IsDev() {
		a.logger.Info("reflection API disabled outside dev", zap.String("env", a.cfg.Runtime.Env))
		return nil
	}

	handler := reflection.NewAPI(ctx, a.reg, a.cfg.Reflection, a.collector, a.promReg, a.logger)
	a.server = server.NewManager(handler, server.ConfigFrom(a.cfg.Reflection), a.logger)
	if err := a.server.Start(); err != nil {
		return fmt.Errorf("start reflection server: %w", err)
	}
	a.logger.Info("reflection API listening", zap.String("addr", a.server.Addr()))
	return nil
}

// Wait blocks until ctx is done or the reflection server fails.
func (a *App) Wait(ctx context.Context) error {
	if a.server == nil {
		<-ctx.Done()
		return nil
	}
	return a.server.Run(ctx)
}

// Close releases constructed stores, the database and telemetry. Errors are
// logged, not returned.
func (a *App) Close(ctx context.Context) {
	if a.server != nil && a.server.IsRunning() {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn("reflection server shutdown failed", zap.Error(err))
		}
	}

	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	// waits for an in-flight open and prevents a later one
	a.dbOnce.Do(func() {})
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("closing stores failed", zap.Error(err))
	}

	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
}
