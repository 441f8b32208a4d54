package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/agent-chat/internal/config"
	"github.com/JaimeStill/agent-chat/internal/migrations"
	"github.com/JaimeStill/agent-chat/pkg/database"
	"github.com/JaimeStill/agent-chat/pkg/lifecycle"
	"github.com/JaimeStill/agent-chat/pkg/logging"
	"github.com/JaimeStill/agent-chat/pkg/pagination"
	"github.com/JaimeStill/agent-chat/pkg/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Runtime holds the infrastructure shared by every domain system.
// Database is nil when the memory storage driver is selected.
type Runtime struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Pagination pagination.Config
	Registry   *prometheus.Registry

	cfg             *config.Config
	shutdownTracing tracing.ShutdownFunc
}

// NewRuntime builds the runtime. Nothing is started until Start.
func NewRuntime(cfg *config.Config) (*Runtime, error) {
	logger := logging.New(&cfg.Logging)

	shutdownTracing, err := tracing.Setup(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rt := &Runtime{
		Lifecycle:       lifecycle.New(),
		Logger:          logger,
		Pagination:      cfg.Pagination,
		Registry:        registry,
		cfg:             cfg,
		shutdownTracing: shutdownTracing,
	}

	if cfg.Storage.Driver == config.StorageDriverPostgres {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		rt.Database = db
	}

	return rt, nil
}

// Start connects and migrates the database when one is configured, and
// registers tracing shutdown.
func (r *Runtime) Start() error {
	if r.Database != nil {
		if err := r.Database.Start(r.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
		if err := database.Migrate(&r.cfg.Database, migrations.FS, r.Logger); err != nil {
			return fmt.Errorf("database migrate failed: %w", err)
		}
	}

	r.Lifecycle.OnShutdown(func() {
		<-r.Lifecycle.Context().Done()
		if err := r.shutdownTracing(context.Background()); err != nil {
			r.Logger.Error("tracing shutdown error", "error", err)
		}
	})

	return nil
}
