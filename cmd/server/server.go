package main

import (
	"context"
	"time"

	"github.com/JaimeStill/agent-chat/internal/config"
	"github.com/JaimeStill/agent-chat/internal/routes"
	"github.com/JaimeStill/agent-chat/internal/server"
	"github.com/JaimeStill/agent-chat/internal/tokens"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	runtime *Runtime
	domain  *Domain
	http    server.System
	seed    bool
}

// NewServer creates the runtime, domain, and HTTP handler.
func NewServer(cfg *config.Config) (*Server, error) {
	runtime, err := NewRuntime(cfg)
	if err != nil {
		return nil, err
	}

	domain := NewDomain(runtime, cfg)

	routeSys := routes.New(runtime.Logger)
	registerRoutes(routeSys, runtime, domain, cfg)
	handler := buildMiddleware(runtime, cfg).Apply(routeSys.Build())

	runtime.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"storage", cfg.Storage.Driver,
		"env", cfg.Env(),
	)

	return &Server{
		runtime: runtime,
		domain:  domain,
		http:    server.New(&cfg.Server, handler, cfg.ShutdownTimeoutDuration(), runtime.Logger),
		seed:    cfg.Storage.SeedDemo && runtime.Database == nil,
	}, nil
}

// Start begins all subsystems and returns once the listener is bound.
func (s *Server) Start() error {
	s.runtime.Logger.Info("starting service")

	if err := s.runtime.Start(); err != nil {
		return err
	}

	if loader, ok := s.domain.Tokens.(tokens.Loader); ok {
		s.runtime.Lifecycle.OnStartup(loader.Load)
	}

	if s.seed {
		s.runtime.Lifecycle.OnStartup(func() {
			if err := s.domain.Seed(context.Background(), s.runtime); err != nil {
				s.runtime.Logger.Error("demo seed failed", "error", err)
			}
		})
	}

	if err := s.http.Start(s.runtime.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.runtime.Lifecycle.WaitForStartup()
		s.runtime.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown gracefully stops all subsystems within timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.runtime.Logger.Info("initiating shutdown")
	return s.runtime.Lifecycle.Shutdown(timeout)
}
