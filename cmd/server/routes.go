package main

import (
	"net/http"

	"github.com/JaimeStill/agent-chat/internal/agents"
	"github.com/JaimeStill/agent-chat/internal/chat"
	"github.com/JaimeStill/agent-chat/internal/config"
	"github.com/JaimeStill/agent-chat/internal/sessions"
	"github.com/JaimeStill/agent-chat/pkg/lifecycle"
	"github.com/JaimeStill/agent-chat/pkg/routes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes configures all HTTP routes for the service.
func registerRoutes(r routes.System, runtime *Runtime, domain *Domain, cfg *config.Config) {
	r.RegisterGroup(agents.NewHandler(domain.Agents, runtime.Logger, runtime.Pagination).Routes())
	r.RegisterGroup(sessions.NewHandler(domain.Sessions, runtime.Logger).Routes())
	r.RegisterGroup(chat.NewHandler(domain.Chat, runtime.Logger).Routes())

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Handler: handleHealthCheck,
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/readyz",
		Handler: func(w http.ResponseWriter, r *http.Request) {
			handleReadinessCheck(w, runtime.Lifecycle)
		},
	})

	if cfg.Metrics.IsEnabled() {
		metrics := promhttp.HandlerFor(runtime.Registry, promhttp.HandlerOpts{})
		r.RegisterRoute(routes.Route{
			Method:  "GET",
			Pattern: cfg.Metrics.Path,
			Handler: metrics.ServeHTTP,
		})
	}
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleReadinessCheck(w http.ResponseWriter, ready lifecycle.ReadinessChecker) {
	if !ready.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
