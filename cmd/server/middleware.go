package main

import (
	"github.com/JaimeStill/agent-chat/internal/config"
	"github.com/JaimeStill/agent-chat/pkg/middleware"
)

// buildMiddleware creates the middleware stack: slash trimming, request
// logging, CORS, and the request body limit.
func buildMiddleware(runtime *Runtime, cfg *config.Config) middleware.System {
	mw := middleware.New()
	mw.Use(middleware.TrimSlash())
	mw.Use(middleware.Logger(runtime.Logger))
	mw.Use(middleware.CORS(&cfg.CORS))
	mw.Use(middleware.MaxBytes(cfg.Server.MaxBodySizeBytes()))
	return mw
}
