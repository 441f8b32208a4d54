package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/agent-chat/internal/agents"
	"github.com/JaimeStill/agent-chat/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Registry dispatches requests to the backend registered for Request.Provider.
type Registry struct {
	backends map[agents.Provider]Backend
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		backends: make(map[agents.Provider]Backend),
		logger:   logger.With("system", "providers"),
	}
}

// New creates a registry with guarded OpenAI and Gemini backends sharing one HTTP client.
func New(cfg *Config, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	client := NewHTTPClient(cfg)
	limit := cfg.MaxResponseSizeBytes()

	r.Register(Guard(NewOpenAI(cfg.OpenAI, client, limit), cfg, r.logger))
	r.Register(Guard(NewGemini(cfg.Gemini, client, limit), cfg, r.logger))

	for _, b := range []struct {
		name string
		cfg  BackendConfig
	}{{"openai", cfg.OpenAI}, {"gemini", cfg.Gemini}} {
		r.logger.Info("provider registered",
			"provider", b.name,
			"base_url", b.cfg.BaseURL,
			"default_model", b.cfg.DefaultModel,
			"api_key", MaskKey(b.cfg.APIKey),
		)
	}

	return r
}

// Register adds or replaces the backend for its provider.
func (r *Registry) Register(b Backend) {
	r.backends[b.Provider()] = b
}

// Generate implements Gateway.
func (r *Registry) Generate(ctx context.Context, req Request) (Result, error) {
	ctx, span := tracing.Start(ctx, "provider.generate",
		attribute.String("llm.provider", string(req.Provider)),
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.turns", len(req.Messages)),
	)
	defer span.End()

	b, ok := r.backends[req.Provider]
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownProvider, req.Provider)
		tracing.Fail(span, err)
		return Result{}, err
	}

	res, err := b.Generate(ctx, req)
	if err != nil {
		tracing.Fail(span, err)
		return res, err
	}

	span.SetAttributes(attribute.String("llm.resolved_model", res.Model))
	if res.Failure != nil {
		tracing.Fail(span, res.Failure)
		r.logger.Warn("provider call failed",
			"provider", req.Provider,
			"model", res.Model,
			"reason", res.Failure.Reason,
			"status", res.Failure.Status,
			"error", res.Failure.Err,
		)
	}

	return res, nil
}
