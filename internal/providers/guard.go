package providers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/JaimeStill/agent-chat/internal/agents"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// guarded bounds a backend with a rate limiter, a concurrency semaphore, and a
// circuit breaker, in that order.
type guarded struct {
	inner   Backend
	limiter *rate.Limiter
	sem     *semaphore.Weighted
	breaker *gobreaker.CircuitBreaker[Result]
}

// Guard wraps inner with the resilience settings of cfg.
func Guard(inner Backend, cfg *Config, logger *slog.Logger) Backend {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	maxFailures := cfg.BreakerMaxFailures
	breaker := gobreaker.NewCircuitBreaker[Result](gobreaker.Settings{
		Name:        "provider:" + string(inner.Provider()),
		MaxRequests: 1,
		Interval:    cfg.BreakerIntervalDuration(),
		Timeout:     cfg.BreakerTimeoutDuration(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			var f *Failure
			if errors.As(err, &f) {
				return !f.trips()
			}
			return true
		},
	})

	return &guarded{
		inner:   inner,
		limiter: limiter,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		breaker: breaker,
	}
}

func (g *guarded) Provider() agents.Provider {
	return g.inner.Provider()
}

func (g *guarded) Generate(ctx context.Context, req Request) (Result, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return g.waitFailure(ctx, err), nil
		}
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return g.waitFailure(ctx, err), nil
	}
	defer g.sem.Release(1)

	res, err := g.breaker.Execute(func() (Result, error) {
		res, err := g.inner.Generate(ctx, req)
		if err != nil {
			return res, err
		}
		if res.Failure != nil {
			return res, res.Failure
		}
		return res, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return failed(ReasonUnavailable, 0, err), nil
	}

	var f *Failure
	if errors.As(err, &f) {
		return Result{Model: res.Model, Failure: f}, nil
	}
	if err != nil {
		return Result{}, err
	}

	return res, nil
}

func (g *guarded) waitFailure(ctx context.Context, err error) Result {
	if f := transportFailure(ctx, err); f.Reason != ReasonTransport {
		return Result{Failure: f}
	}
	return failed(ReasonSaturated, 0, err)
}
