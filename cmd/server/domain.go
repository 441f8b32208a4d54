package main

import (
	"context"
	"fmt"

	"github.com/JaimeStill/agent-chat/internal/agents"
	"github.com/JaimeStill/agent-chat/internal/chat"
	"github.com/JaimeStill/agent-chat/internal/config"
	"github.com/JaimeStill/agent-chat/internal/providers"
	"github.com/JaimeStill/agent-chat/internal/seeds"
	"github.com/JaimeStill/agent-chat/internal/sessions"
	"github.com/JaimeStill/agent-chat/internal/tokens"
)

// Domain wires the agent, session, provider, and chat systems.
type Domain struct {
	Agents   agents.System
	Sessions sessions.System
	Tokens   tokens.Counter
	Chat     *chat.Orchestrator
}

// NewDomain selects memory or PostgreSQL stores from the storage driver.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	var (
		agentSys   agents.System
		sessionSys sessions.System
	)

	if runtime.Database != nil {
		db := runtime.Database.Connection()
		agentSys = agents.New(db, runtime.Logger, runtime.Pagination)
		if ttl := cfg.Storage.AgentCacheTTLDuration(); ttl > 0 {
			agentSys = agents.NewCached(agentSys, ttl)
		}
		sessionSys = sessions.New(db, agentSys, runtime.Logger)
	} else {
		agentSys = agents.NewMemory(runtime.Logger, runtime.Pagination)
		sessionSys = sessions.NewMemory(agentSys, runtime.Logger)
	}

	counter := tokens.New(cfg.Tokens, runtime.Logger)

	orchestrator := chat.New(
		agentSys,
		sessionSys,
		providers.New(&cfg.Providers, runtime.Logger),
		counter,
		chat.NewMetrics(runtime.Registry),
		runtime.Logger,
	)

	return &Domain{
		Agents:   agentSys,
		Sessions: sessionSys,
		Tokens:   counter,
		Chat:     orchestrator,
	}
}

// Seed loads the demo agents. It is used with the memory driver, which
// starts empty; PostgreSQL stores are seeded by cmd/seed.
func (d *Domain) Seed(ctx context.Context, runtime *Runtime) error {
	cmds, err := seeds.Demo()
	if err != nil {
		return err
	}

	n, err := seeds.Apply(ctx, d.Agents, cmds)
	if err != nil {
		return fmt.Errorf("seed demo agents: %w", err)
	}

	runtime.Logger.Info("demo agents seeded", "count", n)
	return nil
}
