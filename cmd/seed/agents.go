package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/agent-chat/internal/agents"
	"github.com/JaimeStill/agent-chat/internal/seeds"
)

func init() {
	registerSeeder(&AgentSeeder{})
}

// AgentSeeder inserts the demo agent catalog, or an external seed file.
type AgentSeeder struct {
	file string
}

func (s *AgentSeeder) Name() string {
	return "agents"
}

func (s *AgentSeeder) Description() string {
	return "Seeds the demo agent policies"
}

// SetFile configures an external JSON or YAML seed file, overriding the embedded catalog.
func (s *AgentSeeder) SetFile(path string) {
	s.file = path
}

// Seed inserts each agent unless its owner already has an agent with the same name.
func (s *AgentSeeder) Seed(ctx context.Context, tx *sql.Tx) error {
	cmds, err := s.load()
	if err != nil {
		return err
	}

	for _, cmd := range cmds {
		a, err := cmd.Agent()
		if err != nil {
			return fmt.Errorf("agent %q: %w", cmd.Name, err)
		}

		allowed, err := json.Marshal(a.AllowedTopics)
		if err != nil {
			return fmt.Errorf("encode allowed_topics: %w", err)
		}
		restricted, err := json.Marshal(a.RestrictedTopics)
		if err != nil {
			return fmt.Errorf("encode restricted_topics: %w", err)
		}

		const query = `
			INSERT INTO agents (
				name, description, purpose, tone, domain_context,
				allowed_topics, restricted_topics, model_config, provider, active, owner_user_id
			)
			SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
			WHERE NOT EXISTS (
				SELECT 1 FROM agents WHERE name = $1 AND owner_user_id = $11
			)`

		_, err = tx.ExecContext(ctx, query,
			a.Name, a.Description, a.Purpose, a.Tone, a.DomainContext,
			allowed, restricted, a.ModelConfig, a.Provider, a.Active, a.OwnerUserID,
		)
		if err != nil {
			return fmt.Errorf("insert agent %q: %w", a.Name, err)
		}
	}

	return nil
}

func (s *AgentSeeder) load() ([]agents.CreateCommand, error) {
	if s.file != "" {
		return seeds.Load(s.file)
	}
	return seeds.Demo()
}
