package agents

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/agent-chat/pkg/query"
	"github.com/JaimeStill/agent-chat/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "agents", "a").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("purpose", "Purpose").
	Project("tone", "Tone").
	Project("domain_context", "DomainContext").
	Project("allowed_topics", "AllowedTopics").
	Project("restricted_topics", "RestrictedTopics").
	Project("model_config", "ModelConfig").
	Project("provider", "Provider").
	Project("active", "Active").
	Project("owner_user_id", "OwnerUserID").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "Name"}

func scanAgent(s repository.Scanner) (Agent, error) {
	var (
		a                 Agent
		allowed, restrict []byte
	)

	err := s.Scan(
		&a.ID, &a.Name, &a.Description, &a.Purpose, &a.Tone, &a.DomainContext,
		&allowed, &restrict, &a.ModelConfig, &a.Provider, &a.Active, &a.OwnerUserID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return a, err
	}

	if a.AllowedTopics, err = decodeTopics(allowed); err != nil {
		return a, fmt.Errorf("decode allowed_topics: %w", err)
	}
	if a.RestrictedTopics, err = decodeTopics(restrict); err != nil {
		return a, fmt.Errorf("decode restricted_topics: %w", err)
	}
	return a, nil
}

func encodeTopics(topics []string) ([]byte, error) {
	return json.Marshal(cloneTopics(topics))
}

func decodeTopics(data []byte) ([]string, error) {
	topics := []string{}
	if len(data) == 0 {
		return topics, nil
	}
	if err := json.Unmarshal(data, &topics); err != nil {
		return nil, err
	}
	return cloneTopics(topics), nil
}

// sortAgents orders agents by the requested fields, falling back to name.
// Unknown fields are ignored.
func sortAgents(items []Agent, fields []query.SortField) {
	valid := make([]query.SortField, 0, len(fields))
	for _, f := range fields {
		if _, ok := comparators[f.Field]; ok {
			valid = append(valid, f)
		}
	}
	if len(valid) == 0 {
		valid = []query.SortField{defaultSort}
	}

	slices.SortStableFunc(items, func(a, b Agent) int {
		for _, f := range valid {
			c := comparators[f.Field](a, b)
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

var comparators = map[string]func(a, b Agent) int{
	"Name": func(a, b Agent) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	},
	"Provider":  func(a, b Agent) int { return cmp.Compare(a.Provider, b.Provider) },
	"CreatedAt": func(a, b Agent) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"UpdatedAt": func(a, b Agent) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}
