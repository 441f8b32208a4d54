// Package agents manages agent policies: the persona, topic boundaries, model,
// and provider an assistant answers with, and whether it is active.
package agents

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider identifies the LLM backend an agent is served by.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	return p == ProviderOpenAI || p == ProviderGemini
}

// Agent is an assistant's behavioral policy.
type Agent struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Purpose          string    `json:"purpose"`
	Tone             string    `json:"tone"`
	DomainContext    string    `json:"domain_context,omitempty"`
	AllowedTopics    []string  `json:"allowed_topics"`
	RestrictedTopics []string  `json:"restricted_topics"`
	ModelConfig      string    `json:"model_config"`
	Provider         Provider  `json:"provider"`
	Active           bool      `json:"active"`
	OwnerUserID      string    `json:"owner_user_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Clone returns a copy that shares no slices with a.
func (a Agent) Clone() Agent {
	a.AllowedTopics = cloneTopics(a.AllowedTopics)
	a.RestrictedTopics = cloneTopics(a.RestrictedTopics)
	return a
}

// CreateCommand contains the data required to create a new agent.
// Provider defaults to openai and Active defaults to true.
type CreateCommand struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Purpose          string   `json:"purpose"`
	Tone             string   `json:"tone"`
	DomainContext    string   `json:"domain_context"`
	AllowedTopics    []string `json:"allowed_topics"`
	RestrictedTopics []string `json:"restricted_topics"`
	ModelConfig      string   `json:"model_config"`
	Provider         Provider `json:"provider"`
	Active           *bool    `json:"active"`
	OwnerUserID      string   `json:"owner_user_id"`
}

// Agent validates cmd and returns the agent it describes, without an ID or timestamps.
func (cmd CreateCommand) Agent() (Agent, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return Agent{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	provider := cmd.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}
	if !provider.Valid() {
		return Agent{}, fmt.Errorf("%w: unknown provider %q", ErrInvalid, provider)
	}

	active := true
	if cmd.Active != nil {
		active = *cmd.Active
	}

	return Agent{
		Name:             name,
		Description:      cmd.Description,
		Purpose:          cmd.Purpose,
		Tone:             cmd.Tone,
		DomainContext:    cmd.DomainContext,
		AllowedTopics:    cloneTopics(cmd.AllowedTopics),
		RestrictedTopics: cloneTopics(cmd.RestrictedTopics),
		ModelConfig:      cmd.ModelConfig,
		Provider:         provider,
		Active:           active,
		OwnerUserID:      cmd.OwnerUserID,
	}, nil
}

// UpdateCommand is a partial update. Nil fields leave the stored value
// unchanged. An empty, non-nil topic list clears the field.
type UpdateCommand struct {
	Name             *string   `json:"name,omitempty"`
	Description      *string   `json:"description,omitempty"`
	Purpose          *string   `json:"purpose,omitempty"`
	Tone             *string   `json:"tone,omitempty"`
	DomainContext    *string   `json:"domain_context,omitempty"`
	AllowedTopics    *[]string `json:"allowed_topics,omitempty"`
	RestrictedTopics *[]string `json:"restricted_topics,omitempty"`
	ModelConfig      *string   `json:"model_config,omitempty"`
	Provider         *Provider `json:"provider,omitempty"`
	Active           *bool     `json:"active,omitempty"`
}

// Apply writes the supplied fields onto a. a is left untouched when validation fails.
func (cmd UpdateCommand) Apply(a *Agent) error {
	next := a.Clone()

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return fmt.Errorf("%w: name cannot be empty", ErrInvalid)
		}
		next.Name = name
	}
	if cmd.Provider != nil {
		if !cmd.Provider.Valid() {
			return fmt.Errorf("%w: unknown provider %q", ErrInvalid, *cmd.Provider)
		}
		next.Provider = *cmd.Provider
	}
	if cmd.Description != nil {
		next.Description = *cmd.Description
	}
	if cmd.Purpose != nil {
		next.Purpose = *cmd.Purpose
	}
	if cmd.Tone != nil {
		next.Tone = *cmd.Tone
	}
	if cmd.DomainContext != nil {
		next.DomainContext = *cmd.DomainContext
	}
	if cmd.AllowedTopics != nil {
		next.AllowedTopics = cloneTopics(*cmd.AllowedTopics)
	}
	if cmd.RestrictedTopics != nil {
		next.RestrictedTopics = cloneTopics(*cmd.RestrictedTopics)
	}
	if cmd.ModelConfig != nil {
		next.ModelConfig = *cmd.ModelConfig
	}
	if cmd.Active != nil {
		next.Active = *cmd.Active
	}

	*a = next
	return nil
}

func cloneTopics(topics []string) []string {
	if topics == nil {
		return []string{}
	}
	return slices.Clone(topics)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
