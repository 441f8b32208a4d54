package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/agent-chat/internal/agents"
)

const (
	openaiTemperature = 0.7
	openaiMaxTokens   = 1000
)

type openai struct {
	poster
	cfg BackendConfig
}

// NewOpenAI creates a backend for the OpenAI chat-completions API.
func NewOpenAI(cfg BackendConfig, client *http.Client, maxResponse int64) Backend {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &openai{
		poster: poster{client: client, limit: maxResponse},
		cfg:    cfg,
	}
}

func (p *openai) Provider() agents.Provider {
	return agents.ProviderOpenAI
}

func (p *openai) Generate(ctx context.Context, req Request) (Result, error) {
	if p.cfg.APIKey == "" {
		return Result{}, fmt.Errorf("%w: openai api key", ErrNotConfigured)
	}

	model := req.Model
	if model == "" {
		model = p.cfg.DefaultModel
	}

	messages := make([]Turn, 0, len(req.Messages)+1)
	messages = append(messages, Turn{Role: RoleSystem, Content: req.SystemPrompt})
	messages = append(messages, req.Messages...)

	body, err := json.Marshal(openaiRequest{
		Model:       model,
		Messages:    messages,
		Temperature: openaiTemperature,
		MaxTokens:   openaiMaxTokens,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	data, failure := p.postJSON(ctx, p.cfg.BaseURL+"/chat/completions", body, map[string]string{
		"Authorization": "Bearer " + p.cfg.APIKey,
	})
	if failure != nil {
		return Result{Model: model, Failure: failure}, nil
	}

	var resp openaiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Result{Model: model, Failure: &Failure{Reason: ReasonMalformed, Err: err}}, nil
	}
	if len(resp.Choices) == 0 {
		return Result{Model: model, Failure: &Failure{Reason: ReasonMalformed, Err: fmt.Errorf("no choices in response")}}, nil
	}

	msg := resp.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return Result{Model: model, Failure: &Failure{Reason: ReasonMalformed, Err: fmt.Errorf("no message content in response")}}, nil
	}

	return Result{Text: *msg.Content, Model: model}, nil
}

type openaiRequest struct {
	Model       string  `json:"model"`
	Messages    []Turn  `json:"messages"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type openaiResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
