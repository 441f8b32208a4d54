package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JaimeStill/agent-chat/internal/agents"
)

type gemini struct {
	poster
	cfg BackendConfig
}

// NewGemini creates a backend for the Gemini generateContent API. Gemini
// receives a single user turn: the system prompt followed by the latest
// user message.
func NewGemini(cfg BackendConfig, client *http.Client, maxResponse int64) Backend {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &gemini{
		poster: poster{client: client, limit: maxResponse},
		cfg:    cfg,
	}
}

func (p *gemini) Provider() agents.Provider {
	return agents.ProviderGemini
}

func (p *gemini) Generate(ctx context.Context, req Request) (Result, error) {
	if p.cfg.APIKey == "" {
		return Result{}, fmt.Errorf("%w: gemini api key", ErrNotConfigured)
	}

	model := req.Model
	if model == "" {
		model = p.cfg.DefaultModel
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  RoleUser,
			Parts: []geminiPart{{Text: req.SystemPrompt + "\n" + latestUserTurn(req.Messages)}},
		}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf(
		"%s/v1beta/models/%s:generateContent?key=%s",
		p.cfg.BaseURL, url.PathEscape(model), url.QueryEscape(p.cfg.APIKey),
	)

	data, failure := p.postJSON(ctx, endpoint, body, nil)
	if failure != nil {
		return Result{Model: model, Failure: failure}, nil
	}

	var resp geminiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Result{Model: model, Failure: &Failure{Reason: ReasonMalformed, Err: err}}, nil
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Result{Model: model, Failure: &Failure{Reason: ReasonMalformed, Err: fmt.Errorf("no candidates in response")}}, nil
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	if text == nil {
		return Result{Model: model, Failure: &Failure{Reason: ReasonMalformed, Err: fmt.Errorf("no text in response")}}, nil
	}

	return Result{Text: *text, Model: model}, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}
