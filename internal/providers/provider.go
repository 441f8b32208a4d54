// Package providers sends a system prompt and conversation history to an LLM
// backend and returns the completion text.
//
// Ordinary failures (timeouts, transport errors, non-2xx responses, malformed
// bodies, an open breaker, a saturated pool) are reported as a Failure on the
// Result. The error return is reserved for misconfiguration.
package providers

import (
	"context"
	"fmt"

	"github.com/JaimeStill/agent-chat/internal/agents"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one message of conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request asks a backend for a completion. An empty Model selects the
// backend's default model.
type Request struct {
	Provider     agents.Provider
	Model        string
	SystemPrompt string
	Messages     []Turn
}

// Result carries either completion Text or a Failure.
type Result struct {
	Text    string
	Model   string
	Failure *Failure
}

// Failed reports whether the call produced no completion.
func (r Result) Failed() bool {
	return r.Failure != nil
}

// Reason classifies a Failure.
type Reason string

const (
	ReasonTimeout     Reason = "timeout"
	ReasonCanceled    Reason = "canceled"
	ReasonTransport   Reason = "transport"
	ReasonStatus      Reason = "status"
	ReasonMalformed   Reason = "malformed"
	ReasonUnavailable Reason = "unavailable"
	ReasonSaturated   Reason = "saturated"
)

// Failure describes why a backend call produced no completion.
// Status is the HTTP status for ReasonStatus and zero otherwise.
type Failure struct {
	Reason Reason
	Status int
	Err    error
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("provider %s (%d): %v", f.Reason, f.Status, f.Err)
	}
	return fmt.Sprintf("provider %s: %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// trips reports whether the failure should count against the circuit breaker.
func (f *Failure) trips() bool {
	switch f.Reason {
	case ReasonTimeout, ReasonTransport:
		return true
	case ReasonStatus:
		return f.Status >= 500 || f.Status == 429
	default:
		return false
	}
}

func failed(reason Reason, status int, err error) Result {
	return Result{Failure: &Failure{Reason: reason, Status: status, Err: err}}
}

// Gateway generates completions.
type Gateway interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// Backend is a Gateway for a single provider.
type Backend interface {
	Gateway
	Provider() agents.Provider
}

// latestUserTurn returns the content of the last user turn, or "".
func latestUserTurn(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			return turns[i].Content
		}
	}
	return ""
}
