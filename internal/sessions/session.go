// Package sessions stores conversations: a session between one user and one
// agent, and its ordered message history.
package sessions

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Session is a conversation between a user and an agent. UserID and AgentID
// never change after creation.
type Session struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	AgentID         uuid.UUID `json:"agent_id"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"created_at"`
	LastActivity    time.Time `json:"last_activity"`
	Active          bool      `json:"active"`
	TotalTokensUsed int       `json:"total_tokens_used"`
}

// Message is one immutable entry of a session's history.
type Message struct {
	ID         ulid.ULID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	TokenCount int       `json:"token_count"`
	Flagged    bool      `json:"flagged"`
	FlagReason string    `json:"flag_reason,omitempty"`
	ModelUsed  string    `json:"model_used,omitempty"`
}

func (m Message) validate() error {
	switch m.Role {
	case RoleUser, RoleAssistant, RoleSystem:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, m.Role)
	}
	if m.TokenCount < 0 {
		return fmt.Errorf("%w: negative token count", ErrInvalidMessage)
	}
	return nil
}

// Title returns the default title of a conversation with the named agent.
func Title(agentName string) string {
	return "Conversation with " + agentName
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// stamp returns the timestamp for a message appended after lastActivity.
// It never precedes lastActivity, so history order survives clock skew.
func stamp(lastActivity time.Time) time.Time {
	t := now()
	if t.Before(lastActivity) {
		return lastActivity
	}
	return t
}

func newMessageID(ts time.Time) ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(ts), ulid.DefaultEntropy())
}
