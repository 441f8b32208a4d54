package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JaimeStill/agent-chat/internal/agents"
	"github.com/google/uuid"
)

// System defines session lifecycle and message history storage.
// Appends to one session are linearizable.
type System interface {
	Create(ctx context.Context, userID string, agentID uuid.UUID) (*Session, error)
	Find(ctx context.Context, id uuid.UUID) (*Session, error)
	ListByUser(ctx context.Context, userID string) ([]Session, error)

	// AppendMessage assigns the message id and timestamp, appends it, and
	// advances the session's last activity and token total.
	AppendMessage(ctx context.Context, sessionID uuid.UUID, m Message) (*Message, error)

	// ListMessages returns the history in timestamp order, ties in append order.
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]Message, error)

	// Delete removes the session and its messages.
	Delete(ctx context.Context, id uuid.UUID) error
}

// AgentFinder resolves the agent a session is created for.
type AgentFinder interface {
	Find(ctx context.Context, id uuid.UUID) (*agents.Agent, error)
}

// newSession validates the creation request and returns an unsaved session.
func newSession(ctx context.Context, finder AgentFinder, userID string, agentID uuid.UUID) (Session, error) {
	if strings.TrimSpace(userID) == "" {
		return Session{}, fmt.Errorf("%w: user id is required", ErrCreationFailed)
	}

	agent, err := finder.Find(ctx, agentID)
	if errors.Is(err, agents.ErrNotFound) {
		return Session{}, fmt.Errorf("%w: %w", ErrCreationFailed, err)
	}
	if err != nil {
		return Session{}, fmt.Errorf("resolve agent: %w", err)
	}

	ts := now()
	return Session{
		ID:           uuid.New(),
		UserID:       userID,
		AgentID:      agent.ID,
		Title:        Title(agent.Name),
		CreatedAt:    ts,
		LastActivity: ts,
		Active:       true,
	}, nil
}
