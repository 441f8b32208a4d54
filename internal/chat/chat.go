// Package chat answers a user's message: it resolves the agent and session,
// records the user turn, and replies with the provider's completion, an
// apology, or a disabled-agent notice.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/agent-chat/internal/agents"
	"github.com/JaimeStill/agent-chat/internal/prompt"
	"github.com/JaimeStill/agent-chat/internal/providers"
	"github.com/JaimeStill/agent-chat/internal/sessions"
	"github.com/JaimeStill/agent-chat/internal/tokens"
	"github.com/JaimeStill/agent-chat/pkg/logging"
	"github.com/JaimeStill/agent-chat/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// Apology replaces the completion when the provider fails.
	Apology = "Sorry, I couldn't generate a response right now."

	// DisabledNotice answers messages sent to an inactive agent.
	DisabledNotice = "This assistant is currently disabled. Please contact the administrator or choose another assistant."
)

// persistTimeout bounds the assistant write once it is detached from the caller.
const persistTimeout = 5 * time.Second

// SendCommand is a user's message to an agent. A nil SessionID, or one that
// does not resolve to a session of this user and agent, starts a new session.
type SendCommand struct {
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	AgentID   uuid.UUID  `json:"agent_id"`
	UserID    string     `json:"user_id"`
	Text      string     `json:"text"`
}

// Reply is the answer to a SendCommand.
type Reply struct {
	Message   sessions.Message
	SessionID uuid.UUID
}

// View is the web representation of a Reply.
type View struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SessionID uuid.UUID `json:"session_id"`
	ModelUsed string    `json:"model_used,omitempty"`
}

// View returns the web representation of r.
func (r Reply) View() View {
	return View{
		Role:      r.Message.Role,
		Content:   r.Message.Content,
		Timestamp: r.Message.Timestamp,
		SessionID: r.SessionID,
		ModelUsed: r.Message.ModelUsed,
	}
}

// AgentFinder resolves agents by id.
type AgentFinder interface {
	Find(ctx context.Context, id uuid.UUID) (*agents.Agent, error)
}

// Orchestrator composes the agent, session, and provider systems.
type Orchestrator struct {
	agents   AgentFinder
	sessions sessions.System
	gateway  providers.Gateway
	tokens   tokens.Counter
	metrics  *Metrics
	logger   *slog.Logger
}

// New creates an Orchestrator.
func New(
	agents AgentFinder,
	sessions sessions.System,
	gateway providers.Gateway,
	counter tokens.Counter,
	metrics *Metrics,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		agents:   agents,
		sessions: sessions,
		gateway:  gateway,
		tokens:   counter,
		metrics:  metrics,
		logger:   logger.With("system", "chat"),
	}
}

// SendMessage answers cmd.
//
// An unknown agent or empty text fails before anything is written. The user
// turn is persisted before the agent's active flag is checked; an inactive
// agent answers with a system notice that is not persisted. Provider failures
// are answered with a persisted apology, even when the caller's deadline
// expired during the provider call. Persistence errors abort the
// exchange and leave earlier writes in place.
func (o *Orchestrator) SendMessage(ctx context.Context, cmd SendCommand) (*Reply, error) {
	start := time.Now()
	defer func() { o.metrics.SendLatency.Observe(time.Since(start).Seconds()) }()

	ctx, span := tracing.Start(ctx, "chat.send",
		attribute.String("chat.agent_id", cmd.AgentID.String()),
		attribute.String("chat.user_id", cmd.UserID),
	)
	defer span.End()

	logger := logging.FromContext(ctx, o.logger)

	reply, outcome, err := o.send(ctx, logger, cmd)
	o.metrics.Sends.WithLabelValues(outcome).Inc()
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("chat.session_id", reply.SessionID.String()),
		attribute.String("chat.outcome", outcome),
	)
	return reply, nil
}

func (o *Orchestrator) send(ctx context.Context, logger *slog.Logger, cmd SendCommand) (*Reply, string, error) {
	agent, err := o.agents.Find(ctx, cmd.AgentID)
	if errors.Is(err, agents.ErrNotFound) {
		return nil, OutcomeRejected, fmt.Errorf("%w: %s", ErrAgentNotFound, cmd.AgentID)
	}
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("resolve agent: %w", err)
	}

	if strings.TrimSpace(cmd.Text) == "" {
		return nil, OutcomeRejected, ErrEmptyMessage
	}

	session, err := o.resolveSession(ctx, logger, cmd, agent)
	if err != nil {
		return nil, OutcomeError, err
	}

	userMsg, err := o.append(ctx, session.ID, sessions.Message{
		Role:    sessions.RoleUser,
		Content: cmd.Text,
	})
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("persist user message: %w", err)
	}

	if !agent.Active {
		logger.Info("message sent to disabled agent", "agent_id", agent.ID, "session_id", session.ID)
		return &Reply{
			Message: sessions.Message{
				SessionID: session.ID,
				Role:      sessions.RoleSystem,
				Content:   DisabledNotice,
				Timestamp: userMsg.Timestamp,
			},
			SessionID: session.ID,
		}, OutcomeDisabled, nil
	}

	history, err := o.sessions.ListMessages(ctx, session.ID)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("load history: %w", err)
	}

	res, err := o.gateway.Generate(ctx, providers.Request{
		Provider:     agent.Provider,
		Model:        agent.ModelConfig,
		SystemPrompt: prompt.Build(*agent),
		Messages:     turns(history),
	})
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("%w: %w", ErrProvider, err)
	}

	outcome := OutcomeCompleted
	content := res.Text
	if res.Failed() {
		outcome = OutcomeApology
		content = Apology
		o.metrics.ProviderFailures.WithLabelValues(string(agent.Provider), string(res.Failure.Reason)).Inc()
		logger.Warn("answering with apology",
			"agent_id", agent.ID,
			"session_id", session.ID,
			"reason", res.Failure.Reason,
			"error", res.Failure.Err,
		)
	}

	model := res.Model
	if model == "" {
		model = agent.ModelConfig
	}

	// The provider call may have consumed the caller's deadline; the reply,
	// apology included, is still recorded.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	assistantMsg, err := o.append(persistCtx, session.ID, sessions.Message{
		Role:      sessions.RoleAssistant,
		Content:   content,
		ModelUsed: model,
	})
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("persist assistant message: %w", err)
	}

	return &Reply{Message: *assistantMsg, SessionID: session.ID}, outcome, nil
}

// resolveSession returns the requested session when it belongs to this user
// and agent, and otherwise creates a new one.
func (o *Orchestrator) resolveSession(ctx context.Context, logger *slog.Logger, cmd SendCommand, agent *agents.Agent) (*sessions.Session, error) {
	if cmd.SessionID != nil {
		s, err := o.sessions.Find(ctx, *cmd.SessionID)
		switch {
		case err == nil && s.UserID == cmd.UserID && s.AgentID == agent.ID:
			return s, nil
		case err == nil:
			logger.Warn("session does not match user or agent, starting a new one", "session_id", s.ID)
		case errors.Is(err, sessions.ErrNotFound):
			logger.Info("session not found, starting a new one", "session_id", *cmd.SessionID)
		default:
			return nil, fmt.Errorf("resolve session: %w", err)
		}
	}

	s, err := o.sessions.Create(ctx, cmd.UserID, agent.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

func (o *Orchestrator) append(ctx context.Context, sessionID uuid.UUID, m sessions.Message) (*sessions.Message, error) {
	m.TokenCount = o.tokens.Count(m.Content)
	appended, err := o.sessions.AppendMessage(ctx, sessionID, m)
	if err != nil {
		return nil, err
	}
	o.metrics.Tokens.WithLabelValues(m.Role).Add(float64(m.TokenCount))
	return appended, nil
}

// turns converts persisted history into provider turns. System messages are skipped.
func turns(history []sessions.Message) []providers.Turn {
	result := make([]providers.Turn, 0, len(history))
	for _, m := range history {
		if m.Role == sessions.RoleSystem {
			continue
		}
		result = append(result, providers.Turn{Role: m.Role, Content: m.Content})
	}
	return result
}
