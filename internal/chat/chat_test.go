package chat_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/agent-chat/internal/agents"
	"github.com/JaimeStill/agent-chat/internal/chat"
	"github.com/JaimeStill/agent-chat/internal/providers"
	"github.com/JaimeStill/agent-chat/internal/sessions"
	"github.com/JaimeStill/agent-chat/internal/tokens"
	"github.com/JaimeStill/agent-chat/pkg/pagination"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeGateway struct {
	mu       sync.Mutex
	requests []providers.Request
	result   providers.Result
	err      error
}

func (g *fakeGateway) Generate(ctx context.Context, req providers.Request) (providers.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return g.result, g.err
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// deadlineStore rejects appends on a finished context, as a database
// transaction would.
type deadlineStore struct {
	sessions.System
}

func (s deadlineStore) AppendMessage(ctx context.Context, id uuid.UUID, m sessions.Message) (*sessions.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.System.AppendMessage(ctx, id, m)
}

// slowGateway waits out the caller's deadline and reports a timeout.
type slowGateway struct{}

func (slowGateway) Generate(ctx context.Context, req providers.Request) (providers.Result, error) {
	<-ctx.Done()
	return providers.Result{
		Model:   req.Model,
		Failure: &providers.Failure{Reason: providers.ReasonTimeout, Err: ctx.Err()},
	}, nil
}

type fixture struct {
	orchestrator *chat.Orchestrator
	agents       agents.System
	sessions     sessions.System
	gateway      *fakeGateway
	metrics      *chat.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	agentSys := agents.NewMemory(logger, pagination.Config{DefaultPageSize: 10, MaxPageSize: 50})
	sessionSys := sessions.NewMemory(agentSys, logger)
	gateway := &fakeGateway{result: providers.Result{Text: "Hi there!", Model: "gpt-4"}}
	metrics := chat.NewMetrics(prometheus.NewRegistry())

	return &fixture{
		orchestrator: chat.New(agentSys, sessionSys, gateway, tokens.Estimator{}, metrics, logger),
		agents:       agentSys,
		sessions:     sessionSys,
		gateway:      gateway,
		metrics:      metrics,
	}
}

func (f *fixture) agent(t *testing.T, cmd agents.CreateCommand) *agents.Agent {
	t.Helper()
	a, err := f.agents.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return a
}

func tutor() agents.CreateCommand {
	return agents.CreateCommand{
		Name:          "Go Tutor",
		Purpose:       "Teach Go",
		Tone:          "patient",
		AllowedTopics: []string{"go"},
		ModelConfig:   "gpt-4",
	}
}

func TestSendMessage_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := f.agent(t, tutor())

	reply, err := f.orchestrator.SendMessage(ctx, chat.SendCommand{AgentID: agent.ID, UserID: "u1", Text: "Hello"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	view := reply.View()
	if view.Role != "assistant" || view.Content != "Hi there!" || view.ModelUsed != "gpt-4" {
		t.Errorf("reply = %+v", view)
	}
	if view.SessionID == uuid.Nil {
		t.Fatal("reply has no session id")
	}

	msgs, err := f.sessions.ListMessages(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[0].Content != "Hello" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Role != "assistant" || msgs[1].Content != "Hi there!" || msgs[1].ModelUsed != "gpt-4" {
		t.Errorf("second message = %+v", msgs[1])
	}
	if msgs[0].TokenCount != 2 || msgs[1].TokenCount != 3 {
		t.Errorf("token counts = %d, %d", msgs[0].TokenCount, msgs[1].TokenCount)
	}

	req := f.gateway.requests[0]
	if req.Provider != agents.ProviderOpenAI || req.Model != "gpt-4" {
		t.Errorf("request provider/model = %s/%s", req.Provider, req.Model)
	}
	if !strings.Contains(req.SystemPrompt, "- Purpose: Teach Go\n") {
		t.Errorf("system prompt = %q", req.SystemPrompt)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "Hello" {
		t.Errorf("history = %+v", req.Messages)
	}

	if got := testutil.ToFloat64(f.metrics.Sends.WithLabelValues(chat.OutcomeCompleted)); got != 1 {
		t.Errorf("completed sends = %v, want 1", got)
	}
}

func TestSendMessage_ContinuesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := f.agent(t, tutor())

	first, _ := f.orchestrator.SendMessage(ctx, chat.SendCommand{AgentID: agent.ID, UserID: "u1", Text: "One"})
	sid := first.SessionID

	second, err := f.orchestrator.SendMessage(ctx, chat.SendCommand{SessionID: &sid, AgentID: agent.ID, UserID: "u1", Text: "Two"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if second.SessionID != sid {
		t.Error("second send should reuse the session")
	}

	req := f.gateway.requests[1]
	want := []string{"One", "Hi there!", "Two"}
	if len(req.Messages) != len(want) {
		t.Fatalf("history len = %d, want %d", len(req.Messages), len(want))
	}
	for i, w := range want {
		if req.Messages[i].Content != w {
			t.Errorf("history[%d] = %q, want %q", i, req.Messages[i].Content, w)
		}
	}
}

func TestSendMessage_MismatchedSessionStartsNew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := f.agent(t, tutor())

	first, _ := f.orchestrator.SendMessage(ctx, chat.SendCommand{AgentID: agent.ID, UserID: "u1", Text: "mine"})
	sid := first.SessionID

	other, err := f.orchestrator.SendMessage(ctx, chat.SendCommand{SessionID: &sid, AgentID: agent.ID, UserID: "u2", Text: "not yours"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if other.SessionID == sid {
		t.Error("another user's session must not be reused")
	}

	missing := uuid.New()
	fresh, err := f.orchestrator.SendMessage(ctx, chat.SendCommand{SessionID: &missing, AgentID: agent.ID, UserID: "u1", Text: "hi"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if fresh.SessionID == missing || fresh.SessionID == sid {
		t.Error("an unknown session id should start a new session")
	}

	msgs, _ := f.sessions.ListMessages(ctx, sid)
	if len(msgs) != 2 {
		t.Errorf("original session has %d messages, want 2", len(msgs))
	}
}

func TestSendMessage_UnknownAgent(t *testing.T) {
	f := newFixture(t)

	_, err := f.orchestrator.SendMessage(context.Background(), chat.SendCommand{AgentID: uuid.New(), UserID: "u1", Text: "Hello"})
	if !errors.Is(err, chat.ErrAgentNotFound) {
		t.Fatalf("SendMessage() error = %v, want ErrAgentNotFound", err)
	}
	if chat.MapHTTPStatus(err) != 404 {
		t.Errorf("MapHTTPStatus() = %d, want 404", chat.MapHTTPStatus(err))
	}

	list, _ := f.sessions.ListByUser(context.Background(), "u1")
	if len(list) != 0 {
		t.Error("no session should be created for an unknown agent")
	}
	if f.gateway.calls() != 0 {
		t.Error("provider should not be called")
	}
}

func TestSendMessage_EmptyText(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, tutor())

	_, err := f.orchestrator.SendMessage(context.Background(), chat.SendCommand{AgentID: agent.ID, UserID: "u1", Text: "   "})
	if !errors.Is(err, chat.ErrEmptyMessage) {
		t.Fatalf("SendMessage() error = %v, want ErrEmptyMessage", err)
	}

	list, _ := f.sessions.ListByUser(context.Background(), "u1")
	if len(list) != 0 {
		t.Error("nothing should be persisted for empty text")
	}
}

func TestSendMessage_DisabledAgent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cmd := tutor()
	inactive := false
	cmd.Active = &inactive
	agent := f.agent(t, cmd)

	reply, err := f.orchestrator.SendMessage(ctx, chat.SendCommand{AgentID: agent.ID, UserID: "u1", Text: "Hello"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if reply.Message.Role != "system" || reply.Message.Content != chat.DisabledNotice {
		t.Errorf("reply = %+v, want disabled notice", reply.Message)
	}
	if f.gateway.calls() != 0 {
		t.Error("provider must not be called for a disabled agent")
	}

	msgs, _ := f.sessions.ListMessages(ctx, reply.SessionID)
	if len(msgs) != 1 || msgs[0].Role != "user" {
		t.Errorf("persisted = %+v, want only the user message", msgs)
	}
}

func TestSendMessage_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := f.agent(t, tutor())

	f.gateway.result = providers.Result{
		Model:   "gpt-4",
		Failure: &providers.Failure{Reason: providers.ReasonTimeout, Err: context.DeadlineExceeded},
	}

	reply, err := f.orchestrator.SendMessage(ctx, chat.SendCommand{AgentID: agent.ID, UserID: "u1", Text: "Hello"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if reply.Message.Role != "assistant" || reply.Message.Content != chat.Apology {
		t.Errorf("reply = %+v, want apology", reply.Message)
	}

	msgs, _ := f.sessions.ListMessages(ctx, reply.SessionID)
	if len(msgs) != 2 || msgs[1].Content != chat.Apology {
		t.Errorf("persisted = %+v, want user message and apology", msgs)
	}

	failures := f.metrics.ProviderFailures.WithLabelValues("openai", "timeout")
	if got := testutil.ToFloat64(failures); got != 1 {
		t.Errorf("provider failures = %v, want 1", got)
	}
}

func TestSendMessage_ProviderMisconfigured(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, tutor())
	f.gateway.err = providers.ErrNotConfigured

	_, err := f.orchestrator.SendMessage(context.Background(), chat.SendCommand{AgentID: agent.ID, UserID: "u1", Text: "Hello"})
	if !errors.Is(err, chat.ErrProvider) || !errors.Is(err, providers.ErrNotConfigured) {
		t.Fatalf("SendMessage() error = %v, want ErrProvider wrapping ErrNotConfigured", err)
	}
	if chat.MapHTTPStatus(err) != 502 {
		t.Errorf("MapHTTPStatus() = %d, want 502", chat.MapHTTPStatus(err))
	}
}

func TestSendMessage_MissingUser(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, tutor())

	_, err := f.orchestrator.SendMessage(context.Background(), chat.SendCommand{AgentID: agent.ID, Text: "Hello"})
	if !errors.Is(err, sessions.ErrCreationFailed) {
		t.Fatalf("SendMessage() error = %v, want ErrCreationFailed", err)
	}
	if chat.MapHTTPStatus(err) != 400 {
		t.Errorf("MapHTTPStatus() = %d, want 400", chat.MapHTTPStatus(err))
	}
}

func TestSendMessage_DeadlineDuringProviderCall(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, tutor())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := deadlineStore{System: f.sessions}

	orchestrator := chat.New(f.agents, store, slowGateway{}, tokens.Estimator{}, f.metrics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	reply, err := orchestrator.SendMessage(ctx, chat.SendCommand{AgentID: agent.ID, UserID: "u1", Text: "Hello"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v, want apology", err)
	}
	if reply.Message.Content != chat.Apology || reply.Message.ModelUsed != "gpt-4" {
		t.Errorf("reply = %+v, want apology", reply.Message)
	}

	msgs, _ := f.sessions.ListMessages(context.Background(), reply.SessionID)
	if len(msgs) != 2 || msgs[1].Content != chat.Apology {
		t.Errorf("persisted = %+v, want user message and apology", msgs)
	}
}
