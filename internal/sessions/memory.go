package sessions

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type entry struct {
	mu       sync.Mutex
	session  Session
	messages []Message
	deleted  bool
}

type memory struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	agents  AgentFinder
	logger  *slog.Logger
}

// NewMemory creates an in-process session store. Appends serialize on a
// per-session lock; unrelated sessions never contend.
func NewMemory(agents AgentFinder, logger *slog.Logger) System {
	return &memory{
		entries: make(map[uuid.UUID]*entry),
		agents:  agents,
		logger:  logger.With("system", "session"),
	}
}

func (m *memory) Create(ctx context.Context, userID string, agentID uuid.UUID) (*Session, error) {
	s, err := newSession(ctx, m.agents, userID, agentID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[s.ID] = &entry{session: s, messages: []Message{}}
	m.mu.Unlock()

	m.logger.Info("session created", "id", s.ID, "user_id", s.UserID, "agent_id", s.AgentID)
	return &s, nil
}

func (m *memory) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	e, ok := m.entry(id)
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return nil, ErrNotFound
	}
	s := e.session
	return &s, nil
}

func (m *memory) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	result := make([]Session, 0)
	for _, e := range entries {
		e.mu.Lock()
		s, deleted := e.session, e.deleted
		e.mu.Unlock()

		if !deleted && s.UserID == userID {
			result = append(result, s)
		}
	}

	slices.SortFunc(result, func(a, b Session) int {
		if c := b.LastActivity.Compare(a.LastActivity); c != 0 {
			return c
		}
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return result, nil
}

func (m *memory) AppendMessage(ctx context.Context, sessionID uuid.UUID, msg Message) (*Message, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}

	e, ok := m.entry(sessionID)
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return nil, ErrNotFound
	}

	msg.SessionID = sessionID
	msg.Timestamp = stamp(e.session.LastActivity)
	msg.ID = newMessageID(msg.Timestamp)

	e.messages = append(e.messages, msg)
	e.session.LastActivity = msg.Timestamp
	e.session.TotalTokensUsed += msg.TokenCount

	return &msg, nil
}

func (m *memory) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]Message, error) {
	e, ok := m.entry(sessionID)
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return nil, ErrNotFound
	}
	return slices.Clone(e.messages), nil
}

func (m *memory) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	e.deleted = true
	e.messages = nil
	e.mu.Unlock()

	m.logger.Info("session deleted", "id", id)
	return nil
}

func (m *memory) entry(id uuid.UUID) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	return e, ok
}
