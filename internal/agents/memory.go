package agents

import (
	"context"
	"log/slog"
	"sync"

	"github.com/JaimeStill/agent-chat/pkg/pagination"
	"github.com/google/uuid"
)

type entry struct {
	mu      sync.Mutex
	agent   Agent
	deleted bool
}

type memory struct {
	mu         sync.RWMutex
	entries    map[uuid.UUID]*entry
	logger     *slog.Logger
	pagination pagination.Config
}

// NewMemory creates an in-process agent store. The map lock is held only to
// resolve an entry; mutations serialize on the entry's own lock.
func NewMemory(logger *slog.Logger, pagination pagination.Config) System {
	return &memory{
		entries:    make(map[uuid.UUID]*entry),
		logger:     logger.With("system", "agent"),
		pagination: pagination,
	}
}

func (m *memory) Create(ctx context.Context, cmd CreateCommand) (*Agent, error) {
	a, err := cmd.Agent()
	if err != nil {
		return nil, err
	}

	a.ID = uuid.New()
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt

	m.mu.Lock()
	m.entries[a.ID] = &entry{agent: a}
	m.mu.Unlock()

	m.logger.Info("agent created", "id", a.ID, "name", a.Name)
	result := a.Clone()
	return &result, nil
}

func (m *memory) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Agent, error) {
	a, err := m.mutate(id, func(a *Agent) error {
		return cmd.Apply(a)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("agent updated", "id", a.ID, "name", a.Name)
	return a, nil
}

func (m *memory) ToggleActive(ctx context.Context, id uuid.UUID) (*Agent, error) {
	a, err := m.mutate(id, func(a *Agent) error {
		a.Active = !a.Active
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("agent toggled", "id", a.ID, "active", a.Active)
	return a, nil
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
	e.mu.Unlock()

	m.logger.Info("agent deleted", "id", id)
	return nil
}

func (m *memory) Find(ctx context.Context, id uuid.UUID) (*Agent, error) {
	e, ok := m.entry(id)
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return nil, ErrNotFound
	}
	a := e.agent.Clone()
	return &a, nil
}

func (m *memory) ListByOwner(ctx context.Context, ownerUserID string) ([]Agent, error) {
	items := m.snapshot(Filters{Owner: &ownerUserID}, nil)
	sortAgents(items, nil)
	return items, nil
}

func (m *memory) Search(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Agent], error) {
	page.Normalize(m.pagination)

	items := m.snapshot(filters, page.Search)
	sortAgents(items, page.Sort)

	result := pagination.Slice(items, page)
	return &result, nil
}

func (m *memory) entry(id uuid.UUID) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	return e, ok
}

func (m *memory) mutate(id uuid.UUID, fn func(*Agent) error) (*Agent, error) {
	e, ok := m.entry(id)
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return nil, ErrNotFound
	}

	next := e.agent.Clone()
	if err := fn(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = now()
	e.agent = next

	result := next.Clone()
	return &result, nil
}

func (m *memory) snapshot(filters Filters, search *string) []Agent {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	items := make([]Agent, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		a, deleted := e.agent.Clone(), e.deleted
		e.mu.Unlock()

		if !deleted && filters.Match(a) && matchSearch(a, search) {
			items = append(items, a)
		}
	}
	return items
}
