package agents

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type cached struct {
	System
	cache *cache.Cache

	mu   sync.Mutex
	gens map[uuid.UUID]uint64
}

// NewCached wraps sys with a read-through cache for Find. Mutations evict the
// agent, and a lookup that raced a mutation does not repopulate the cache.
func NewCached(sys System, ttl time.Duration) System {
	return &cached{
		System: sys,
		cache:  cache.New(ttl, 2*ttl),
		gens:   make(map[uuid.UUID]uint64),
	}
}

func (c *cached) Find(ctx context.Context, id uuid.UUID) (*Agent, error) {
	key := id.String()
	if v, ok := c.cache.Get(key); ok {
		a := v.(Agent).Clone()
		return &a, nil
	}

	gen := c.generation(id)

	a, err := c.System.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gens[id] == gen {
		c.cache.SetDefault(key, a.Clone())
	}
	c.mu.Unlock()

	return a, nil
}

func (c *cached) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Agent, error) {
	defer c.evict(id)
	return c.System.Update(ctx, id, cmd)
}

func (c *cached) ToggleActive(ctx context.Context, id uuid.UUID) (*Agent, error) {
	defer c.evict(id)
	return c.System.ToggleActive(ctx, id)
}

func (c *cached) Delete(ctx context.Context, id uuid.UUID) error {
	defer c.evict(id)
	return c.System.Delete(ctx, id)
}

func (c *cached) generation(id uuid.UUID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id]
}

func (c *cached) evict(id uuid.UUID) {
	c.mu.Lock()
	c.gens[id]++
	c.cache.Delete(id.String())
	c.mu.Unlock()
}
