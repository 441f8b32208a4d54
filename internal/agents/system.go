package agents

import (
	"context"

	"github.com/JaimeStill/agent-chat/pkg/pagination"
	"github.com/google/uuid"
)

// System defines agent policy storage and retrieval.
// Mutations are atomic per agent and never block other agents.
type System interface {
	Create(ctx context.Context, cmd CreateCommand) (*Agent, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Agent, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*Agent, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, id uuid.UUID) (*Agent, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Agent, error)
	Search(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Agent], error)
}
