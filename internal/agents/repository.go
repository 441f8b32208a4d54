package agents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/agent-chat/pkg/pagination"
	"github.com/JaimeStill/agent-chat/pkg/query"
	"github.com/JaimeStill/agent-chat/pkg/repository"
	"github.com/google/uuid"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a PostgreSQL agents repository implementing the System interface.
// Updates lock the agent row for the duration of the transaction.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "agent"),
		pagination: pagination,
	}
}

func (r *repo) Search(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Agent], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count agents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	agents, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAgent)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}

	result := pagination.NewPageResult(agents, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) ListByOwner(ctx context.Context, ownerUserID string) ([]Agent, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("OwnerUserID", ownerUserID).
		BuildList()

	agents, err := repository.QueryMany(ctx, r.db, q, args, scanAgent)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	return agents, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Agent, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAgent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Agent, error) {
	a, err := cmd.Agent()
	if err != nil {
		return nil, err
	}

	allowed, err := encodeTopics(a.AllowedTopics)
	if err != nil {
		return nil, err
	}
	restricted, err := encodeTopics(a.RestrictedTopics)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO public.agents AS a (
			name, description, purpose, tone, domain_context,
			allowed_topics, restricted_topics, model_config, provider, active, owner_user_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s`, projection.Columns())

	args := []any{
		a.Name, a.Description, a.Purpose, a.Tone, a.DomainContext,
		allowed, restricted, a.ModelConfig, string(a.Provider), a.Active, a.OwnerUserID,
	}

	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Agent, error) {
		return repository.QueryOne(ctx, tx, q, args, scanAgent)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent created", "id", created.ID, "name", created.Name)
	return &created, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Agent, error) {
	selectQ, selectArgs := query.NewBuilder(projection).BuildSingle("ID", id)
	selectQ += " FOR UPDATE"

	updateQ := fmt.Sprintf(`
		UPDATE public.agents AS a
		SET name = $1, description = $2, purpose = $3, tone = $4, domain_context = $5,
			allowed_topics = $6, restricted_topics = $7, model_config = $8, provider = $9,
			active = $10, updated_at = NOW()
		WHERE a.id = $11
		RETURNING %s`, projection.Columns())

	updated, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Agent, error) {
		current, err := repository.QueryOne(ctx, tx, selectQ, selectArgs, scanAgent)
		if err != nil {
			return Agent{}, err
		}

		if err := cmd.Apply(&current); err != nil {
			return Agent{}, err
		}

		allowed, err := encodeTopics(current.AllowedTopics)
		if err != nil {
			return Agent{}, err
		}
		restricted, err := encodeTopics(current.RestrictedTopics)
		if err != nil {
			return Agent{}, err
		}

		args := []any{
			current.Name, current.Description, current.Purpose, current.Tone, current.DomainContext,
			allowed, restricted, current.ModelConfig, string(current.Provider), current.Active, id,
		}
		return repository.QueryOne(ctx, tx, updateQ, args, scanAgent)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent updated", "id", updated.ID, "name", updated.Name)
	return &updated, nil
}

func (r *repo) ToggleActive(ctx context.Context, id uuid.UUID) (*Agent, error) {
	q := fmt.Sprintf(`
		UPDATE public.agents AS a
		SET active = NOT a.active, updated_at = NOW()
		WHERE a.id = $1
		RETURNING %s`, projection.Columns())

	a, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanAgent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent toggled", "id", a.ID, "active", a.Active)
	return &a, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(ctx, tx, "DELETE FROM public.agents WHERE id = $1", id)
		return struct{}{}, err
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent deleted", "id", id)
	return nil
}
