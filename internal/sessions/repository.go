package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/agent-chat/pkg/query"
	"github.com/JaimeStill/agent-chat/pkg/repository"
	"github.com/google/uuid"
)

type repo struct {
	db     *sql.DB
	agents AgentFinder
	logger *slog.Logger
}

// New creates a PostgreSQL session store implementing the System interface.
// Appends lock the session row, and messages reference their session with
// ON DELETE CASCADE.
func New(db *sql.DB, agents AgentFinder, logger *slog.Logger) System {
	return &repo{
		db:     db,
		agents: agents,
		logger: logger.With("system", "session"),
	}
}

func (r *repo) Create(ctx context.Context, userID string, agentID uuid.UUID) (*Session, error) {
	s, err := newSession(ctx, r.agents, userID, agentID)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO public.sessions AS s (
			id, user_id, agent_id, title, created_at, last_activity, active, total_tokens_used
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, sessionProjection.Columns())

	args := []any{s.ID, s.UserID, s.AgentID, s.Title, s.CreatedAt, s.LastActivity, s.Active, s.TotalTokensUsed}

	created, err := repository.QueryOne(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}

	r.logger.Info("session created", "id", created.ID, "user_id", created.UserID, "agent_id", created.AgentID)
	return &created, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	q, args := query.NewBuilder(sessionProjection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	return &s, nil
}

func (r *repo) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	q, args := query.
		NewBuilder(sessionProjection, recentFirst...).
		WhereEquals("UserID", userID).
		BuildList()

	sessions, err := repository.QueryMany(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return sessions, nil
}

func (r *repo) AppendMessage(ctx context.Context, sessionID uuid.UUID, msg Message) (*Message, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}

	lockQ := "SELECT s.last_activity FROM public.sessions s WHERE s.id = $1 FOR UPDATE"

	insertQ := `
		INSERT INTO public.messages (
			id, session_id, role, content, sent_at, token_count, flagged, flag_reason, model_used
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	touchQ := `
		UPDATE public.sessions
		SET last_activity = $1, total_tokens_used = total_tokens_used + $2
		WHERE id = $3`

	appended, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Message, error) {
		var lastActivity time.Time
		if err := tx.QueryRowContext(ctx, lockQ, sessionID).Scan(&lastActivity); err != nil {
			return Message{}, err
		}

		m := msg
		m.SessionID = sessionID
		m.Timestamp = stamp(lastActivity.UTC())
		m.ID = newMessageID(m.Timestamp)

		_, err := tx.ExecContext(ctx, insertQ,
			m.ID.String(), m.SessionID, m.Role, m.Content, m.Timestamp,
			m.TokenCount, m.Flagged, nullable(m.FlagReason), nullable(m.ModelUsed),
		)
		if err != nil {
			return Message{}, fmt.Errorf("insert message: %w", err)
		}

		if err := repository.ExecExpectOne(ctx, tx, touchQ, m.Timestamp, m.TokenCount, sessionID); err != nil {
			return Message{}, fmt.Errorf("touch session: %w", err)
		}

		return m, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}

	return &appended, nil
}

func (r *repo) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]Message, error) {
	if _, err := r.Find(ctx, sessionID); err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(messageProjection, historyOrder...).
		WhereEquals("SessionID", sessionID).
		BuildList()

	messages, err := repository.QueryMany(ctx, r.db, q, args, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	return messages, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM public.sessions WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, nil)
	}

	r.logger.Info("session deleted", "id", id)
	return nil
}
