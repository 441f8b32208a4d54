package sessions

import (
	"database/sql"
	"fmt"

	"github.com/JaimeStill/agent-chat/pkg/query"
	"github.com/JaimeStill/agent-chat/pkg/repository"
	"github.com/oklog/ulid/v2"
)

var sessionProjection = query.
	NewProjectionMap("public", "sessions", "s").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("agent_id", "AgentID").
	Project("title", "Title").
	Project("created_at", "CreatedAt").
	Project("last_activity", "LastActivity").
	Project("active", "Active").
	Project("total_tokens_used", "TotalTokensUsed")

var recentFirst = []query.SortField{
	{Field: "LastActivity", Descending: true},
	{Field: "CreatedAt", Descending: true},
}

var messageProjection = query.
	NewProjectionMap("public", "messages", "m").
	Project("id", "ID").
	Project("session_id", "SessionID").
	Project("role", "Role").
	Project("content", "Content").
	Project("sent_at", "Timestamp").
	Project("token_count", "TokenCount").
	Project("flagged", "Flagged").
	Project("flag_reason", "FlagReason").
	Project("model_used", "ModelUsed").
	Project("seq", "Seq")

var historyOrder = []query.SortField{
	{Field: "Timestamp"},
	{Field: "Seq"},
}

func scanSession(s repository.Scanner) (Session, error) {
	var sess Session
	err := s.Scan(
		&sess.ID, &sess.UserID, &sess.AgentID, &sess.Title,
		&sess.CreatedAt, &sess.LastActivity, &sess.Active, &sess.TotalTokensUsed,
	)
	return sess, err
}

func scanMessage(s repository.Scanner) (Message, error) {
	var (
		m                     Message
		id                    string
		seq                   int64
		flagReason, modelUsed sql.NullString
	)

	err := s.Scan(
		&id, &m.SessionID, &m.Role, &m.Content, &m.Timestamp,
		&m.TokenCount, &m.Flagged, &flagReason, &modelUsed, &seq,
	)
	if err != nil {
		return m, err
	}

	if m.ID, err = ulid.ParseStrict(id); err != nil {
		return m, fmt.Errorf("parse message id: %w", err)
	}
	m.FlagReason = flagReason.String
	m.ModelUsed = modelUsed.String
	return m, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
