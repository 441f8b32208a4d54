package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/JaimeStill/agent-chat/pkg/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError_NilDuplicatePassesThrough(t *testing.T) {
	violation := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})

	got := repository.MapError(violation, errNotFound, nil)
	if got != violation {
		t.Errorf("MapError() = %v, want %v", got, violation)
	}
	if got := repository.MapError(sql.ErrNoRows, errNotFound, nil); got != errNotFound {
		t.Errorf("MapError(no rows) = %v, want %v", got, errNotFound)
	}
}

func TestMapError(t *testing.T) {
	otherErr := errors.New("some other error")
	otherPg := &pgconn.PgError{Code: "12345"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("query: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"other pg error", otherPg, otherPg},
		{"other error", otherErr, otherErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
