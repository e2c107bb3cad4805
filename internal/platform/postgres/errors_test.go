package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/tasknest/tasknest-api/internal/store"
)

func pgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func TestMapErrorNotFound(t *testing.T) {
	err := MapError(sql.ErrNoRows)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestMapErrorUniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"email", usersEmailConstraint, store.ErrEmailExists},
		{"username", usersUsernameConstraint, store.ErrUsernameExists},
		{"occurrence", occurrenceConstraint, store.ErrOccurrenceExists},
		{"other unique", "tasks_pkey", store.ErrDuplicate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := MapError(pgError(uniqueViolationCode, tc.constraint))
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestMapErrorForeignKeyViolation(t *testing.T) {
	err := MapError(pgError(foreignKeyViolationCode, "subtasks_parent_task_id_fkey"))
	assert.True(t, errors.Is(err, store.ErrInvalidEntity))
}

func TestMapErrorPassesThroughUnknownErrors(t *testing.T) {
	cause := errors.New("connection refused")
	assert.Equal(t, cause, MapError(cause))
	assert.NoError(t, MapError(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode, "")))
	assert.False(t, IsUniqueViolation(pgError(foreignKeyViolationCode, "")))
	assert.False(t, IsUniqueViolation(errors.New("nope")))
}
