package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tasknest/tasknest-api/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"
)

// Unique constraints carrying a specific meaning. Violations of these map
// to entity-specific store errors instead of the generic ErrDuplicate.
const (
	usersEmailConstraint    = "users_email_key"
	usersUsernameConstraint = "users_username_key"
	occurrenceConstraint    = "uq_tasks_origin_due"
)

// MapError maps a database error to the appropriate store error.
// It wraps the original error to preserve context for debugging.
// All database operations in this package route their errors through it.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", uniqueViolationError(pgErr.ConstraintName), err)
		case foreignKeyViolationCode:
			return fmt.Errorf(
				"%w: foreign key violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ColumnName,
				err,
			)
		}
	}

	return err
}

// uniqueViolationError picks the store sentinel for a unique violation
// based on the constraint that fired.
func uniqueViolationError(constraint string) error {
	switch constraint {
	case usersEmailConstraint:
		return store.ErrEmailExists
	case usersUsernameConstraint:
		return store.ErrUsernameExists
	case occurrenceConstraint:
		return store.ErrOccurrenceExists
	default:
		return store.ErrDuplicate
	}
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation checks if the given error is a PostgreSQL foreign
// key constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// CheckRowsAffected examines the number of rows affected by a database
// operation and returns notFound when no rows were touched. UPDATE and
// DELETE statements use it to detect missing targets.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
