package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g., ErrUserNotFound, ErrTaskNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email, or a second
	// occurrence of a recurring task for the same calendar day).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrTaskNotFound indicates that the requested task does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrSubtaskNotFound indicates that the requested subtask does not exist.
	ErrSubtaskNotFound = fmt.Errorf("%w: subtask", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrUsernameExists indicates that a user with the given username already exists.
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrOccurrenceExists indicates an occurrence for the same template and
	// calendar day has already been generated. The unique index on
	// (origin_task_id, due_date) is what makes generation idempotent per day.
	ErrOccurrenceExists = fmt.Errorf("%w: occurrence", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
