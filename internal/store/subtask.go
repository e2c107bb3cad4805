package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tasknest/tasknest-api/internal/domain"
)

// ListSubtasksParams narrows a subtask listing. Results are ordered by
// sort_order, then creation time descending.
type ListSubtasksParams struct {
	ParentTaskID uuid.UUID
	IsCompleted  *bool
	Page         int
	Limit        int
}

// SubtaskStore defines the interface for subtask data persistence.
type SubtaskStore interface {
	// Create saves a new subtask. Returns ErrInvalidEntity if the parent
	// task does not exist.
	Create(ctx context.Context, subtask *domain.Subtask) error

	// GetByID retrieves a subtask by its unique ID.
	// Returns ErrSubtaskNotFound if the subtask does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtask, error)

	// Update saves changes to an existing subtask.
	// Returns ErrSubtaskNotFound if the subtask does not exist.
	Update(ctx context.Context, subtask *domain.Subtask) error

	// Delete removes a subtask.
	// Returns ErrSubtaskNotFound if the subtask does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves subtasks matching the given params with the total
	// match count for pagination.
	List(ctx context.Context, params ListSubtasksParams) ([]*domain.Subtask, int, error)

	// NextSortOrder returns the ordering slot for a subtask appended to
	// the given parent (highest existing order + 1, or 0).
	NextSortOrder(ctx context.Context, parentTaskID uuid.UUID) (int, error)

	// WithTx returns a new SubtaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) SubtaskStore
}
