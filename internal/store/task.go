package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tasknest/tasknest-api/internal/domain"
)

// ListTasksParams narrows and orders a task listing. Zero values mean
// "no filter"; Page is 1-based.
type ListTasksParams struct {
	UserID   uuid.UUID
	Status   domain.TaskStatus
	Priority domain.TaskPriority
	Category string
	Tag      string
	DueDate  *time.Time
	SortBy   string // created_at, due_date, priority, title
	SortDesc bool
	Page     int
	Limit    int
}

// TaskStore defines the interface for task data persistence.
//
// FindRecurringActive, FindReminderCandidates, ClaimReminder and
// ReleaseReminder are the narrow contract the scheduler core consumes;
// the rest serves the CRUD API.
type TaskStore interface {
	// Create saves a new task to the store. It handles domain validation
	// internally. For generated occurrences (OriginTaskID set), returns
	// ErrOccurrenceExists if an occurrence for the same template and
	// calendar day already exists.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task (and, via cascade, its subtasks).
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves tasks matching the given params together with the
	// total match count for pagination.
	List(ctx context.Context, params ListTasksParams) ([]*domain.Task, int, error)

	// FindRecurringActive retrieves recurring template tasks whose pattern
	// has not expired as of the given calendar day (no end date, or end
	// date on/after it).
	FindRecurringActive(ctx context.Context, day time.Time) ([]*domain.Task, error)

	// FindReminderCandidates retrieves tasks eligible for a reminder:
	// status is not done, reminder not sent, and a due date and due time
	// are present.
	FindReminderCandidates(ctx context.Context) ([]*domain.Task, error)

	// ClaimReminder atomically sets reminder_sent=true iff it is currently
	// false, and reports whether this call performed the transition. This
	// is the store-level compare-and-set that guarantees at-most-once
	// reminder delivery across concurrent scan cycles.
	ClaimReminder(ctx context.Context, id uuid.UUID) (bool, error)

	// ReleaseReminder atomically sets reminder_sent=false iff it is
	// currently true, making the task visible to later scans again after a
	// failed delivery. Reports whether this call performed the transition.
	ReleaseReminder(ctx context.Context, id uuid.UUID) (bool, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
