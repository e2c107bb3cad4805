package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

const taskColumns = `id, user_id, title, description, priority, status, due_date, due_time,
	reminder_sent, tags, category, custom_fields, collaborators, is_recurring,
	recurrence, origin_task_id, created_at, updated_at`

// Create implements store.TaskStore.Create
// Returns store.ErrOccurrenceExists when inserting a generated occurrence
// whose template already has one for the same calendar day.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	docs, err := marshalTaskDocs(task)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		nullableTimeOfDay(task.DueTime),
		task.ReminderSent,
		docs.tags,
		task.Category,
		docs.customFields,
		docs.collaborators,
		task.IsRecurring,
		docs.recurrence,
		task.OriginTaskID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	s.logger.Debug("task created", slog.String("task_id", task.ID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	docs, err := marshalTaskDocs(task)
	if err != nil {
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $2, description = $3, priority = $4, status = $5,
		    due_date = $6, due_time = $7, reminder_sent = $8, tags = $9,
		    category = $10, custom_fields = $11, collaborators = $12,
		    is_recurring = $13, recurrence = $14, updated_at = $15
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		nullableTimeOfDay(task.DueTime),
		task.ReminderSent,
		docs.tags,
		task.Category,
		docs.customFields,
		docs.collaborators,
		task.IsRecurring,
		docs.recurrence,
		task.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
// Subtasks go with the task via the cascading foreign key.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// sortColumns whitelists the sortable columns for List. Anything else
// falls back to creation time.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"priority":   "priority",
	"title":      "title",
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, params store.ListTasksParams) ([]*domain.Task, int, error) {
	where := []string{"user_id = $1"}
	args := []any{params.UserID}

	addFilter := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if params.Status != "" {
		addFilter("status = $%d", params.Status)
	}
	if params.Priority != "" {
		addFilter("priority = $%d", params.Priority)
	}
	if params.Category != "" {
		addFilter("category = $%d", params.Category)
	}
	if params.Tag != "" {
		tagDoc, err := json.Marshal([]string{params.Tag})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal tag filter: %w", err)
		}
		addFilter("tags @> $%d", tagDoc)
	}
	if params.DueDate != nil {
		addFilter("due_date = $%d", domain.DateOnly(*params.DueDate))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks WHERE ` + whereClause
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	orderBy, ok := sortColumns[params.SortBy]
	if !ok {
		orderBy = "created_at"
	}
	direction := "ASC"
	if params.SortDesc {
		direction = "DESC"
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s %s, id LIMIT %d OFFSET %d`,
		taskColumns, whereClause, orderBy, direction, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// FindRecurringActive implements store.TaskStore.FindRecurringActive
// Expired patterns (end date before the given day) are filtered in SQL so
// the generation cycle never loads them.
func (s *PostgresTaskStore) FindRecurringActive(ctx context.Context, day time.Time) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE is_recurring = TRUE
		  AND recurrence IS NOT NULL
		  AND due_date IS NOT NULL
		  AND (recurrence->>'end_date' IS NULL
		       OR (recurrence->>'end_date')::timestamptz >= $1)
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// FindReminderCandidates implements store.TaskStore.FindReminderCandidates
func (s *PostgresTaskStore) FindReminderCandidates(ctx context.Context) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status <> 'done'
		  AND reminder_sent = FALSE
		  AND due_date IS NOT NULL
		  AND due_time IS NOT NULL
		ORDER BY due_date, due_time
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// ClaimReminder implements store.TaskStore.ClaimReminder
// The WHERE clause is the compare-and-set: only the caller that flips the
// flag sees an affected row, so concurrent scans cannot both claim a task.
func (s *PostgresTaskStore) ClaimReminder(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE tasks
		SET reminder_sent = TRUE, updated_at = $2
		WHERE id = $1 AND reminder_sent = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return false, MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// ReleaseReminder implements store.TaskStore.ReleaseReminder
func (s *PostgresTaskStore) ReleaseReminder(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE tasks
		SET reminder_sent = FALSE, updated_at = $2
		WHERE id = $1 AND reminder_sent = TRUE
	`
	result, err := s.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return false, MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// taskDocs holds the JSONB document columns of a task row.
type taskDocs struct {
	tags          []byte
	customFields  []byte
	collaborators []byte
	recurrence    []byte
}

func marshalTaskDocs(task *domain.Task) (taskDocs, error) {
	var docs taskDocs
	var err error

	if docs.tags, err = marshalOrNull(task.Tags, len(task.Tags) > 0); err != nil {
		return docs, fmt.Errorf("failed to marshal tags: %w", err)
	}
	if docs.customFields, err = marshalOrNull(task.CustomFields, len(task.CustomFields) > 0); err != nil {
		return docs, fmt.Errorf("failed to marshal custom fields: %w", err)
	}
	if docs.collaborators, err = marshalOrNull(task.Collaborators, len(task.Collaborators) > 0); err != nil {
		return docs, fmt.Errorf("failed to marshal collaborators: %w", err)
	}
	if docs.recurrence, err = marshalOrNull(task.Recurrence, task.Recurrence != nil); err != nil {
		return docs, fmt.Errorf("failed to marshal recurrence: %w", err)
	}
	return docs, nil
}

// marshalOrNull marshals v when present; absent values become SQL NULL.
func marshalOrNull(v any, present bool) ([]byte, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

func nullableTimeOfDay(t *domain.TimeOfDay) any {
	if t == nil {
		return nil
	}
	return t.String()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task          domain.Task
		description   sql.NullString
		dueDate       sql.NullTime
		dueTime       sql.NullString
		category      sql.NullString
		tags          []byte
		customFields  []byte
		collaborators []byte
		recurrence    []byte
	)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&task.Priority,
		&task.Status,
		&dueDate,
		&dueTime,
		&task.ReminderSent,
		&tags,
		&category,
		&customFields,
		&collaborators,
		&task.IsRecurring,
		&recurrence,
		&task.OriginTaskID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, MapError(err)
	}

	task.Description = description.String
	task.Category = category.String
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		task.DueDate = &due
	}
	if dueTime.Valid {
		tod, err := domain.ParseTimeOfDay(dueTime.String)
		if err != nil {
			return nil, fmt.Errorf("invalid due_time in row: %w", err)
		}
		task.DueTime = &tod
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if len(customFields) > 0 {
		if err := json.Unmarshal(customFields, &task.CustomFields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom fields: %w", err)
		}
	}
	if len(collaborators) > 0 {
		if err := json.Unmarshal(collaborators, &task.Collaborators); err != nil {
			return nil, fmt.Errorf("failed to unmarshal collaborators: %w", err)
		}
	}
	if len(recurrence) > 0 {
		var pattern domain.RecurrencePattern
		if err := json.Unmarshal(recurrence, &pattern); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recurrence: %w", err)
		}
		task.Recurrence = &pattern
	}
	return &task, nil
}

func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}
