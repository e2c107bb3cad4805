package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/store"
)

// PostgresSubtaskStore implements the store.SubtaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSubtaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubtaskStore creates a new PostgreSQL implementation of the
// SubtaskStore interface. If logger is nil, a default logger will be used.
func NewPostgresSubtaskStore(db store.DBTX, logger *slog.Logger) *PostgresSubtaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubtaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "subtask_store")),
	}
}

// Ensure PostgresSubtaskStore implements store.SubtaskStore interface
var _ store.SubtaskStore = (*PostgresSubtaskStore)(nil)

// WithTx implements store.SubtaskStore.WithTx
func (s *PostgresSubtaskStore) WithTx(tx *sql.Tx) store.SubtaskStore {
	return &PostgresSubtaskStore{
		db:     tx,
		logger: s.logger,
	}
}

const subtaskColumns = `id, parent_task_id, title, is_completed, sort_order, created_at, updated_at`

// Create implements store.SubtaskStore.Create
// Returns store.ErrInvalidEntity if the parent task does not exist; the
// foreign key makes that check.
func (s *PostgresSubtaskStore) Create(ctx context.Context, subtask *domain.Subtask) error {
	if err := subtask.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO subtasks (` + subtaskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		subtask.ID,
		subtask.ParentTaskID,
		subtask.Title,
		subtask.IsCompleted,
		subtask.SortOrder,
		subtask.CreatedAt,
		subtask.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// GetByID implements store.SubtaskStore.GetByID
func (s *PostgresSubtaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE id = $1`

	var sub domain.Subtask
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID,
		&sub.ParentTaskID,
		&sub.Title,
		&sub.IsCompleted,
		&sub.SortOrder,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrSubtaskNotFound
		}
		return nil, MapError(err)
	}
	return &sub, nil
}

// Update implements store.SubtaskStore.Update
func (s *PostgresSubtaskStore) Update(ctx context.Context, subtask *domain.Subtask) error {
	if err := subtask.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	subtask.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE subtasks
		SET title = $2, is_completed = $3, sort_order = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		subtask.ID,
		subtask.Title,
		subtask.IsCompleted,
		subtask.SortOrder,
		subtask.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrSubtaskNotFound)
}

// Delete implements store.SubtaskStore.Delete
func (s *PostgresSubtaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrSubtaskNotFound)
}

// List implements store.SubtaskStore.List
func (s *PostgresSubtaskStore) List(ctx context.Context, params store.ListSubtasksParams) ([]*domain.Subtask, int, error) {
	where := "parent_task_id = $1"
	args := []any{params.ParentTaskID}
	if params.IsCompleted != nil {
		args = append(args, *params.IsCompleted)
		where += fmt.Sprintf(" AND is_completed = $%d", len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subtasks WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}

	query := fmt.Sprintf(`
		SELECT %s FROM subtasks
		WHERE %s
		ORDER BY sort_order, created_at DESC
		LIMIT %d OFFSET %d`,
		subtaskColumns, where, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var subtasks []*domain.Subtask
	for rows.Next() {
		var sub domain.Subtask
		if err := rows.Scan(
			&sub.ID,
			&sub.ParentTaskID,
			&sub.Title,
			&sub.IsCompleted,
			&sub.SortOrder,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan subtask row: %w", err)
		}
		subtasks = append(subtasks, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating subtask rows: %w", err)
	}
	return subtasks, total, nil
}

// NextSortOrder implements store.SubtaskStore.NextSortOrder
func (s *PostgresSubtaskStore) NextSortOrder(ctx context.Context, parentTaskID uuid.UUID) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM subtasks WHERE parent_task_id = $1`
	if err := s.db.QueryRowContext(ctx, query, parentTaskID).Scan(&next); err != nil {
		return 0, MapError(err)
	}
	return next, nil
}
