package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/store"
)

// PostgresStatsStore implements the store.StatsStore interface with
// aggregate queries over the tasks table.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStatsStore creates a new PostgreSQL implementation of the
// StatsStore interface. If logger is nil, a default logger will be used.
func NewPostgresStatsStore(db store.DBTX, logger *slog.Logger) *PostgresStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

// Ensure PostgresStatsStore implements store.StatsStore interface
var _ store.StatsStore = (*PostgresStatsStore)(nil)

// CountByStatus implements store.StatsStore.CountByStatus
func (s *PostgresStatsStore) CountByStatus(ctx context.Context, userID uuid.UUID) ([]store.StatusCount, error) {
	query := `
		SELECT status, COUNT(*)
		FROM tasks
		WHERE user_id = $1
		GROUP BY status
		ORDER BY COUNT(*) DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var counts []store.StatusCount
	for rows.Next() {
		var c store.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status count row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status count rows: %w", err)
	}
	return counts, nil
}

// CompletionTrends implements store.StatsStore.CompletionTrends
// Days without completions are absent from the series rather than zero.
func (s *PostgresStatsStore) CompletionTrends(ctx context.Context, userID uuid.UUID, since time.Time) ([]store.DailyCompletion, error) {
	query := `
		SELECT date_trunc('day', updated_at) AS day, COUNT(*)
		FROM tasks
		WHERE user_id = $1 AND status = 'done' AND updated_at >= $2
		GROUP BY day
		ORDER BY day
	`
	rows, err := s.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var trends []store.DailyCompletion
	for rows.Next() {
		var d store.DailyCompletion
		if err := rows.Scan(&d.Day, &d.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan completion trend row: %w", err)
		}
		trends = append(trends, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completion trend rows: %w", err)
	}
	return trends, nil
}

// CountByPriority implements store.StatsStore.CountByPriority
func (s *PostgresStatsStore) CountByPriority(ctx context.Context, userID uuid.UUID) ([]store.PriorityCount, error) {
	query := `
		SELECT priority,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'done')
		FROM tasks
		WHERE user_id = $1
		GROUP BY priority
		ORDER BY COUNT(*) DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var counts []store.PriorityCount
	for rows.Next() {
		var c store.PriorityCount
		if err := rows.Scan(&c.Priority, &c.Count, &c.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan priority count row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating priority count rows: %w", err)
	}
	return counts, nil
}

// OverdueByPriority implements store.StatsStore.OverdueByPriority
func (s *PostgresStatsStore) OverdueByPriority(ctx context.Context, userID uuid.UUID, now time.Time) ([]store.OverdueGroup, error) {
	query := `
		SELECT priority, id, title, due_date
		FROM tasks
		WHERE user_id = $1
		  AND status <> 'done'
		  AND due_date IS NOT NULL
		  AND due_date < $2
		ORDER BY priority, due_date
	`
	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var groups []store.OverdueGroup
	byPriority := map[string]int{}
	for rows.Next() {
		var (
			priority string
			task     store.OverdueTask
		)
		if err := rows.Scan(&priority, &task.ID, &task.Title, &task.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan overdue task row: %w", err)
		}
		idx, ok := byPriority[priority]
		if !ok {
			groups = append(groups, store.OverdueGroup{Priority: domain.TaskPriority(priority)})
			idx = len(groups) - 1
			byPriority[priority] = idx
		}
		groups[idx].Tasks = append(groups[idx].Tasks, task)
		groups[idx].Count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overdue task rows: %w", err)
	}
	return groups, nil
}
