package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tasknest/tasknest-api/internal/domain"
)

// StatusCount is one row of the per-status task breakdown.
type StatusCount struct {
	Status domain.TaskStatus `json:"status"`
	Count  int               `json:"count"`
}

// PriorityCount is one row of the per-priority breakdown, with the number
// of tasks already completed at that priority.
type PriorityCount struct {
	Priority  domain.TaskPriority `json:"priority"`
	Count     int                 `json:"count"`
	Completed int                 `json:"completed"`
}

// DailyCompletion is one day's completed-task count in a trend series.
type DailyCompletion struct {
	Day       time.Time `json:"day"`
	Completed int       `json:"completed"`
}

// OverdueTask is a compact reference to an overdue task.
type OverdueTask struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

// OverdueGroup collects a priority's overdue, not-done tasks.
type OverdueGroup struct {
	Priority domain.TaskPriority `json:"priority"`
	Count    int                 `json:"count"`
	Tasks    []OverdueTask       `json:"tasks"`
}

// StatsStore defines the aggregation queries behind the analytics endpoints.
type StatsStore interface {
	// CountByStatus returns the user's task counts grouped by status,
	// most numerous first.
	CountByStatus(ctx context.Context, userID uuid.UUID) ([]StatusCount, error)

	// CompletionTrends returns per-day counts of the user's tasks marked
	// done since the given instant, oldest day first.
	CompletionTrends(ctx context.Context, userID uuid.UUID, since time.Time) ([]DailyCompletion, error)

	// CountByPriority returns the user's task counts grouped by priority,
	// each with its completed subtotal, most numerous first.
	CountByPriority(ctx context.Context, userID uuid.UUID) ([]PriorityCount, error)

	// OverdueByPriority returns the user's overdue (due before now),
	// not-done tasks grouped by priority.
	OverdueByPriority(ctx context.Context, userID uuid.UUID, now time.Time) ([]OverdueGroup, error)
}
