package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents the importance of a task.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Common validation errors for Task. All wrap ErrValidation so the API
// layer maps them to a client error rather than a server fault.
var (
	ErrEmptyTaskID          = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyTaskUserID      = fmt.Errorf("%w: task user ID cannot be empty", ErrValidation)
	ErrEmptyTaskTitle       = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrInvalidTaskStatus    = fmt.Errorf("%w: invalid task status", ErrValidation)
	ErrInvalidTaskPriority  = fmt.Errorf("%w: invalid task priority", ErrValidation)
	ErrRecurrenceWithoutDue = fmt.Errorf("%w: recurring task requires a due date", ErrValidation)
	ErrMissingRecurrence    = fmt.Errorf("%w: recurring task requires a recurrence pattern", ErrValidation)
)

// Task is a single item of work owned by a user. DueDate is a timezone-naive
// calendar day (stored as midnight UTC); DueTime is an optional wall-clock
// time interpreted in the owner's configured timezone. A recurring task acts
// as the template row from which dated occurrences are spawned.
type Task struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	Priority      TaskPriority       `json:"priority"`
	Status        TaskStatus         `json:"status"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	DueTime       *TimeOfDay         `json:"due_time,omitempty"`
	ReminderSent  bool               `json:"reminder_sent"`
	Tags          []string           `json:"tags,omitempty"`
	Category      string             `json:"category,omitempty"`
	CustomFields  map[string]any     `json:"custom_fields,omitempty"`
	Collaborators []uuid.UUID        `json:"collaborators,omitempty"`
	IsRecurring   bool               `json:"is_recurring"`
	Recurrence    *RecurrencePattern `json:"recurrence_pattern,omitempty"`
	// OriginTaskID links a generated occurrence back to its template.
	OriginTaskID *uuid.UUID `json:"origin_task_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewTask creates a task with generated ID, default status/priority and
// timestamps set. Returns an error if validation fails.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Priority:  TaskPriorityMedium,
		Status:    TaskStatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if !isValidTaskStatus(t.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, t.Status)
	}
	if !isValidTaskPriority(t.Priority) {
		return fmt.Errorf("%w: %q", ErrInvalidTaskPriority, t.Priority)
	}
	if t.IsRecurring {
		if t.Recurrence == nil {
			return ErrMissingRecurrence
		}
		if t.DueDate == nil {
			return ErrRecurrenceWithoutDue
		}
		if err := t.Recurrence.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NewOccurrence spawns the dated occurrence of a recurring template task.
// The occurrence gets its own identity, status todo, an unsent reminder and
// the given due date; title, description, owner, priority, tags, category,
// custom fields and due time are copied from the template. The template
// itself is never mutated.
func (t *Task) NewOccurrence(dueDate time.Time) *Task {
	now := time.Now().UTC()
	occ := &Task{
		ID:           uuid.New(),
		UserID:       t.UserID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		Status:       TaskStatusTodo,
		DueDate:      &dueDate,
		ReminderSent: false,
		Category:     t.Category,
		OriginTaskID: &t.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if t.DueTime != nil {
		tod := *t.DueTime
		occ.DueTime = &tod
	}
	if len(t.Tags) > 0 {
		occ.Tags = append([]string(nil), t.Tags...)
	}
	if len(t.CustomFields) > 0 {
		occ.CustomFields = make(map[string]any, len(t.CustomFields))
		for k, v := range t.CustomFields {
			occ.CustomFields[k] = v
		}
	}
	return occ
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// isValidTaskPriority checks if the given priority is a valid TaskPriority.
func isValidTaskPriority(p TaskPriority) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// SameCalendarDay reports whether a and b fall on the same calendar day
// in their respective locations' representations of year/month/day.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateOnly normalizes t to midnight UTC of its calendar day, the canonical
// carrier for the timezone-naive DueDate field.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
