package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Subtask, wrapped in ErrValidation for the
// API layer's status mapping.
var (
	ErrEmptySubtaskID     = fmt.Errorf("%w: subtask ID cannot be empty", ErrValidation)
	ErrEmptySubtaskParent = fmt.Errorf("%w: subtask parent task ID cannot be empty", ErrValidation)
	ErrEmptySubtaskTitle  = fmt.Errorf("%w: subtask title cannot be empty", ErrValidation)
)

// Subtask is a checklist item attached to a parent task. SortOrder gives a
// stable manual ordering within the parent's checklist.
type Subtask struct {
	ID           uuid.UUID `json:"id"`
	ParentTaskID uuid.UUID `json:"parent_task_id"`
	Title        string    `json:"title"`
	IsCompleted  bool      `json:"is_completed"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSubtask creates a subtask for the given parent with the given ordering
// slot. Returns an error if validation fails.
func NewSubtask(parentTaskID uuid.UUID, title string, sortOrder int) (*Subtask, error) {
	now := time.Now().UTC()
	s := &Subtask{
		ID:           uuid.New(),
		ParentTaskID: parentTaskID,
		Title:        title,
		SortOrder:    sortOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks if the Subtask has valid data.
func (s *Subtask) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySubtaskID
	}
	if s.ParentTaskID == uuid.Nil {
		return ErrEmptySubtaskParent
	}
	if s.Title == "" {
		return ErrEmptySubtaskTitle
	}
	return nil
}
