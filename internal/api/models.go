package api

import (
	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=2,max=40"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest defines the payload for requesting a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest defines the payload for completing a password reset.
type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdatePreferencesRequest defines the payload for the preferences endpoint.
// Absent fields keep their current values.
type UpdatePreferencesRequest struct {
	Theme              *string `json:"theme"               validate:"omitempty,oneof=light dark"`
	EmailNotifications *bool   `json:"email_notifications"`
	Timezone           *string `json:"timezone"            validate:"omitempty,timezone"`
}

// RecurrencePayload is the wire form of a recurrence pattern. Dates travel
// as "YYYY-MM-DD" strings.
type RecurrencePayload struct {
	Frequency  string `json:"frequency"              validate:"required,oneof=daily weekly monthly custom"`
	Interval   int    `json:"interval"               validate:"omitempty,gte=1"`
	DaysOfWeek []int  `json:"days_of_week,omitempty" validate:"omitempty,dive,gte=0,lte=6"`
	EndDate    string `json:"end_date,omitempty"     validate:"omitempty,datetime=2006-01-02"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title         string             `json:"title"          validate:"required,max=200"`
	Description   string             `json:"description"    validate:"max=2000"`
	Priority      string             `json:"priority"       validate:"omitempty,oneof=low medium high"`
	Status        string             `json:"status"         validate:"omitempty,oneof=todo in_progress done"`
	DueDate       string             `json:"due_date"       validate:"omitempty,datetime=2006-01-02"`
	DueTime       string             `json:"due_time"       validate:"omitempty,len=5"`
	Tags          []string           `json:"tags"`
	Category      string             `json:"category"       validate:"max=100"`
	CustomFields  map[string]any     `json:"custom_fields"`
	Collaborators []uuid.UUID        `json:"collaborators"`
	IsRecurring   bool               `json:"is_recurring"`
	Recurrence    *RecurrencePayload `json:"recurrence_pattern"`
}

// UpdateTaskRequest defines the payload for updating a task. Absent fields
// keep their current values; due_date and due_time accept empty strings to
// clear the value.
type UpdateTaskRequest struct {
	Title         *string            `json:"title"          validate:"omitempty,max=200"`
	Description   *string            `json:"description"    validate:"omitempty,max=2000"`
	Priority      *string            `json:"priority"       validate:"omitempty,oneof=low medium high"`
	Status        *string            `json:"status"         validate:"omitempty,oneof=todo in_progress done"`
	DueDate       *string            `json:"due_date"`
	DueTime       *string            `json:"due_time"`
	Tags          *[]string          `json:"tags"`
	Category      *string            `json:"category"       validate:"omitempty,max=100"`
	CustomFields  *map[string]any    `json:"custom_fields"`
	Collaborators *[]uuid.UUID       `json:"collaborators"`
	IsRecurring   *bool              `json:"is_recurring"`
	Recurrence    *RecurrencePayload `json:"recurrence_pattern"`
}

// TaskListResponse wraps a page of tasks with pagination totals.
type TaskListResponse struct {
	Tasks []*domain.Task `json:"tasks"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// CreateSubtaskRequest defines the payload for creating a subtask.
type CreateSubtaskRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

// UpdateSubtaskRequest defines the payload for updating a subtask.
type UpdateSubtaskRequest struct {
	Title       *string `json:"title"        validate:"omitempty,max=200"`
	IsCompleted *bool   `json:"is_completed"`
	SortOrder   *int    `json:"sort_order"   validate:"omitempty,gte=0"`
}

// SubtaskListResponse wraps a page of subtasks with pagination totals.
type SubtaskListResponse struct {
	Subtasks []*domain.Subtask `json:"subtasks"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}
