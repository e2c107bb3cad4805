package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/store"
)

// TaskHandler handles task CRUD API requests.
type TaskHandler struct {
	taskStore store.TaskStore
	validator *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskStore store.TaskStore) *TaskHandler {
	return &TaskHandler{
		taskStore: taskStore,
		validator: validator.New(),
	}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := domain.NewTask(userID, req.Title)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := applyCreateTaskRequest(task, &req); err != nil {
		HandleAPIError(w, r, err, err.Error())
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	RespondWithJSON(w, r, http.StatusCreated, task)
}

// Get handles GET /api/tasks/{id}. The owner and collaborators can read.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !canRead(task, userID) {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, task)
}

// Update handles PUT /api/tasks/{id}. Only the owner can modify a task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if task.UserID != userID {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	if err := applyUpdateTaskRequest(task, &req); err != nil {
		HandleAPIError(w, r, err, err.Error())
		return
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}. Only the owner can delete a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if task.UserID != userID {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	if err := h.taskStore.Delete(r.Context(), taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/tasks with filter, sort and pagination query
// parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	q := r.URL.Query()
	params := store.ListTasksParams{
		UserID:   userID,
		Status:   domain.TaskStatus(q.Get("status")),
		Priority: domain.TaskPriority(q.Get("priority")),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("order") == "desc",
		Page:     queryInt(q.Get("page"), 1),
		Limit:    queryInt(q.Get("limit"), 20),
	}
	if raw := q.Get("due_date"); raw != "" {
		day, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			RespondWithError(w, r, http.StatusBadRequest, "Invalid due_date, expected YYYY-MM-DD")
			return
		}
		params.DueDate = &day
	}

	tasks, total, err := h.taskStore.List(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	})
}

// canRead reports whether the user owns the task or is listed as a
// collaborator on it.
func canRead(task *domain.Task, userID uuid.UUID) bool {
	if task.UserID == userID {
		return true
	}
	for _, c := range task.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func applyCreateTaskRequest(task *domain.Task, req *CreateTaskRequest) error {
	task.Description = req.Description
	if req.Priority != "" {
		task.Priority = domain.TaskPriority(req.Priority)
	}
	if req.Status != "" {
		task.Status = domain.TaskStatus(req.Status)
	}
	if req.DueDate != "" {
		day, err := time.Parse(time.DateOnly, req.DueDate)
		if err != nil {
			return fmt.Errorf("%w: due_date must be YYYY-MM-DD", domain.ErrValidation)
		}
		due := domain.DateOnly(day)
		task.DueDate = &due
	}
	if req.DueTime != "" {
		tod, err := domain.ParseTimeOfDay(req.DueTime)
		if err != nil {
			return err
		}
		task.DueTime = &tod
	}
	task.Tags = req.Tags
	task.Category = req.Category
	task.CustomFields = req.CustomFields
	task.Collaborators = req.Collaborators
	task.IsRecurring = req.IsRecurring
	if req.Recurrence != nil {
		pattern, err := toRecurrencePattern(req.Recurrence)
		if err != nil {
			return err
		}
		task.Recurrence = pattern
	}
	return task.Validate()
}

func applyUpdateTaskRequest(task *domain.Task, req *UpdateTaskRequest) error {
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = domain.TaskPriority(*req.Priority)
	}
	if req.Status != nil {
		task.Status = domain.TaskStatus(*req.Status)
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			task.DueDate = nil
		} else {
			day, err := time.Parse(time.DateOnly, *req.DueDate)
			if err != nil {
				return fmt.Errorf("%w: due_date must be YYYY-MM-DD", domain.ErrValidation)
			}
			due := domain.DateOnly(day)
			task.DueDate = &due
		}
	}
	if req.DueTime != nil {
		if *req.DueTime == "" {
			task.DueTime = nil
		} else {
			tod, err := domain.ParseTimeOfDay(*req.DueTime)
			if err != nil {
				return err
			}
			task.DueTime = &tod
		}
	}
	if req.Tags != nil {
		task.Tags = *req.Tags
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.CustomFields != nil {
		task.CustomFields = *req.CustomFields
	}
	if req.Collaborators != nil {
		task.Collaborators = *req.Collaborators
	}
	if req.IsRecurring != nil {
		task.IsRecurring = *req.IsRecurring
		if !task.IsRecurring {
			task.Recurrence = nil
		}
	}
	if req.Recurrence != nil {
		pattern, err := toRecurrencePattern(req.Recurrence)
		if err != nil {
			return err
		}
		task.Recurrence = pattern
	}
	return task.Validate()
}

func toRecurrencePattern(p *RecurrencePayload) (*domain.RecurrencePattern, error) {
	interval := p.Interval
	if interval == 0 {
		interval = 1
	}
	pattern := &domain.RecurrencePattern{
		Frequency: domain.RecurrenceFrequency(p.Frequency),
		Interval:  interval,
	}
	for _, d := range p.DaysOfWeek {
		pattern.DaysOfWeek = append(pattern.DaysOfWeek, time.Weekday(d))
	}
	if p.EndDate != "" {
		end, err := time.Parse(time.DateOnly, p.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", domain.ErrValidation)
		}
		endDay := domain.DateOnly(end)
		pattern.EndDate = &endDay
	}
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	return pattern, nil
}
