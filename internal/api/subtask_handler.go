package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/store"
)

// TxRunner executes a function within a database transaction. It exists so
// handlers can be tested without a live database.
type TxRunner func(ctx context.Context, fn store.TxFn) error

// SubtaskHandler handles subtask CRUD API requests. Every operation
// resolves the parent task first and checks the caller against it; a
// subtask has no ownership of its own.
type SubtaskHandler struct {
	subtaskStore store.SubtaskStore
	taskStore    store.TaskStore
	runTx        TxRunner
	validator    *validator.Validate
}

// NewSubtaskHandler creates a new SubtaskHandler with the given dependencies.
func NewSubtaskHandler(subtaskStore store.SubtaskStore, taskStore store.TaskStore, runTx TxRunner) *SubtaskHandler {
	return &SubtaskHandler{
		subtaskStore: subtaskStore,
		taskStore:    taskStore,
		runTx:        runTx,
		validator:    validator.New(),
	}
}

// Create handles POST /api/tasks/{id}/subtasks.
func (h *SubtaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	var req CreateSubtaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if !h.authorizeParent(w, r, taskID, userID) {
		return
	}

	// Reading the next sort order and inserting must be one atomic step or
	// two concurrent appends can claim the same slot.
	var subtask *domain.Subtask
	err := h.runTx(r.Context(), func(ctx context.Context, tx *sql.Tx) error {
		subtasks := h.subtaskStore.WithTx(tx)

		sortOrder, err := subtasks.NextSortOrder(ctx, taskID)
		if err != nil {
			return err
		}
		subtask, err = domain.NewSubtask(taskID, req.Title, sortOrder)
		if err != nil {
			return err
		}
		return subtasks.Create(ctx, subtask)
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	RespondWithJSON(w, r, http.StatusCreated, subtask)
}

// List handles GET /api/tasks/{id}/subtasks.
func (h *SubtaskHandler) List(w http.ResponseWriter, r *http.Request) {
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

	q := r.URL.Query()
	params := store.ListSubtasksParams{
		ParentTaskID: taskID,
		Page:         queryInt(q.Get("page"), 1),
		Limit:        queryInt(q.Get("limit"), 50),
	}
	if raw := q.Get("completed"); raw == "true" || raw == "false" {
		completed := raw == "true"
		params.IsCompleted = &completed
	}

	subtasks, total, err := h.subtaskStore.List(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if subtasks == nil {
		subtasks = []*domain.Subtask{}
	}

	RespondWithJSON(w, r, http.StatusOK, SubtaskListResponse{
		Subtasks: subtasks,
		Total:    total,
		Page:     params.Page,
		Limit:    params.Limit,
	})
}

// Update handles PUT /api/subtasks/{id}.
func (h *SubtaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, subtaskID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	var req UpdateSubtaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	subtask, err := h.subtaskStore.GetByID(r.Context(), subtaskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !h.authorizeParent(w, r, subtask.ParentTaskID, userID) {
		return
	}

	if req.Title != nil {
		subtask.Title = *req.Title
	}
	if req.IsCompleted != nil {
		subtask.IsCompleted = *req.IsCompleted
	}
	if req.SortOrder != nil {
		subtask.SortOrder = *req.SortOrder
	}

	if err := h.subtaskStore.Update(r.Context(), subtask); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, subtask)
}

// Delete handles DELETE /api/subtasks/{id}.
func (h *SubtaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, subtaskID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	subtask, err := h.subtaskStore.GetByID(r.Context(), subtaskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !h.authorizeParent(w, r, subtask.ParentTaskID, userID) {
		return
	}

	if err := h.subtaskStore.Delete(r.Context(), subtaskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizeParent loads the parent task and verifies the caller owns it,
// writing the error response on failure.
func (h *SubtaskHandler) authorizeParent(w http.ResponseWriter, r *http.Request, taskID, userID uuid.UUID) bool {
	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	if task.UserID != userID {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return false
	}
	return true
}
