package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tasknest/tasknest-api/internal/api/shared"
	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/service/auth"
	"github.com/tasknest/tasknest-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidRecurrence),
		errors.Is(err, domain.ErrInvalidTimeOfDay):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "You do not have access to this resource"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrSubtaskNotFound):
		return "Subtask not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"
	case errors.Is(err, store.ErrOccurrenceExists):
		return "An occurrence for this day already exists"

	case errors.Is(err, domain.ErrInvalidRecurrence):
		return "Invalid recurrence pattern"
	case errors.Is(err, domain.ErrInvalidTimeOfDay):
		return "Invalid due time, expected HH:MM"
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and safe message and writes the
// response, logging the underlying error. An empty userMessage selects the
// mapped safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
