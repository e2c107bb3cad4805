package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/api/shared"
	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/platform/logger"
)

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context, where the authentication middleware placed it.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrValidation, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

// handleUserIDAndPathUUID extracts both the authenticated user ID and a
// UUID path parameter, writing an error response if either fails. The
// boolean reports whether both extractions succeeded.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// Re-exports so handlers read naturally without the shared prefix.
var (
	RespondWithJSON  = shared.RespondWithJSON
	RespondWithError = shared.RespondWithError
	DecodeJSON       = shared.DecodeJSON
)
