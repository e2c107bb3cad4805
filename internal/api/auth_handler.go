package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/config"
	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/service/auth"
	"github.com/tasknest/tasknest-api/internal/store"
)

// ResetMailer sends the password reset email. The platform mailer
// satisfies it.
type ResetMailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	mailer           ResetMailer
	authCfg          config.AuthConfig
	frontendURL      string
	validator        *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	mailer ResetMailer,
	authCfg config.AuthConfig,
	frontendURL string,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		mailer:           mailer,
		authCfg:          authCfg,
		frontendURL:      frontendURL,
		validator:        validator.New(),
	}
}

// Register handles the /api/auth/register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := domain.NewUser(req.Email, req.Username, req.Password)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid user data: "+err.Error())
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if store.IsDuplicateError(err) {
			HandleAPIError(w, r, err, "")
			return
		}
		slog.Error("failed to create user", "error", err, "email", req.Email)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	h.respondWithTokens(w, r, user.ID, http.StatusCreated)
}

// Login handles the /api/auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		slog.Error("failed to get user by email", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.respondWithTokens(w, r, user.ID, http.StatusOK)
}

// RefreshToken handles the /api/auth/refresh endpoint, exchanging a valid
// refresh token for a fresh token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Invalid refresh token")
		return
	}

	h.respondWithTokens(w, r, claims.UserID, http.StatusOK)
}

// Me handles GET /api/auth/me, returning the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, user)
}

// UpdatePreferences handles PUT /api/auth/preferences.
func (h *AuthHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req UpdatePreferencesRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Theme != nil {
		user.Preferences.Theme = domain.Theme(*req.Theme)
	}
	if req.EmailNotifications != nil {
		user.Preferences.EmailNotifications = *req.EmailNotifications
	}
	if req.Timezone != nil {
		user.Preferences.Timezone = *req.Timezone
	}

	if err := h.userStore.Update(r.Context(), user); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, user)
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is
// identical whether or not the email exists, so the endpoint cannot be
// used to probe for accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	accepted := func() {
		RespondWithJSON(w, r, http.StatusAccepted, map[string]string{
			"message": "If the email exists, a reset link has been sent",
		})
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			slog.Error("failed to look up user for password reset", "error", err)
		}
		accepted()
		return
	}

	plain, hashed, err := auth.NewResetToken()
	if err != nil {
		slog.Error("failed to generate reset token", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to process request")
		return
	}

	expiresAt := time.Now().UTC().Add(time.Duration(h.authCfg.ResetTokenLifetimeMinutes) * time.Minute)
	if err := h.userStore.SetResetToken(r.Context(), user.ID, hashed, expiresAt); err != nil {
		slog.Error("failed to store reset token", "error", err, "user_id", user.ID)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to process request")
		return
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYou requested a password reset. Use the link below within %d minutes:\n\n%s/reset-password?token=%s\n\nIf you did not request this, ignore this email.\n",
		user.Username, h.authCfg.ResetTokenLifetimeMinutes, h.frontendURL, plain,
	)
	if err := h.mailer.Send(r.Context(), user.Email, "Password reset", body); err != nil {
		slog.Error("failed to send reset email", "error", err, "user_id", user.ID)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to process request")
		return
	}

	accepted()
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userStore.GetByValidResetToken(r.Context(), auth.HashResetToken(req.Token), time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			RespondWithError(w, r, http.StatusUnauthorized, "Invalid or expired reset token")
			return
		}
		slog.Error("failed to look up reset token", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to process request")
		return
	}

	user.Password = req.Password
	if err := h.userStore.Update(r.Context(), user); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.userStore.ClearResetToken(r.Context(), user.ID); err != nil {
		slog.Error("failed to clear reset token", "error", err, "user_id", user.ID)
	}

	h.respondWithTokens(w, r, user.ID, http.StatusOK)
}

// respondWithTokens issues a fresh access/refresh token pair for the user.
func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, r *http.Request, userID uuid.UUID, status int) {
	accessToken, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", userID)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), userID)
	if err != nil {
		slog.Error("failed to generate refresh token", "error", err, "user_id", userID)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	expiresAt := time.Now().UTC().
		Add(time.Duration(h.authCfg.TokenLifetimeMinutes) * time.Minute).
		Format(time.RFC3339)

	RespondWithJSON(w, r, status, AuthResponse{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	})
}
