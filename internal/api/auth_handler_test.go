package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-api/internal/config"
	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/service/auth"
)

func authFixture() (*AuthHandler, *mockUserStore, *mockResetMailer) {
	users := newMockUserStore()
	mailer := &mockResetMailer{}
	h := NewAuthHandler(users, mockJWTService{}, mockPasswordVerifier{}, mailer,
		config.AuthConfig{
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 60 * 24,
			ResetTokenLifetimeMinutes:   10,
		}, "https://app.example.com")
	return h, users, mailer
}

func authRouter(h *AuthHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/refresh", h.RefreshToken)
	r.Post("/api/auth/forgot-password", h.ForgotPassword)
	r.Post("/api/auth/reset-password", h.ResetPassword)
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	h, _, _ := authFixture()
	router := authRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, reg.UserID, login.UserID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	h, _, _ := authFixture()
	router := authRouter(h)

	req := RegisterRequest{Email: "ada@example.com", Username: "ada", Password: "correct horse"}
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req.Username = "ada2"
	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	h, _, _ := authFixture()
	rec := doJSON(t, authRouter(h), http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h, _, _ := authFixture()
	router := authRouter(h)

	doJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "correct horse",
	})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong horse!",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUserSaysInvalidCredentials(t *testing.T) {
	h, _, _ := authFixture()
	rec := doJSON(t, authRouter(h), http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever!",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenIssuesNewPair(t *testing.T) {
	h, users, _ := authFixture()
	user, err := domain.NewUser("ada@example.com", "ada", "correct horse")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))

	rec := doJSON(t, authRouter(h), http.MethodPost, "/api/auth/refresh", RefreshTokenRequest{
		RefreshToken: "refresh:" + user.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID, resp.UserID)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	h, users, _ := authFixture()
	user, err := domain.NewUser("ada@example.com", "ada", "correct horse")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))

	rec := doJSON(t, authRouter(h), http.MethodPost, "/api/auth/refresh", RefreshTokenRequest{
		RefreshToken: "access:" + user.ID.String(),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotPasswordIsSilentForUnknownEmail(t *testing.T) {
	h, _, mailer := authFixture()
	rec := doJSON(t, authRouter(h), http.MethodPost, "/api/auth/forgot-password", ForgotPasswordRequest{
		Email: "ghost@example.com",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, mailer.sent)
}

func TestPasswordResetFlow(t *testing.T) {
	h, users, mailer := authFixture()
	router := authRouter(h)

	user, err := domain.NewUser("ada@example.com", "ada", "correct horse")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))

	rec := doJSON(t, router, http.MethodPost, "/api/auth/forgot-password", ForgotPasswordRequest{
		Email: "ada@example.com",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, mailer.sent, 1)

	// The stored hash corresponds to some plain token we don't have here;
	// simulate the emailed token by finding the hash the store recorded.
	var storedHash string
	for _, hash := range users.resetHashes {
		storedHash = hash
	}
	require.NotEmpty(t, storedHash)

	// A wrong token is rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/reset-password", ResetPasswordRequest{
		Token:    "bogus-token",
		Password: "brand new password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The real flow hashes the plain token before lookup; mint a token pair
	// whose hash we control to complete the reset.
	plain, hashed, err := auth.NewResetToken()
	require.NoError(t, err)
	users.resetHashes[user.ID] = hashed

	rec = doJSON(t, router, http.MethodPost, "/api/auth/reset-password", ResetPasswordRequest{
		Token:    plain,
		Password: "brand new password",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The new password now verifies.
	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:brand new password", stored.HashedPassword)
}
