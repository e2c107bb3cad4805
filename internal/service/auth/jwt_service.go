package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates an access token string and extracts its claims.
	// Returns ErrExpiredToken, ErrInvalidToken or ErrWrongTokenType on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed JWT refresh token for the user.
	// Refresh tokens have a longer lifetime and are used to obtain new
	// access tokens.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken validates a refresh token string and extracts
	// its claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the application-level view of a validated token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID

	// TokenType indicates the purpose of the token ("access" or "refresh").
	TokenType string

	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token type values carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)
