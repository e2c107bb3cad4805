package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/config"
)

// jwtClaims is the wire-level claim set signed into tokens. The subject
// carries the user ID and the custom "type" claim distinguishes access
// tokens from refresh tokens so one cannot stand in for the other.
type jwtClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type hmacJWTService struct {
	secret          []byte
	tokenLifetime   time.Duration
	refreshLifetime time.Duration
	clock           func() time.Time
}

// NewJWTService creates a JWTService that signs tokens with HMAC-SHA256
// using the configured secret.
func NewJWTService(cfg config.AuthConfig) JWTService {
	return &hmacJWTService{
		secret:          []byte(cfg.JWTSecret),
		tokenLifetime:   time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		refreshLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		clock:           time.Now,
	}
}

func (s *hmacJWTService) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	return s.generate(userID, TokenTypeAccess, s.tokenLifetime)
}

func (s *hmacJWTService) GenerateRefreshToken(_ context.Context, userID uuid.UUID) (string, error) {
	return s.generate(userID, TokenTypeRefresh, s.refreshLifetime)
}

func (s *hmacJWTService) generate(userID uuid.UUID, tokenType string, lifetime time.Duration) (string, error) {
	now := s.clock()
	claims := jwtClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *hmacJWTService) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	return s.validate(tokenString, TokenTypeAccess)
}

func (s *hmacJWTService) ValidateRefreshToken(_ context.Context, tokenString string) (*Claims, error) {
	return s.validate(tokenString, TokenTypeRefresh)
}

func (s *hmacJWTService) validate(tokenString, wantType string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	var claims jwtClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject: %v", ErrInvalidToken, err)
	}

	return &Claims{
		UserID:    userID,
		TokenType: claims.TokenType,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
