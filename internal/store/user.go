package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tasknest/tasknest-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// It handles domain validation and password hashing internally.
	// Returns ErrEmailExists or ErrUsernameExists on unique violations.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	// The returned user contains all fields except the plaintext password.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user's details, including preferences.
	// If a new plaintext Password is set it is hashed and stored.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// SetResetToken stores the SHA-256 hash of a password reset token with
	// its expiry instant. Returns ErrUserNotFound if the user does not exist.
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error

	// GetByValidResetToken retrieves the user holding the given reset token
	// hash whose expiry is after now. Returns ErrUserNotFound otherwise.
	GetByValidResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)

	// ClearResetToken removes any stored reset token for the user.
	ClearResetToken(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) UserStore
}
