package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db         store.DBTX
	logger     *slog.Logger
	bcryptCost int
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction
// managed by the caller. A bcryptCost of 0 selects bcrypt.DefaultCost.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:         db,
		logger:     logger.With(slog.String("component", "user_store")),
		bcryptCost: bcryptCost,
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:         tx,
		logger:     s.logger,
		bcryptCost: s.bcryptCost,
	}
}

const userColumns = `id, email, username, hashed_password, bio, avatar_url, preferences, created_at, updated_at`

// Create implements store.UserStore.Create
// It validates the user, hashes the plaintext password and inserts the row.
// Returns store.ErrEmailExists or store.ErrUsernameExists on unique
// violations.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hashed)
		user.Password = ""
	}

	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	query := `
		INSERT INTO users (id, email, username, hashed_password, bio, avatar_url, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.HashedPassword,
		user.Bio,
		user.AvatarURL,
		prefs,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	s.logger.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.UserStore.GetByEmail
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// Update implements store.UserStore.Update
// A non-empty plaintext Password is re-hashed before storage.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hashed)
		user.Password = ""
	}

	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET email = $2, username = $3, hashed_password = $4, bio = $5,
		    avatar_url = $6, preferences = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.HashedPassword,
		user.Bio,
		user.AvatarURL,
		prefs,
		user.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// SetResetToken implements store.UserStore.SetResetToken
func (s *PostgresUserStore) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id, tokenHash, expiresAt, time.Now().UTC())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// GetByValidResetToken implements store.UserStore.GetByValidResetToken
// Returns store.ErrUserNotFound when no user holds the token or it has
// expired; the two cases are deliberately indistinguishable to callers.
func (s *PostgresUserStore) GetByValidResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires_at > $2
	`
	user, err := s.scanUser(s.db.QueryRowContext(ctx, query, tokenHash, now))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ClearResetToken implements store.UserStore.ClearResetToken
func (s *PostgresUserStore) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = $2
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// scanUser scans one user row, decoding the preferences document.
func (s *PostgresUserStore) scanUser(row *sql.Row) (*domain.User, error) {
	var (
		user  domain.User
		prefs []byte
		bio   sql.NullString
		ava   sql.NullString
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.HashedPassword,
		&bio,
		&ava,
		&prefs,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			return nil, store.ErrUserNotFound
		}
		return nil, mapped
	}
	user.Bio = bio.String
	user.AvatarURL = ava.String
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &user.Preferences); err != nil {
			return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
		}
	}
	return &user, nil
}
