package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier defines the interface for comparing a password with
// its stored hash.
type PasswordVerifier interface {
	// Compare checks whether the plaintext password matches the hash.
	// Returns nil on match and an error otherwise.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare checks a bcrypt hashed password against its plaintext candidate.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// HashPassword hashes a plaintext password with bcrypt at the given cost.
// A cost of 0 selects bcrypt.DefaultCost. bcrypt operates on the first 72
// bytes only; domain validation caps passwords at that length.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
