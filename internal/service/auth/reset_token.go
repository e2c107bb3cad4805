package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NewResetToken generates a password reset token pair. The plain token is
// sent to the user by email; only its SHA-256 hex digest is stored, so a
// database leak does not expose usable tokens.
func NewResetToken() (plain, hashed string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	plain = hex.EncodeToString(buf)
	return plain, HashResetToken(plain), nil
}

// HashResetToken returns the SHA-256 hex digest of a plain reset token,
// matching the form stored by the user store.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
