// Package auth verifies the app password against a pre-configured
// reference hash and issues session tokens. No plaintext password is ever
// stored.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidHash  = errors.New("invalid reference hash format")
	ErrHashMismatch = errors.New("password hash mismatch")
)

// VerifyPassword checks password against the configured reference hash.
// Bcrypt hashes are recognized by prefix; anything else must be a SHA-256
// hex digest, compared in constant time.
func VerifyPassword(password, refHash string) error {
	if strings.HasPrefix(refHash, "$2a$") || strings.HasPrefix(refHash, "$2b$") || strings.HasPrefix(refHash, "$2y$") {
		if err := bcrypt.CompareHashAndPassword([]byte(refHash), []byte(password)); err != nil {
			return ErrHashMismatch
		}
		return nil
	}

	want, err := hex.DecodeString(refHash)
	if err != nil || len(want) != sha256.Size {
		return ErrInvalidHash
	}

	got := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(got[:], want) != 1 {
		return ErrHashMismatch
	}
	return nil
}

// HashPassword returns the SHA-256 hex digest of password, the format
// expected in APP_PASSWORD_HASH.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
