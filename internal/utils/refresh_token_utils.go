package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// refreshSecretBytes yields a 64-character hex secret.
const refreshSecretBytes = 32

// NewRefreshToken returns a token of the form "<accountID>.<secret>".
// The account ID prefix lets the server find the stored hash without an extra index.
func NewRefreshToken(accountID string) (string, error) {
	if accountID == "" || strings.Contains(accountID, ".") {
		return "", fmt.Errorf("invalid account ID %q for refresh token", accountID)
	}
	b := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return accountID + "." + hex.EncodeToString(b), nil
}

// ParseRefreshToken splits a token produced by NewRefreshToken into its account ID.
func ParseRefreshToken(token string) (accountID string, ok bool) {
	accountID, secret, found := strings.Cut(token, ".")
	if !found || accountID == "" || len(secret) != 2*refreshSecretBytes {
		return "", false
	}
	return accountID, true
}

// HashRefreshToken generates a SHA256 hash of a refresh token.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CompareRefreshTokenHash compares a plain refresh token with its stored SHA256 hash.
func CompareRefreshTokenHash(token string, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashRefreshToken(token)), []byte(storedHash)) == 1
}
