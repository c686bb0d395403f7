package utils

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// NewID returns a random record identifier.
func NewID() string {
	return uuid.NewString()
}

// CompareSecret reports whether provided matches the configured shared
// secret. The configured value may be a bcrypt hash ($2a$/$2b$/$2y$) so the
// plain secret never has to sit in config files. An unset secret matches
// nothing.
func CompareSecret(configured, provided string) bool {
	if configured == "" || provided == "" {
		return false
	}
	if isBcryptHash(configured) {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(provided)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(provided)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
