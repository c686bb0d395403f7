package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

const (
	TokenLength = 32 // bytes

	CookieName = "pt_csrf"
	HeaderName = "x-csrf-token"

	// MaxAge of the token cookie in seconds (30 days).
	MaxAge = 30 * 24 * 60 * 60
)

// GenerateToken creates a cryptographically secure random token
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// ValidateToken compares the cookie token with the header token
func ValidateToken(cookieToken, headerToken string) bool {
	if cookieToken == "" || headerToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) == 1
}
