// Package jwt signs the self-contained links the site mails out (RSVP
// cancellation, newsletter unsubscribe). A token names one record and one
// purpose, so a cancel link cannot be replayed as an unsubscribe link.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	internal_errors "github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/logger"
)

const (
	PurposeRSVPCancel  = "rsvp-cancel"
	PurposeUnsubscribe = "unsubscribe"
)

type JwtService interface {
	// NewToken signs subject for purpose. A zero ttl never expires; a negative
	// one yields a token that is already expired.
	NewToken(purpose, subject string, ttl time.Duration) (string, error)
	// DecodeToken returns the subject of a valid token issued for purpose.
	DecodeToken(token, purpose string) (string, error)
}

type Jwt struct {
	secretKey string
}

type claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func New(secretKey string) JwtService {
	return &Jwt{secretKey}
}

func invalidToken() error {
	e := internal_errors.BadRequest(internal_errors.CodeValidationFailed, "Invalid or expired token")
	e.Fields = []string{"token"}
	return e
}

func (j *Jwt) NewToken(purpose, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl != 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("failed to sign token", "purpose", purpose, "error", err)
		return "", fmt.Errorf("can't create token: %w", err)
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(tokenString, purpose string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		logger.Log.Debug("rejected token", "purpose", purpose, "error", err)
		return "", invalidToken()
	}
	if !token.Valid || c.Purpose != purpose || c.Subject == "" {
		return "", invalidToken()
	}
	return c.Subject, nil
}
