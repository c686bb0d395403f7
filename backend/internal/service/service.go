package service

import (
	stderrors "errors"
	"time"

	"github.com/ptchurch/site/backend/internal/utils/email"
	"github.com/ptchurch/site/shared/errors"
)

type Mailer interface {
	Send(msg email.Message) error
}

// Jwt signs and checks the links mailed to visitors.
type Jwt interface {
	NewToken(purpose, subject string, ttl time.Duration) (string, error)
	DecodeToken(token, purpose string) (string, error)
}

// Clock is swapped in tests.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// notFound maps the store's ErrNotFound to a 404 with message and passes
// every other error through.
func notFound(err error, message string) error {
	if stderrors.Is(err, ErrNotFound) {
		return errors.NotFound(message)
	}
	return err
}

func invalidField(field, message string) error {
	e := errors.BadRequest(errors.CodeValidationFailed, message)
	e.Fields = []string{field}
	return e
}
