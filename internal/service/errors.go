package service

import (
	"errors"
	"fmt"

	"github.com/liflo-ai/liflo/internal/repository"
)

var (
	ErrGoalNotFound   = repository.ErrGoalNotFound
	ErrRecordNotFound = repository.ErrRecordNotFound
	ErrUserNotFound   = repository.ErrUserNotFound
	ErrNicknameTaken  = repository.ErrNicknameTaken

	ErrInvalidCredentials = errors.New("invalid nickname or pin")
	ErrInvalidToken       = errors.New("invalid token")
)

// ErrGoalClosed rejects changes to a done or aborted goal.
var ErrGoalClosed = &ValidationError{Field: "status", Message: "goal is already closed"}

// ValidationError reports malformed or out-of-range input. It is always
// returned before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error()}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGoalNotFound) ||
		errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
