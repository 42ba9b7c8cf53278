package service

import (
	"errors"
	"fmt"
)

var (
	ErrTradeNotFound      = errors.New("Trade not found")
	ErrSetupNotFound      = errors.New("Setup not found")
	ErrSessionNotFound    = errors.New("Session not found")
	ErrUserNotFound       = errors.New("User not found")
	ErrJobNotFound        = errors.New("Job not found")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidToken       = errors.New("Invalid or expired token")
	ErrTooManyAttempts    = errors.New("Too many login attempts, try again later")
	ErrForeignScreenshot  = errors.New("Screenshot belongs to another user")
)

// ValidationError is a request that is well formed but semantically invalid.
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

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// isDomainError reports errors that describe the request rather than a fault.
func isDomainError(err error) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return true
	}
	for _, target := range []error{
		ErrTradeNotFound, ErrSetupNotFound, ErrSessionNotFound, ErrUserNotFound, ErrJobNotFound,
		ErrInvalidCredentials, ErrEmailTaken, ErrInvalidToken, ErrTooManyAttempts,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
