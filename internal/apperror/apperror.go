package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes the API can surface.
// Handlers map these to HTTP status codes with errors.Is; anything
// that doesn't match falls through to a generic internal error.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrInternal           = errors.New("internal error")
)

type AppError struct {
	Err     error  // sentinel cause
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, value),
	}
}

// Unauthenticated covers a missing or structurally invalid credential.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Expired covers a structurally valid credential whose validity window
// has passed. Kept distinct from Unauthenticated so clients can tell
// "log in again" apart from "you never logged in".
func Expired(message string) *AppError {
	return &AppError{
		Err:     ErrTokenExpired,
		Message: message,
	}
}

// InvalidCredentials is returned on a failed login. The message is the
// same for an unknown email and a wrong password so the response
// doesn't leak which part was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid email or password",
	}
}

// InvalidParameter covers malformed pagination or sort parameters.
func InvalidParameter(field, message string) *AppError {
	return &AppError{
		Err:     ErrInvalidParameter,
		Message: message,
		Field:   field,
	}
}

// Internal wraps unexpected failures (I/O errors, corrupt state).
// The message is safe to return to clients; the underlying cause is
// only ever logged.
func Internal(message string) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: message,
	}
}
