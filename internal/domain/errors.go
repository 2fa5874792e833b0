package domain

import (
	"errors"
	"strings"
)

var (
	// ErrValidation indicates a required field is missing or blank.
	ErrValidation = errors.New("validation error")
	// ErrDuplicateUser is returned when registering a username that is taken.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrUserNotFound is returned on login for an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned on login when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing, malformed or rejected bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFoundOrForbidden covers both an absent task and one owned by someone else.
	ErrNotFoundOrForbidden = errors.New("task not found")

	// repository level errors
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("username already taken")
)

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidationError names the missing or blank field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid returns a ValidationError carrying msg.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
