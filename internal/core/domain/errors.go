package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidPassword    = errors.New("current password is incorrect")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrCannotDisableSelf  = errors.New("cannot deactivate your own account")
	ErrInvalidInput       = errors.New("invalid input")

	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrSigningKeyMissing = errors.New("token signing key is not configured")

	// Category sentinels. Match them with errors.Is; the typed errors below
	// carry the details.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")
	ErrTransient       = errors.New("temporarily unavailable")
)

// AuthReason says why a request could not be authenticated.
type AuthReason string

const (
	ReasonAbsent   AuthReason = "absent"
	ReasonExpired  AuthReason = "expired"
	ReasonInvalid  AuthReason = "invalid"
	ReasonInactive AuthReason = "inactive"
)

// UnauthenticatedError is terminal for the request: the caller must present
// different credentials.
type UnauthenticatedError struct {
	Reason AuthReason
}

// Unauthenticated returns an UnauthenticatedError for reason.
func Unauthenticated(reason AuthReason) error {
	return &UnauthenticatedError{Reason: reason}
}

func (e *UnauthenticatedError) Error() string {
	return "unauthenticated: " + string(e.Reason)
}

func (e *UnauthenticatedError) Is(target error) bool {
	return target == ErrUnauthenticated
}

// ForbiddenError reports the roles an operation required and the role the
// caller actually holds.
type ForbiddenError struct {
	Required []Role
	Actual   Role
}

// Forbidden returns a ForbiddenError.
func Forbidden(actual Role, required ...Role) error {
	return &ForbiddenError{Required: required, Actual: actual}
}

func (e *ForbiddenError) Error() string {
	names := make([]string, len(e.Required))
	for i, r := range e.Required {
		names[i] = string(r)
	}
	return fmt.Sprintf("access forbidden: requires %s, have %q", strings.Join(names, "|"), e.Actual)
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// TransientError wraps a store failure or timeout. It is the only category
// a caller may retry unchanged.
type TransientError struct {
	Cause error
}

// Transient wraps cause as a TransientError.
func Transient(cause error) error {
	return &TransientError{Cause: cause}
}

func (e *TransientError) Error() string {
	return "temporarily unavailable: " + e.Cause.Error()
}

func (e *TransientError) Unwrap() error { return e.Cause }

func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// ConflictError reports which unique field collided.
type ConflictError struct {
	Field string
}

// Conflict returns a ConflictError for field.
func Conflict(field string) error {
	return &ConflictError{Field: field}
}

func (e *ConflictError) Error() string {
	return "user already exists with this " + e.Field
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrUserExists
}

// ReasonOf extracts the AuthReason from err, if it is an UnauthenticatedError.
func ReasonOf(err error) (AuthReason, bool) {
	var ue *UnauthenticatedError
	if errors.As(err, &ue) {
		return ue.Reason, true
	}
	return "", false
}

// IsRetryable reports whether err may be retried without changing credentials.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
