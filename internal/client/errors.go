package client

import (
	"fmt"
)

// The API surfaces four failure kinds. Callers dispatch with errors.As
// rather than inspecting flags inside a generic error value.

// NotFoundError means the target entity vanished between the optimistic
// patch and the server confirmation.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return "not found"
	}
	return e.Message
}

// AuthError means the caller is not (or no longer) authenticated, or,
// when Forbidden is set, is authenticated but not allowed to touch the
// target.
type AuthError struct {
	Message   string
	Forbidden bool
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// ValidationError is a structured form error (the server set
// isFormError); it is surfaced inline at the field, not as a toast.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError is a network or server failure unrelated to business
// logic. Safe for the user to retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
