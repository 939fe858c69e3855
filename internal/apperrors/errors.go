// Package apperrors defines the sentinel errors shared between the service
// and API layers. Handlers map them to HTTP statuses with errors.Is.
package apperrors

import "errors"

var (
	// ErrNotFound means the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller failed authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller is authenticated but not allowed
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means the action collides with existing state,
	// e.g. a duplicate signature or a duplicate email
	ErrConflict = errors.New("conflict")

	// ErrInvalidState means the contract status does not permit the action
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation means the request payload is missing or malformed
	ErrValidation = errors.New("validation error")
)
