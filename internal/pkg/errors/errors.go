package errors

import "errors"

// Common application errors shared across services and handlers.
var (
	// ErrNotFound is returned when a record or resource does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller lacks rights for an action.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a uniqueness race is lost and the caller
	// should retry the lookup.
	ErrConflict = errors.New("resource state conflict")
)
