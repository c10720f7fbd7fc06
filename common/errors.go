package common

import (
	"errors"
	"net/http"
)

// Stable error kinds. Repository and service functions wrap one of these
// with fmt.Errorf("context: %w", kind) so handlers can match with errors.Is
// instead of string comparison.
var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
)

// Kind returns the machine-readable name for a wrapped error kind,
// or "internal" when the error matches none.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// ErrorStatus maps an error to the HTTP status its handlers respond with.
// Duplicate registrations respond 400, not 409.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
