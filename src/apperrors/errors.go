// Package apperrors defines the failure kinds the archive reports and how they map to HTTP statuses.
package apperrors

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound                  = errors.New("not found")
	ErrNothingToUpdate           = errors.New("nothing to update")
	ErrInsertFailure             = errors.New("insert failed")
	ErrIngestFailure             = errors.New("image ingestion failed")
	ErrUpstreamUnavailable       = errors.New("upstream unavailable")
	ErrConflict                  = errors.New("already exists")
	ErrUnauthorized              = errors.New("unauthorized")
	ErrInsufficientAuthorization = errors.New("insufficient authorization")
)

type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError carries every field-level problem found in one request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Error)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Error: msg}}}
}

// Status maps err to the HTTP status the archive reports for it.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve), errors.Is(err, ErrNothingToUpdate):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInsufficientAuthorization):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
