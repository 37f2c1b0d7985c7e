package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("year", "is required"), http.StatusBadRequest},
		{"nothing to update", ErrNothingToUpdate, http.StatusBadRequest},
		{"unauthorized", fmt.Errorf("%w: bad password", ErrUnauthorized), http.StatusUnauthorized},
		{"insufficient", ErrInsufficientAuthorization, http.StatusUnauthorized},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: dup", ErrConflict), http.StatusConflict},
		{"insert", fmt.Errorf("%w: %w", ErrInsertFailure, errors.New("disk")), http.StatusInternalServerError},
		{"ingest", ErrIngestFailure, http.StatusInternalServerError},
		{"upstream", ErrUpstreamUnavailable, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "start", Error: "is required"},
		{Field: "end", Error: "must not be before start"},
	}}
	assert.Equal(t, "validation failed: start: is required; end: must not be before start", err.Error())
}
