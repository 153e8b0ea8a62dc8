package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"passthrough", NewForbidden("nope").(*DomainError), "FORBIDDEN", http.StatusForbidden},
		{"validation errors", ValidationErrors{"too short"}, "VALIDATION_FAILED", http.StatusBadRequest},
		{"no rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"generic", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := ToDomainError(tt.err)
			assert.Equal(t, tt.code, mapped.Code)
			assert.Equal(t, tt.status, mapped.HTTPStatus)
		})
	}
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestValidationErrorsMessage(t *testing.T) {
	verr := ValidationErrors{"first", "second"}
	assert.Equal(t, "first; second", verr.Error())
}
