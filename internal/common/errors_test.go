package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("loading: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"invalid token", ErrInvalidToken, http.StatusBadRequest},
		{"bad credentials", ErrInvalidCredentials, http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusBadRequest},
		{"unique violation", &pgconn.PgError{Code: PgUniqueViolation}, http.StatusBadRequest},
		{"other pg error", &pgconn.PgError{Code: "40001"}, http.StatusInternalServerError},
		{"too many", ErrTooManyRequests, http.StatusTooManyRequests},
		{"upstream", ErrUpstream, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"client error", NewClientError(ErrNotFound, "Simulation not found"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}

func TestClientMessage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewClientError(ErrValidation, "Domain is required"))
	assert.Equal(t, "Domain is required", ClientMessage(err, "fallback"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "fallback", ClientMessage(errors.New("x"), "fallback"))
}
