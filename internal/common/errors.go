package common

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g., email already taken
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrUpstream           = errors.New("upstream service failure") // third-party API or SMTP
)

// PgUniqueViolation is the SQLSTATE reported for unique constraint violations.
const PgUniqueViolation = "23505"

// HTTPStatusFromError maps domain errors to HTTP status codes.
// Duplicate registrations and bad credentials are deliberately 400, not 409/401.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrConflict) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrTooManyRequests) {
		return http.StatusTooManyRequests
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == PgUniqueViolation {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// IsUniqueViolation reports whether err carries a PostgreSQL unique violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == PgUniqueViolation
}

// ClientError pairs a message that is safe to show the caller with the
// sentinel that decides the response status.
type ClientError struct {
	Kind    error
	Message string
}

func (e *ClientError) Error() string { return e.Message }

func (e *ClientError) Unwrap() error { return e.Kind }

func NewClientError(kind error, message string) error {
	return &ClientError{Kind: kind, Message: message}
}

// ClientMessage returns the message of the first ClientError in err's chain,
// or fallback when there is none.
func ClientMessage(err error, fallback string) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return fallback
}
