package sessions

import (
	"errors"
	"net/http"
)

// Domain errors for session operations.
var (
	ErrNotFound       = errors.New("session not found")
	ErrCreationFailed = errors.New("session creation failed")
	ErrInvalidMessage = errors.New("invalid message")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrCreationFailed) || errors.Is(err, ErrInvalidMessage) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
