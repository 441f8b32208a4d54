package chat

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/agent-chat/internal/sessions"
)

// Domain errors for message exchange.
var (
	ErrAgentNotFound = errors.New("agent not found")
	ErrEmptyMessage  = errors.New("message text is required")
	ErrProvider      = errors.New("provider misconfigured")
)

// MapHTTPStatus maps chat and session errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAgentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, ErrProvider):
		return http.StatusBadGateway
	default:
		return sessions.MapHTTPStatus(err)
	}
}
