package chat

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/agent-chat/pkg/handlers"
	"github.com/JaimeStill/agent-chat/pkg/routes"
)

// Handler provides the HTTP endpoint for sending messages.
type Handler struct {
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewHandler creates a new chat HTTP handler.
func NewHandler(orchestrator *Orchestrator, logger *slog.Logger) *Handler {
	return &Handler{orchestrator: orchestrator, logger: logger}
}

// Routes returns the route group configuration for chat endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/api/chat",
		Description: "Message exchange",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/send", Handler: h.Send},
		},
	}
}

// Send handles POST /api/chat/send.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[SendCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	reply, err := h.orchestrator.SendMessage(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, reply.View())
}
