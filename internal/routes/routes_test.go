package routes_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/agent-chat/internal/routes"
	pkgroutes "github.com/JaimeStill/agent-chat/pkg/routes"
)

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}
}

func TestBuild(t *testing.T) {
	sys := routes.New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	sys.RegisterRoute(pkgroutes.Route{Method: "GET", Pattern: "/healthz", Handler: respond("ok")})
	sys.RegisterGroup(pkgroutes.Group{
		Prefix: "/api",
		Children: []pkgroutes.Group{
			{
				Prefix: "/agents",
				Routes: []pkgroutes.Route{
					{Method: "GET", Pattern: "", Handler: respond("list")},
					{Method: "GET", Pattern: "/{id}", Handler: respond("find")},
				},
			},
		},
	})

	if len(sys.Routes()) != 1 || len(sys.Groups()) != 1 {
		t.Fatalf("Routes()/Groups() = %d/%d, want 1/1", len(sys.Routes()), len(sys.Groups()))
	}

	handler := sys.Build()

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{"GET", "/healthz", http.StatusOK, "ok"},
		{"GET", "/api/agents", http.StatusOK, "list"},
		{"GET", "/api/agents/123", http.StatusOK, "find"},
		{"POST", "/api/agents", http.StatusMethodNotAllowed, ""},
		{"GET", "/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}
