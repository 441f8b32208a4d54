package agents_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/agent-chat/internal/agents"
	"github.com/JaimeStill/agent-chat/internal/routes"
	"github.com/JaimeStill/agent-chat/pkg/pagination"
)

func newAgentServer(t *testing.T) (*httptest.Server, agents.System) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := pagination.Config{DefaultPageSize: 10, MaxPageSize: 50}

	sys := agents.NewMemory(logger, cfg)
	h := agents.NewHandler(sys, logger, cfg)

	r := routes.New(logger)
	r.RegisterGroup(h.Routes())

	srv := httptest.NewServer(r.Build())
	t.Cleanup(srv.Close)
	return srv, sys
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHandler_CreateAndFind(t *testing.T) {
	srv, _ := newAgentServer(t)

	body := `{"name":"Helper","purpose":"help","allowed_topics":["go"],"owner_user_id":"u1"}`
	resp, err := http.Post(srv.URL+"/api/agents", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	created := decode[agents.Agent](t, resp)
	if created.Provider != agents.ProviderOpenAI || !created.Active {
		t.Errorf("defaults not applied: %+v", created)
	}

	resp, _ = http.Get(srv.URL + "/api/agents/" + created.ID.String())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", resp.StatusCode)
	}
	found := decode[agents.Agent](t, resp)
	if found.Name != "Helper" {
		t.Errorf("Name = %q, want Helper", found.Name)
	}
}

func TestHandler_CreateInvalid(t *testing.T) {
	srv, _ := newAgentServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing name", `{"purpose":"x"}`, http.StatusBadRequest},
		{"bad provider", `{"name":"x","provider":"other"}`, http.StatusBadRequest},
		{"unknown field", `{"name":"x","color":"red"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/agents", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST error = %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestHandler_FindErrors(t *testing.T) {
	srv, _ := newAgentServer(t)

	resp, _ := http.Get(srv.URL + "/api/agents/not-a-uuid")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", resp.StatusCode)
	}

	resp, _ = http.Get(srv.URL + "/api/agents/00000000-0000-0000-0000-000000000001")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing agent status = %d, want 404", resp.StatusCode)
	}
}

func TestHandler_UpdateToggleDelete(t *testing.T) {
	srv, sys := newAgentServer(t)
	a := mustCreate(t, sys, agents.CreateCommand{Name: "Helper", Tone: "calm"})
	url := srv.URL + "/api/agents/" + a.ID.String()

	req, _ := http.NewRequest(http.MethodPut, url, strings.NewReader(`{"purpose":"assist"}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT error = %v", err)
	}
	updated := decode[agents.Agent](t, resp)
	if updated.Purpose != "assist" || updated.Tone != "calm" {
		t.Errorf("partial update = %+v", updated)
	}

	resp, _ = http.Post(url+"/toggle", "application/json", nil)
	toggled := decode[agents.Agent](t, resp)
	if toggled.Active {
		t.Error("toggle should deactivate")
	}

	req, _ = http.NewRequest(http.MethodDelete, url, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", resp.StatusCode)
	}
}

func TestHandler_ListByOwnerAndSearch(t *testing.T) {
	srv, sys := newAgentServer(t)
	mustCreate(t, sys, agents.CreateCommand{Name: "A", OwnerUserID: "u1"})
	mustCreate(t, sys, agents.CreateCommand{Name: "B", OwnerUserID: "u2", Description: "shared"})

	resp, _ := http.Get(srv.URL + "/api/agents?owner=u1")
	owned := decode[[]agents.Agent](t, resp)
	if len(owned) != 1 || owned[0].Name != "A" {
		t.Errorf("owner list = %+v", owned)
	}

	resp, _ = http.Post(srv.URL+"/api/agents/search", "application/json", strings.NewReader(`{"search":"shared"}`))
	page := decode[pagination.PageResult[agents.Agent]](t, resp)
	if page.Total != 1 || page.Data[0].Name != "B" {
		t.Errorf("search = %+v", page)
	}

	resp, _ = http.Get(srv.URL + "/api/agents?page_size=1")
	all := decode[pagination.PageResult[agents.Agent]](t, resp)
	if all.Total != 2 || len(all.Data) != 1 {
		t.Errorf("paged list total %d len %d", all.Total, len(all.Data))
	}
}
