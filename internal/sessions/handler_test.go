package sessions_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/agent-chat/internal/routes"
	"github.com/JaimeStill/agent-chat/internal/sessions"
)

func TestHandler_Lifecycle(t *testing.T) {
	sys, agent := setup(t)

	r := routes.New(discard())
	r.RegisterGroup(sessions.NewHandler(sys, discard()).Routes())
	srv := httptest.NewServer(r.Build())
	defer srv.Close()

	body := `{"user_id":"u1","agent_id":"` + agent.ID.String() + `"}`
	resp, err := http.Post(srv.URL+"/api/sessions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created sessions.Session
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	resp, _ = http.Get(srv.URL + "/api/sessions?user=u1")
	var list []sessions.Session
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	resp, _ = http.Get(srv.URL + "/api/sessions/" + created.ID.String() + "/messages")
	var msgs []sessions.Message
	json.NewDecoder(resp.Body).Decode(&msgs)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || msgs == nil || len(msgs) != 0 {
		t.Errorf("messages status %d = %v, want empty list", resp.StatusCode, msgs)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/sessions/"+created.ID.String(), nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", resp.StatusCode)
	}

	resp, _ = http.Get(srv.URL + "/api/sessions/" + created.ID.String())
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestHandler_Errors(t *testing.T) {
	sys, _ := setup(t)

	r := routes.New(discard())
	r.RegisterGroup(sessions.NewHandler(sys, discard()).Routes())
	srv := httptest.NewServer(r.Build())
	defer srv.Close()

	resp, _ := http.Get(srv.URL + "/api/sessions")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing user status = %d, want 400", resp.StatusCode)
	}

	body := `{"user_id":"u1","agent_id":"00000000-0000-0000-0000-000000000009"}`
	resp, _ = http.Post(srv.URL+"/api/sessions", "application/json", strings.NewReader(body))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown agent status = %d, want 400", resp.StatusCode)
	}
}
