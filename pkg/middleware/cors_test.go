package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/agent-chat/pkg/middleware"
)

func serveCORS(cfg *middleware.CORSConfig, method, origin string) (*httptest.ResponseRecorder, bool) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(method, "/", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()

	middleware.CORS(cfg)(handler).ServeHTTP(w, req)
	return w, called
}

func TestCORS_Origins(t *testing.T) {
	tests := []struct {
		name   string
		cfg    middleware.CORSConfig
		origin string
		want   string
	}{
		{"disabled", middleware.CORSConfig{Origins: []string{"http://localhost:3000"}}, "http://localhost:3000", ""},
		{"no origins", middleware.CORSConfig{Enabled: true}, "http://localhost:3000", ""},
		{"allowed", middleware.CORSConfig{Enabled: true, Origins: []string{"http://localhost:3000"}}, "http://localhost:3000", "http://localhost:3000"},
		{"disallowed", middleware.CORSConfig{Enabled: true, Origins: []string{"http://localhost:3000"}}, "http://evil.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := serveCORS(&tt.cfg, http.MethodGet, tt.origin)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCORS_Headers(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           7200,
	}

	w, _ := serveCORS(cfg, http.MethodGet, "http://localhost:3000")

	want := map[string]string{
		"Access-Control-Allow-Methods":     "GET, POST",
		"Access-Control-Allow-Headers":     "Content-Type",
		"Access-Control-Allow-Credentials": "true",
		"Access-Control-Max-Age":           "7200",
	}

	for header, value := range want {
		if got := w.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled: true,
		Origins: []string{"http://localhost:3000"},
	}

	w, called := serveCORS(cfg, http.MethodOptions, "http://localhost:3000")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	if called {
		t.Error("handler should not be called for OPTIONS preflight")
	}
}

func TestCORSConfig_Finalize_EnvOverrides(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://localhost:3000, http://localhost:8080")
	t.Setenv("TEST_CORS_MAX_AGE", "60")

	cfg := &middleware.CORSConfig{}
	env := &middleware.CORSEnv{
		Enabled: "TEST_CORS_ENABLED",
		Origins: "TEST_CORS_ORIGINS",
		MaxAge:  "TEST_CORS_MAX_AGE",
	}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if !cfg.Enabled {
		t.Error("Enabled should be true from env")
	}

	if len(cfg.Origins) != 2 || cfg.Origins[1] != "http://localhost:8080" {
		t.Errorf("Origins = %v, want two trimmed origins", cfg.Origins)
	}

	if len(cfg.AllowedMethods) == 0 {
		t.Error("AllowedMethods should have defaults")
	}

	if cfg.MaxAge != 60 {
		t.Errorf("MaxAge = %d, want 60", cfg.MaxAge)
	}
}

func TestCORSConfig_Merge_NilSlicesPreserveBase(t *testing.T) {
	base := middleware.CORSConfig{
		Origins:        []string{"http://a.com"},
		AllowedMethods: []string{"GET", "POST"},
	}

	base.Merge(&middleware.CORSConfig{Enabled: true})

	if !base.Enabled {
		t.Error("Enabled should take overlay value")
	}
	if len(base.Origins) != 1 || len(base.AllowedMethods) != 2 {
		t.Errorf("Merge() = %+v, want base slices preserved", base)
	}
}
