package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/agent-chat/pkg/logging"
	"github.com/JaimeStill/agent-chat/pkg/middleware"
)

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/send", nil)
	w := httptest.NewRecorder()

	middleware.Logger(logger)(handler).ServeHTTP(w, req)

	out := buf.String()
	for _, want := range []string{"msg=request", "method=POST", "uri=/api/chat/send", "status=201", "duration=", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}

	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("response should carry a request id")
	}
}

func TestLogger_ReusesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var scoped *slog.Logger
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = logging.FromContext(r.Context(), nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()

	middleware.Logger(logger)(handler).ServeHTTP(w, req)

	if scoped == nil {
		t.Fatal("handler context should carry a request logger")
	}

	if got := w.Header().Get(middleware.RequestIDHeader); got != "req-123" {
		t.Errorf("%s = %q, want %q", middleware.RequestIDHeader, got, "req-123")
	}

	if !strings.Contains(buf.String(), "request_id=req-123") {
		t.Errorf("log output should reuse the incoming request id: %s", buf.String())
	}
}

func TestMaxBytes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name  string
		limit int64
		body  string
		want  int
	}{
		{"under limit", 16, "hello", http.StatusOK},
		{"over limit", 4, "hello", http.StatusRequestEntityTooLarge},
		{"disabled", 0, "hello", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			middleware.MaxBytes(tt.limit)(handler).ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
