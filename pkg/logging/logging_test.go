package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/agent-chat/pkg/logging"
)

func TestLevel_ToSlogLevel(t *testing.T) {
	tests := []struct {
		level    logging.Level
		expected slog.Level
	}{
		{logging.LevelDebug, slog.LevelDebug},
		{logging.LevelInfo, slog.LevelInfo},
		{logging.LevelWarn, slog.LevelWarn},
		{logging.LevelError, slog.LevelError},
		{logging.Level("unknown"), slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := tt.level.ToSlogLevel(); got != tt.expected {
				t.Errorf("ToSlogLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_Finalize(t *testing.T) {
	cfg := &logging.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Level != logging.LevelInfo {
		t.Errorf("Level = %q, want %q", cfg.Level, logging.LevelInfo)
	}
	if cfg.Format != logging.FormatText {
		t.Errorf("Format = %q, want %q", cfg.Format, logging.FormatText)
	}

	bad := &logging.Config{Level: "verbose"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("Finalize() should reject an unknown level")
	}
}

func TestConfig_Finalize_Env(t *testing.T) {
	t.Setenv("TEST_LOGGING_LEVEL", "debug")
	t.Setenv("TEST_LOGGING_FORMAT", "json")
	t.Setenv("TEST_LOGGING_ADD_SOURCE", "true")

	cfg := &logging.Config{}
	env := &logging.Env{
		Level:     "TEST_LOGGING_LEVEL",
		Format:    "TEST_LOGGING_FORMAT",
		AddSource: "TEST_LOGGING_ADD_SOURCE",
	}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Level != logging.LevelDebug || cfg.Format != logging.FormatJSON || !cfg.AddSource {
		t.Errorf("Finalize() = %+v, want debug/json/add_source", cfg)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, &logging.Config{
		Level:  logging.LevelWarn,
		Format: logging.FormatJSON,
	})

	logger.Info("dropped")
	logger.Warn("kept", "agent", "general")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}

	if entry["msg"] != "kept" || entry["agent"] != "general" {
		t.Errorf("entry = %v", entry)
	}
}

func TestFromContext(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	scoped := fallback.With("request_id", "abc")

	if got := logging.FromContext(context.Background(), fallback); got != fallback {
		t.Error("FromContext() without logger should return fallback")
	}

	ctx := logging.WithLogger(context.Background(), scoped)
	if got := logging.FromContext(ctx, fallback); got != scoped {
		t.Error("FromContext() should return the stored logger")
	}
}
