package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/agent-chat/internal/config"
)

// workspace switches into a temp dir containing the given config files.
func workspace(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	t.Chdir(dir)
	t.Setenv(config.EnvServiceEnv, "")
}

func TestLoad_RepositoryConfig(t *testing.T) {
	data, err := os.ReadFile("../../config.toml")
	if err != nil {
		t.Fatalf("read config.toml: %v", err)
	}
	workspace(t, map[string]string{config.BaseConfigFile: string(data)})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Storage.Driver != config.StorageDriverMemory {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
	if cfg.Providers.OpenAI.DefaultModel != "gpt-3.5-turbo" {
		t.Errorf("OpenAI.DefaultModel = %q", cfg.Providers.OpenAI.DefaultModel)
	}
	if cfg.Server.MaxBodySizeBytes() != 1000*1000 {
		t.Errorf("MaxBodySizeBytes() = %d", cfg.Server.MaxBodySizeBytes())
	}
}

func TestLoad_Defaults(t *testing.T) {
	workspace(t, map[string]string{config.BaseConfigFile: ""})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Storage.AgentCacheTTLDuration() != 30*time.Second {
		t.Errorf("AgentCacheTTLDuration() = %v", cfg.Storage.AgentCacheTTLDuration())
	}
	if !cfg.Metrics.IsEnabled() || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Database.Host != "" {
		t.Error("database section should stay untouched for the memory driver")
	}
}

func TestLoad_Overlay(t *testing.T) {
	workspace(t, map[string]string{
		config.BaseConfigFile: "shutdown_timeout = \"10s\"\n\n[server]\nport = 8080\n",
		"config.test.toml":    "shutdown_timeout = \"60s\"\n\n[server]\nport = 9090\n\n[metrics]\nenabled = false\n",
	})
	t.Setenv(config.EnvServiceEnv, "test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ShutdownTimeout != "60s" {
		t.Errorf("ShutdownTimeout = %q, want 60s", cfg.ShutdownTimeout)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Metrics.IsEnabled() {
		t.Error("overlay should disable metrics")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	workspace(t, map[string]string{config.BaseConfigFile: "[server]\nport = 8080\n"})
	t.Setenv(config.EnvServerPort, "7070")
	t.Setenv(config.EnvStorageAgentCacheTTL, "0s")
	t.Setenv(config.EnvServiceShutdownTimeout, "5s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Storage.AgentCacheTTLDuration() != 0 {
		t.Errorf("AgentCacheTTLDuration() = %v, want 0", cfg.Storage.AgentCacheTTLDuration())
	}
	if cfg.ShutdownTimeoutDuration() != 5*time.Second {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 5s", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"shutdown timeout", `shutdown_timeout = "soon"`},
		{"port", "[server]\nport = 70000\n"},
		{"body size", "[server]\nmax_body_size = \"lots\"\n"},
		{"storage driver", "[storage]\ndriver = \"sqlite\"\n"},
		{"cache ttl", "[storage]\nagent_cache_ttl = \"-1s\"\n"},
		{"metrics path", "[metrics]\npath = \"metrics\"\n"},
		{"malformed toml", "[server"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t, map[string]string{config.BaseConfigFile: tt.config})

			if _, err := config.Load(); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	workspace(t, nil)

	if _, err := config.Load(); err == nil {
		t.Error("Load() succeeded without config.toml")
	}
}

func TestStorageConfig_Merge(t *testing.T) {
	base := config.StorageConfig{Driver: "memory", AgentCacheTTL: "30s"}
	base.Merge(&config.StorageConfig{Driver: "postgres", SeedDemo: true})

	if base.Driver != "postgres" || base.AgentCacheTTL != "30s" || !base.SeedDemo {
		t.Errorf("Merge() = %+v", base)
	}
}
