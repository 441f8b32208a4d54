package tracing

import (
	"fmt"
	"os"
	"strconv"
)

// Exporters.
const (
	ExporterNoop   = "noop"
	ExporterStdout = "stdout"
)

// Env maps environment variable names for tracing configuration.
type Env struct {
	Enabled     string
	Exporter    string
	ServiceName string
}

// Config controls span export.
type Config struct {
	Enabled     bool   `toml:"enabled"`
	Exporter    string `toml:"exporter"`
	ServiceName string `toml:"service_name"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	c.loadEnv(env)
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Exporter != "" {
		c.Exporter = overlay.Exporter
	}
	if overlay.ServiceName != "" {
		c.ServiceName = overlay.ServiceName
	}
}

func (c *Config) loadDefaults() {
	if c.Exporter == "" {
		c.Exporter = ExporterNoop
	}
	if c.ServiceName == "" {
		c.ServiceName = "agent-chat"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env == nil {
		return
	}
	if v := os.Getenv(env.Enabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := os.Getenv(env.Exporter); v != "" {
		c.Exporter = v
	}
	if v := os.Getenv(env.ServiceName); v != "" {
		c.ServiceName = v
	}
}

func (c *Config) validate() error {
	switch c.Exporter {
	case ExporterNoop, ExporterStdout:
		return nil
	default:
		return fmt.Errorf("unsupported exporter: %s", c.Exporter)
	}
}
