package tokens

import (
	"fmt"
	"os"
)

// Counter kinds.
const (
	KindEstimate = "estimate"
	KindTiktoken = "tiktoken"
)

// Env maps environment variable names for token counting configuration.
type Env struct {
	Counter  string
	Encoding string
}

// Config selects the token counter.
type Config struct {
	Counter  string `toml:"counter"`
	Encoding string `toml:"encoding"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	c.loadEnv(env)
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.Counter != "" {
		c.Counter = overlay.Counter
	}
	if overlay.Encoding != "" {
		c.Encoding = overlay.Encoding
	}
}

func (c *Config) loadDefaults() {
	if c.Counter == "" {
		c.Counter = KindEstimate
	}
	if c.Encoding == "" {
		c.Encoding = "cl100k_base"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env == nil {
		return
	}
	if v := os.Getenv(env.Counter); v != "" {
		c.Counter = v
	}
	if v := os.Getenv(env.Encoding); v != "" {
		c.Encoding = v
	}
}

func (c *Config) validate() error {
	switch c.Counter {
	case KindEstimate, KindTiktoken:
		return nil
	default:
		return fmt.Errorf("unknown counter: %s", c.Counter)
	}
}
