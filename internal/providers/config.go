package providers

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/docker/go-units"
)

// Env maps environment variable names for provider configuration.
type Env struct {
	ConnectTimeout  string
	ReadTimeout     string
	MaxResponseSize string
	MaxConcurrency  string
	RateLimit       string
	OpenAI          BackendEnv
	Gemini          BackendEnv
}

// BackendEnv maps environment variable names for a single backend.
type BackendEnv struct {
	BaseURL      string
	APIKey       string
	DefaultModel string
}

// Config contains settings shared by every backend plus per-backend endpoints.
type Config struct {
	ConnectTimeout  string `toml:"connect_timeout"`
	ReadTimeout     string `toml:"read_timeout"`
	MaxResponseSize string `toml:"max_response_size"`

	// MaxConcurrency bounds in-flight requests per backend.
	MaxConcurrency int `toml:"max_concurrency"`

	// RateLimit is requests per second per backend. Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`

	BreakerMaxFailures uint32 `toml:"breaker_max_failures"`
	BreakerTimeout     string `toml:"breaker_timeout"`
	BreakerInterval    string `toml:"breaker_interval"`

	OpenAI BackendConfig `toml:"openai"`
	Gemini BackendConfig `toml:"gemini"`

	maxResponseSizeVal int64
}

// BackendConfig locates and authenticates one LLM backend.
type BackendConfig struct {
	BaseURL      string `toml:"base_url"`
	APIKey       string `toml:"api_key"`
	DefaultModel string `toml:"default_model"`
}

// ConnectTimeoutDuration parses and returns the connect timeout as a time.Duration.
func (c *Config) ConnectTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnectTimeout)
	return d
}

// ReadTimeoutDuration parses and returns the response header timeout as a time.Duration.
func (c *Config) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

// BreakerTimeoutDuration is how long an open breaker waits before probing.
func (c *Config) BreakerTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.BreakerTimeout)
	return d
}

// BreakerIntervalDuration is the closed-state period after which failure counts reset.
func (c *Config) BreakerIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.BreakerInterval)
	return d
}

// MaxResponseSizeBytes returns the parsed response body cap.
func (c *Config) MaxResponseSizeBytes() int64 {
	return c.maxResponseSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	c.loadEnv(env)
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.ConnectTimeout != "" {
		c.ConnectTimeout = overlay.ConnectTimeout
	}
	if overlay.ReadTimeout != "" {
		c.ReadTimeout = overlay.ReadTimeout
	}
	if overlay.MaxResponseSize != "" {
		c.MaxResponseSize = overlay.MaxResponseSize
	}
	if overlay.MaxConcurrency != 0 {
		c.MaxConcurrency = overlay.MaxConcurrency
	}
	if overlay.RateLimit != 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.RateBurst != 0 {
		c.RateBurst = overlay.RateBurst
	}
	if overlay.BreakerMaxFailures != 0 {
		c.BreakerMaxFailures = overlay.BreakerMaxFailures
	}
	if overlay.BreakerTimeout != "" {
		c.BreakerTimeout = overlay.BreakerTimeout
	}
	if overlay.BreakerInterval != "" {
		c.BreakerInterval = overlay.BreakerInterval
	}
	c.OpenAI.merge(&overlay.OpenAI)
	c.Gemini.merge(&overlay.Gemini)
}

func (c *Config) loadDefaults() {
	if c.ConnectTimeout == "" {
		c.ConnectTimeout = "10s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "30s"
	}
	if c.MaxResponseSize == "" {
		c.MaxResponseSize = "10MB"
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 16
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	if c.BreakerMaxFailures == 0 {
		c.BreakerMaxFailures = 5
	}
	if c.BreakerTimeout == "" {
		c.BreakerTimeout = "30s"
	}
	if c.BreakerInterval == "" {
		c.BreakerInterval = "60s"
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.DefaultModel == "" {
		c.OpenAI.DefaultModel = "gpt-3.5-turbo"
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.Gemini.DefaultModel == "" {
		c.Gemini.DefaultModel = "gemini-2.0-flash"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env == nil {
		return
	}
	if v := os.Getenv(env.ConnectTimeout); v != "" {
		c.ConnectTimeout = v
	}
	if v := os.Getenv(env.ReadTimeout); v != "" {
		c.ReadTimeout = v
	}
	if v := os.Getenv(env.MaxResponseSize); v != "" {
		c.MaxResponseSize = v
	}
	if v := os.Getenv(env.MaxConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrency = n
		}
	}
	if v := os.Getenv(env.RateLimit); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = f
		}
	}
	c.OpenAI.loadEnv(&env.OpenAI)
	c.Gemini.loadEnv(&env.Gemini)
}

func (c *Config) validate() error {
	for name, v := range map[string]string{
		"connect_timeout":  c.ConnectTimeout,
		"read_timeout":     c.ReadTimeout,
		"breaker_timeout":  c.BreakerTimeout,
		"breaker_interval": c.BreakerInterval,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	size, err := units.FromHumanSize(c.MaxResponseSize)
	if err != nil {
		return fmt.Errorf("invalid max_response_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_response_size must be positive")
	}
	c.maxResponseSizeVal = size

	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}
	return nil
}

func (c *BackendConfig) merge(overlay *BackendConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.DefaultModel != "" {
		c.DefaultModel = overlay.DefaultModel
	}
}

func (c *BackendConfig) loadEnv(env *BackendEnv) {
	if v := os.Getenv(env.BaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(env.APIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(env.DefaultModel); v != "" {
		c.DefaultModel = v
	}
}
