package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// EnvStorageDriver overrides the storage driver.
	EnvStorageDriver        = "STORAGE_DRIVER"
	EnvStorageAgentCacheTTL = "STORAGE_AGENT_CACHE_TTL"
	EnvStorageSeedDemo      = "STORAGE_SEED_DEMO"
)

// Storage drivers.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// StorageConfig selects where agents and sessions are kept.
type StorageConfig struct {
	// Driver is "memory" or "postgres".
	// Default: "memory"
	Driver string `toml:"driver"`

	// AgentCacheTTL controls the read-through agent cache. "0s" disables caching.
	AgentCacheTTL string `toml:"agent_cache_ttl"`

	// SeedDemo loads the demo agents into the memory store at startup.
	SeedDemo bool `toml:"seed_demo"`
}

// AgentCacheTTLDuration parses and returns the agent cache TTL as a time.Duration.
func (c *StorageConfig) AgentCacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.AgentCacheTTL)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *StorageConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.AgentCacheTTL != "" {
		c.AgentCacheTTL = overlay.AgentCacheTTL
	}
	if overlay.SeedDemo {
		c.SeedDemo = true
	}
}

func (c *StorageConfig) loadDefaults() {
	if c.Driver == "" {
		c.Driver = StorageDriverMemory
	}
	if c.AgentCacheTTL == "" {
		c.AgentCacheTTL = "30s"
	}
}

func (c *StorageConfig) loadEnv() {
	if v := os.Getenv(EnvStorageDriver); v != "" {
		c.Driver = v
	}
	if v := os.Getenv(EnvStorageAgentCacheTTL); v != "" {
		c.AgentCacheTTL = v
	}
	if v := os.Getenv(EnvStorageSeedDemo); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SeedDemo = b
		}
	}
}

func (c *StorageConfig) validate() error {
	switch c.Driver {
	case StorageDriverMemory, StorageDriverPostgres:
	default:
		return fmt.Errorf("unknown driver: %s", c.Driver)
	}

	d, err := time.ParseDuration(c.AgentCacheTTL)
	if err != nil {
		return fmt.Errorf("invalid agent_cache_ttl: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("agent_cache_ttl cannot be negative")
	}

	return nil
}
