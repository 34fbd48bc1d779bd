package revocation

import (
	"fmt"
	"time"
)

// Backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config selects where revoked token ids are kept.
type Config struct {
	Backend string `yaml:"backend" mapstructure:"backend"`

	// KeyPrefix namespaces Redis keys.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`

	// SweepInterval is how often the memory backend drops expired entries.
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`

	// Breaker guards the redis backend.
	Breaker BreakerConfig `yaml:"breaker" mapstructure:"breaker"`
}

// BreakerConfig configures the circuit breaker in front of a remote store.
type BreakerConfig struct {
	MaxFailures int           `yaml:"max_failures" mapstructure:"max_failures"`
	Cooldown    time.Duration `yaml:"cooldown" mapstructure:"cooldown"`

	now func() time.Time
}

// ApplyDefaults sets the memory backend and a one minute sweep.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.Breaker.MaxFailures <= 0 {
		c.Breaker.MaxFailures = 5
	}
	if c.Breaker.Cooldown <= 0 {
		c.Breaker.Cooldown = 10 * time.Second
	}
}

// Validate checks the backend name.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis, BackendNone:
		return nil
	default:
		return fmt.Errorf("revocation.backend must be memory, redis or none, got %q", c.Backend)
	}
}
