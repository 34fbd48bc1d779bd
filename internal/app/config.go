package app

import (
	"fmt"

	"github.com/kbukum/tokengate/auth"
	"github.com/kbukum/tokengate/auth/revocation"
	"github.com/kbukum/tokengate/config"
	"github.com/kbukum/tokengate/credential"
	"github.com/kbukum/tokengate/database"
	"github.com/kbukum/tokengate/internal/api"
	"github.com/kbukum/tokengate/observability"
	"github.com/kbukum/tokengate/redis"
	"github.com/kbukum/tokengate/server"
)

// ServiceName is the default service name and config file stem.
const ServiceName = "tokengate"

// Config is the full tokengate configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Credentials   credential.Config    `yaml:"credentials" mapstructure:"credentials"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	API           api.Config           `yaml:"api" mapstructure:"api"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Credentials.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.API.ApplyDefaults()
}

// Validate checks every section in use. Database and Redis settings are
// only checked when a backend needs them.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Credentials.Validate(); err != nil {
		return err
	}
	if c.usesDatabase() {
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if c.usesRedis() {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	return c.API.Validate()
}

func (c *Config) usesDatabase() bool {
	return c.Credentials.Backend == credential.BackendSQL
}

func (c *Config) usesRedis() bool {
	return c.Auth.Revocation.Backend == revocation.BackendRedis
}
