package auth

import (
	"fmt"

	"github.com/kbukum/tokengate/auth/password"
	"github.com/kbukum/tokengate/auth/revocation"
	"github.com/kbukum/tokengate/auth/token"
)

// Config holds all authentication configuration.
type Config struct {
	// Token configures signing keys and token lifetime.
	Token token.Config `mapstructure:"token"`

	// Password configures password hashing.
	Password password.Config `mapstructure:"password"`

	// Revocation configures the signed-out token list.
	Revocation revocation.Config `mapstructure:"revocation"`
}

// ApplyDefaults sets defaults on every sub-configuration.
func (c *Config) ApplyDefaults() {
	c.Token.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.Revocation.ApplyDefaults()
}

// Validate checks every sub-configuration. A missing signing key fails here.
func (c *Config) Validate() error {
	if err := c.Token.Validate(); err != nil {
		return fmt.Errorf("auth.token: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	if err := c.Revocation.Validate(); err != nil {
		return fmt.Errorf("auth.revocation: %w", err)
	}
	return nil
}

// Describe returns a one-line summary for the startup log.
// Example: "token(HS256) ttl=15m0s password=bcrypt revocation=memory"
func (c *Config) Describe() string {
	line := fmt.Sprintf("token(%s) ttl=%s password=%s revocation=%s",
		c.Token.Method, c.Token.TTL, c.Password.Algorithm, c.Revocation.Backend)
	if n := len(c.Token.Retired); n > 0 {
		line += fmt.Sprintf(" retired_keys=%d", n)
	}
	return line
}
