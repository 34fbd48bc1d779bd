package api

import (
	"fmt"
	"net/http"

	"github.com/kbukum/tokengate/authz"
)

// Config configures the public routes.
type Config struct {
	// SignInRateLimit is the number of sign-in attempts allowed per client
	// IP per minute (default: 10). A negative value disables the limit.
	SignInRateLimit int `yaml:"signin_rate_limit" mapstructure:"signin_rate_limit"`

	// SignOutRateLimit is the number of sign-outs allowed per token subject
	// per minute (default: 30). A negative value disables the limit.
	SignOutRateLimit int `yaml:"signout_rate_limit" mapstructure:"signout_rate_limit"`

	// Rules replaces the default access table. First match wins; routes no
	// rule matches require authentication without a role.
	Rules []authz.Rule `yaml:"rules" mapstructure:"rules"`
}

// ApplyDefaults sets the rate limits and the default access table.
func (c *Config) ApplyDefaults() {
	if c.SignInRateLimit == 0 {
		c.SignInRateLimit = 10
	}
	if c.SignOutRateLimit == 0 {
		c.SignOutRateLimit = 30
	}
	if len(c.Rules) == 0 {
		c.Rules = DefaultRules()
	}
	for i := range c.Rules {
		if c.Rules[i].Method == "" {
			c.Rules[i].Method = authz.AnyMethod
		}
	}
}

// Validate checks every rule.
func (c *Config) Validate() error {
	if err := authz.NewPolicy(c.Rules...).Validate(); err != nil {
		return fmt.Errorf("api.rules: %w", err)
	}
	return nil
}

// DefaultRules is the access table for the built-in routes.
func DefaultRules() []authz.Rule {
	return []authz.Rule{
		{Method: http.MethodGet, Pattern: PathHello, Public: true},
		{Method: http.MethodPost, Pattern: PathSignIn, Public: true},
		{Method: http.MethodGet, Pattern: PathJWKS, Public: true},
		{Method: http.MethodGet, Pattern: PathUser, Roles: []string{"USER"}},
		{Method: http.MethodGet, Pattern: PathAdmin, Roles: []string{"ADMIN"}},
		{Method: http.MethodPost, Pattern: PathSignOut},
		{Method: http.MethodGet, Pattern: PathMe},
	}
}
