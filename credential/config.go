package credential

import (
	"fmt"

	"github.com/kbukum/tokengate/util"
)

// Backends.
const (
	BackendMemory = "memory"
	BackendSQL    = "sql"
)

// Config selects the store backend and lists seed users.
type Config struct {
	Backend string `mapstructure:"backend"`
	Users   []Seed `mapstructure:"users"`
}

// ApplyDefaults sets the memory backend when none is given.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
}

// Validate checks the backend name and that seed usernames are unique.
func (c *Config) Validate() error {
	if !util.Contains([]string{BackendMemory, BackendSQL}, c.Backend) {
		return fmt.Errorf("credentials.backend must be %q or %q, got %q", BackendMemory, BackendSQL, c.Backend)
	}
	names := make([]string, len(c.Users))
	for i, u := range c.Users {
		names[i] = u.Username
	}
	if len(util.Unique(names)) != len(names) {
		return fmt.Errorf("credentials.users contains a repeated username")
	}
	return nil
}
