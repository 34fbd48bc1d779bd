package credential

import (
	"fmt"
	"slices"

	"github.com/kbukum/tokengate/util"
	"github.com/kbukum/tokengate/validation"
)

// MaxUsernameLength bounds usernames accepted by every store.
const MaxUsernameLength = 255

// Principal is a user known to the store.
type Principal struct {
	Username     string
	PasswordHash string
	Roles        []string
	Enabled      bool
}

// HasRole reports whether role is one of the principal's roles.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// Clone returns a copy that shares no slices with p.
func (p Principal) Clone() Principal {
	c := p
	if p.Roles != nil {
		c.Roles = slices.Clone(p.Roles)
	}
	return c
}

// Validate checks the fields every store requires.
func (p Principal) Validate() error {
	appErr := validation.New().
		Required("username", p.Username).
		MaxLength("username", p.Username, MaxUsernameLength).
		Required("password_hash", p.PasswordHash).
		RoleNames("roles", p.Roles).
		Custom(len(util.Unique(p.Roles)) == len(p.Roles), "roles", "must not repeat a role").
		Validate()
	if appErr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPrincipal, appErr)
	}
	return nil
}
