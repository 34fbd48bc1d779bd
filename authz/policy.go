package authz

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kbukum/tokengate/validation"
)

// AnyMethod matches every HTTP method.
const AnyMethod = "*"

// Rule binds a method and path pattern to an access requirement.
//
// Pattern is an exact path, or a prefix ending in "/*" that matches the
// prefix itself and everything below it. A Public rule skips authentication;
// otherwise Roles is handed to Authorize.
type Rule struct {
	Method  string   `mapstructure:"method"`
	Pattern string   `mapstructure:"pattern"`
	Roles   []string `mapstructure:"roles"`
	Public  bool     `mapstructure:"public"`
}

func (r Rule) matches(method, path string) bool {
	if r.Method != AnyMethod && !strings.EqualFold(r.Method, method) {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// Validate checks the rule shape.
func (r Rule) Validate() error {
	v := validation.New().
		Required("pattern", r.Pattern).
		Custom(strings.HasPrefix(r.Pattern, "/"), "pattern", "must start with '/'").
		Custom(!strings.Contains(strings.TrimSuffix(r.Pattern, "/*"), "*"), "pattern", "'*' is only allowed as a trailing '/*'").
		Custom(!(r.Public && len(r.Roles) > 0), "roles", "must be empty on a public rule")
	if r.Method != AnyMethod {
		v.OneOf("method", strings.ToUpper(r.Method), []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		})
	}
	for i, role := range r.Roles {
		if role != "*" && !strings.HasSuffix(role, ".*") {
			v.RoleNames(fmt.Sprintf("roles[%d]", i), []string{role})
		}
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Policy is an ordered rule table; the first matching rule wins.
type Policy struct {
	rules []Rule
}

// NewPolicy creates a Policy evaluated in the given order.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: append([]Rule(nil), rules...)}
}

// Validate checks every rule.
func (p *Policy) Validate() error {
	for i, r := range p.rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %d (%s %s): %w", i, r.Method, r.Pattern, err)
		}
	}
	return nil
}

// Match returns the first rule matching method and path. When none matches,
// it returns an authenticated rule with no role requirement and false.
func (p *Policy) Match(method, path string) (Rule, bool) {
	for _, r := range p.rules {
		if r.matches(method, path) {
			return r, true
		}
	}
	return Rule{Method: AnyMethod, Pattern: path}, false
}

// Rules returns a copy of the rule table.
func (p *Policy) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}
