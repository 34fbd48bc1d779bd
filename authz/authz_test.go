package authz

import (
	"testing"

	"github.com/kbukum/tokengate/auth/token"
)

func claims(roles ...string) *token.Claims {
	c := &token.Claims{Roles: roles}
	c.Subject = "someone"
	return c
}

func TestAuthorize_Table(t *testing.T) {
	tests := []struct {
		name     string
		claims   *token.Claims
		required []string
		want     Decision
	}{
		{"nil claims", nil, []string{"USER"}, Decision{false, Unauthenticated}},
		{"nil claims no requirement", nil, nil, Decision{false, Unauthenticated}},
		{"no requirement", claims(), nil, Decision{true, Granted}},
		{"admin route denies user", claims("USER"), []string{"ADMIN"}, Decision{false, InsufficientRole}},
		{"admin route permits admin+user", claims("ADMIN", "USER"), []string{"ADMIN"}, Decision{true, Granted}},
		{"any of required", claims("USER"), []string{"ADMIN", "USER"}, Decision{true, Granted}},
		{"case sensitive", claims("admin"), []string{"ADMIN"}, Decision{false, InsufficientRole}},
		{"no roles", claims(), []string{"USER"}, Decision{false, InsufficientRole}},
		{"star needs a role", claims(), []string{"*"}, Decision{false, InsufficientRole}},
		{"star", claims("USER"), []string{"*"}, Decision{true, Granted}},
		{"prefix pattern", claims("ops.read"), []string{"ops.*"}, Decision{true, Granted}},
		{"ROLE_ prefix is a different role", claims("ROLE_ADMIN"), []string{"ADMIN"}, Decision{false, InsufficientRole}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Authorize(tc.claims, tc.required); got != tc.want {
				t.Errorf("Authorize = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestAuthorize_DoesNotMutate(t *testing.T) {
	c := claims("USER")
	required := []string{"ADMIN"}
	Authorize(c, required)
	if c.Roles[0] != "USER" || required[0] != "ADMIN" {
		t.Error("Authorize must not modify its inputs")
	}
}

func TestMatchRole(t *testing.T) {
	tests := []struct {
		pattern, role string
		want          bool
	}{
		{"ADMIN", "ADMIN", true},
		{"ADMIN", "ADMINS", false},
		{"*", "anything", true},
		{"*", "", false},
		{"ops.*", "ops.read", true},
		{"ops.*", "ops.db.read", true},
		{"ops.*", "ops", false},
		{"ops.*", "opsx.read", false},
		{".*", ".x", false},
	}
	for _, tc := range tests {
		if got := MatchRole(tc.pattern, tc.role); got != tc.want {
			t.Errorf("MatchRole(%q, %q) = %v, want %v", tc.pattern, tc.role, got, tc.want)
		}
	}
}

func TestReason_String(t *testing.T) {
	for r, want := range map[Reason]string{
		Granted:          "granted",
		Unauthenticated:  "unauthenticated",
		InsufficientRole: "insufficient_role",
		Reason(99):       "unknown",
	} {
		if r.String() != want {
			t.Errorf("%d.String() = %q, want %q", r, r.String(), want)
		}
	}
}

func TestPolicy_Match(t *testing.T) {
	p := NewPolicy(
		Rule{Method: "GET", Pattern: "/hello", Public: true},
		Rule{Method: "GET", Pattern: "/admin", Roles: []string{"ADMIN"}},
		Rule{Method: "*", Pattern: "/ops/*", Roles: []string{"ops.*"}},
		Rule{Method: "GET", Pattern: "/ops/status", Public: true},
	)
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		method, path string
		matched      bool
		pattern      string
	}{
		{"GET", "/hello", true, "/hello"},
		{"get", "/hello", true, "/hello"},
		{"POST", "/hello", false, "/hello"},
		{"GET", "/admin", true, "/admin"},
		{"GET", "/admin/x", false, "/admin/x"},
		{"DELETE", "/ops", true, "/ops/*"},
		{"GET", "/ops/status", true, "/ops/*"},
		{"GET", "/opsx", false, "/opsx"},
	}
	for _, tc := range tests {
		rule, ok := p.Match(tc.method, tc.path)
		if ok != tc.matched || rule.Pattern != tc.pattern {
			t.Errorf("Match(%s %s) = %q,%v want %q,%v", tc.method, tc.path, rule.Pattern, ok, tc.pattern, tc.matched)
		}
	}

	rule, _ := p.Match("GET", "/unknown")
	if rule.Public || len(rule.Roles) != 0 {
		t.Errorf("unmatched routes must require authentication with no role, got %+v", rule)
	}
}

func TestRule_Validate(t *testing.T) {
	bad := []Rule{
		{Method: "GET", Pattern: ""},
		{Method: "GET", Pattern: "admin"},
		{Method: "GET", Pattern: "/a*b"},
		{Method: "FETCH", Pattern: "/x"},
		{Method: "GET", Pattern: "/x", Public: true, Roles: []string{"USER"}},
		{Method: "GET", Pattern: "/x", Roles: []string{"not a role"}},
	}
	for _, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("expected %+v to be invalid", r)
		}
	}

	good := Rule{Method: "*", Pattern: "/api/*", Roles: []string{"USER", "ops.*", "*"}}
	if err := good.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPolicy_RulesIsCopy(t *testing.T) {
	p := NewPolicy(Rule{Method: "GET", Pattern: "/a"})
	rules := p.Rules()
	rules[0].Pattern = "/b"
	if _, ok := p.Match("GET", "/a"); !ok {
		t.Error("Rules must return a copy")
	}
}
