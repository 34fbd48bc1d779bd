package authz

import "strings"

// MatchRole checks a required role pattern against a granted role:
//
//   - "*"       matches any role
//   - "ops.*"   matches "ops.read", "ops.write" and nested "ops.db.read"
//   - "ADMIN"   matches only "ADMIN"
//
// Comparison is case-sensitive. Granted roles never contain "*", so the
// wildcard only widens what a route accepts.
func MatchRole(pattern, role string) bool {
	if role == "" {
		return false
	}
	if pattern == "*" || pattern == role {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, ".*"); ok && prefix != "" {
		return strings.HasPrefix(role, prefix+".")
	}
	return false
}

// MatchAny returns true if any of the patterns match role.
func MatchAny(patterns []string, role string) bool {
	for _, p := range patterns {
		if MatchRole(p, role) {
			return true
		}
	}
	return false
}
