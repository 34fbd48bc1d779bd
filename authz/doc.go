// Package authz decides whether validated claims may reach a route.
//
// Authorize is the whole decision: no claims means Unauthenticated, an empty
// requirement admits any authenticated caller, otherwise at least one of
// the caller's roles must match one of the required role patterns. Policy
// maps method and path to the roles a route requires.
//
//	policy := authz.NewPolicy(
//	    authz.Rule{Method: "GET", Pattern: "/hello", Public: true},
//	    authz.Rule{Method: "GET", Pattern: "/admin", Roles: []string{"ADMIN"}},
//	)
//	rule, _ := policy.Match("GET", "/admin")
//	d := authz.Authorize(claims, rule.Roles)
//
// The package is free of I/O and safe for concurrent use.
package authz
