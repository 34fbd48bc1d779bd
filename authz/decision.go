package authz

import "github.com/kbukum/tokengate/auth/token"

// Reason explains a Decision.
type Reason int

const (
	Granted Reason = iota
	Unauthenticated
	InsufficientRole
)

func (r Reason) String() string {
	switch r {
	case Granted:
		return "granted"
	case Unauthenticated:
		return "unauthenticated"
	case InsufficientRole:
		return "insufficient_role"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision        { return Decision{Allowed: true, Reason: Granted} }
func deny(r Reason) Decision { return Decision{Reason: r} }

// Authorize admits claims holding at least one role that matches a required
// pattern. Nil claims are Unauthenticated; an empty requirement admits any
// authenticated caller.
func Authorize(claims *token.Claims, required []string) Decision {
	if claims == nil {
		return deny(Unauthenticated)
	}
	if len(required) == 0 {
		return allow()
	}
	for _, role := range claims.Roles {
		if MatchAny(required, role) {
			return allow()
		}
	}
	return deny(InsufficientRole)
}
