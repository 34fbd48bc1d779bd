package token

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the registered JWT claims plus the ordered
// role list granted at issuance.
type Claims struct {
	Roles []string `json:"roles"`
	gojwt.RegisteredClaims
}

// Username returns the subject.
func (c *Claims) Username() string {
	return c.Subject
}

// IssuedAtTime returns iat, or the zero time when absent.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns exp, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Token is an issued token together with the claims it carries.
type Token struct {
	Value  string
	Claims *Claims
}

func (t *Token) Subject() string      { return t.Claims.Subject }
func (t *Token) Roles() []string      { return t.Claims.Roles }
func (t *Token) IssuedAt() time.Time  { return t.Claims.IssuedAtTime() }
func (t *Token) ExpiresAt() time.Time { return t.Claims.ExpiresAtTime() }
func (t *Token) String() string       { return t.Value }
