package auth

import (
	"github.com/kbukum/tokengate/auth/token"
	"github.com/kbukum/tokengate/credential"
)

// TokenValidator validates a compact token and returns its claims. The HTTP
// authenticator depends on this rather than on *token.Validator.
type TokenValidator interface {
	Validate(raw string) (*token.Claims, error)
}

// TokenValidatorFunc adapts an ordinary function to TokenValidator.
type TokenValidatorFunc func(raw string) (*token.Claims, error)

// Validate implements TokenValidator.
func (f TokenValidatorFunc) Validate(raw string) (*token.Claims, error) {
	return f(raw)
}

// TokenIssuer signs a token for an authenticated principal.
type TokenIssuer interface {
	Issue(p credential.Principal) (*token.Token, error)
}

// TokenIssuerFunc adapts an ordinary function to TokenIssuer.
type TokenIssuerFunc func(p credential.Principal) (*token.Token, error)

// Issue implements TokenIssuer.
func (f TokenIssuerFunc) Issue(p credential.Principal) (*token.Token, error) {
	return f(p)
}

var (
	_ TokenValidator = (*token.Validator)(nil)
	_ TokenIssuer    = (*token.Issuer)(nil)
)
