package token

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/tokengate/credential"
)

// Issuer signs tokens with the keyring's active key.
type Issuer struct {
	keyring  *Keyring
	ttl      time.Duration
	issuer   string
	audience []string
	now      func() time.Time
	newID    func() string
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithClock sets the time source.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// WithIDGenerator sets the jti generator (default: random UUID).
func WithIDGenerator(gen func() string) IssuerOption {
	return func(i *Issuer) { i.newID = gen }
}

// NewIssuer creates an Issuer. cfg must already have defaults applied.
func NewIssuer(keyring *Keyring, cfg Config, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		keyring:  keyring,
		ttl:      cfg.TTL,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TTL returns the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue builds and signs a token for p. Only the username and roles of p
// enter the token.
func (i *Issuer) Issue(p credential.Principal) (*Token, error) {
	if p.Username == "" {
		return nil, errors.New("token: principal has no username")
	}

	now := i.now()
	claims := &Claims{
		Roles: append([]string{}, p.Roles...),
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   p.Username,
			Audience:  i.audience,
			ExpiresAt: gojwt.NewNumericDate(now.Add(i.ttl)),
			NotBefore: gojwt.NewNumericDate(now),
			IssuedAt:  gojwt.NewNumericDate(now),
			ID:        i.newID(),
		},
	}

	key := i.keyring.Active()
	t := gojwt.NewWithClaims(key.jwtMethod(), claims)
	t.Header["kid"] = key.ID

	signed, err := t.SignedString(key.sign)
	if err != nil {
		return nil, fmt.Errorf("token: sign: %w", err)
	}
	return &Token{Value: signed, Claims: claims}, nil
}
