package token

import (
	"encoding/base64"
	"encoding/json"
	"slices"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var allowedMethods = []string{
	string(HS256), string(HS384), string(HS512),
	string(RS256), string(RS384), string(RS512),
	string(ES256), string(ES384), string(ES512),
}

// Validator checks tokens against the keyring. It holds no per-request state.
type Validator struct {
	keyring  *Keyring
	skew     time.Duration
	issuer   string
	audience []string
	now      func() time.Time
	parser   *gojwt.Parser
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithValidatorClock sets the time source.
func WithValidatorClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) { v.now = now }
}

// NewValidator creates a Validator. cfg must already have defaults applied.
func NewValidator(keyring *Keyring, cfg Config, opts ...ValidatorOption) *Validator {
	v := &Validator{
		keyring:  keyring,
		skew:     cfg.ClockSkew,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
		// Time-based claims are checked here, in a fixed order, not by the parser.
		parser: gojwt.NewParser(
			gojwt.WithValidMethods(allowedMethods),
			gojwt.WithStrictDecoding(),
			gojwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks raw and returns its claims. Failures are *Error values,
// classified in this order: Malformed, Expired, BadSignature, NotYetValid.
// An expired token is reported as Expired whatever its signature.
func (v *Validator) Validate(raw string) (*Claims, error) {
	claims, err := decodeUnverified(raw)
	if err != nil {
		return nil, err
	}

	now := v.now()
	if !now.Before(claims.ExpiresAt.Time) {
		return nil, newError(KindExpired, "expired at %s", claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	}

	verified := &Claims{}
	if _, err := v.parser.ParseWithClaims(raw, verified, v.keyFunc); err != nil {
		return nil, &Error{Kind: KindBadSignature, Err: err}
	}

	horizon := now.Add(v.skew)
	if verified.IssuedAt.Time.After(horizon) {
		return nil, newError(KindNotYetValid, "issued in the future")
	}
	if verified.NotBefore != nil && verified.NotBefore.Time.After(horizon) {
		return nil, newError(KindNotYetValid, "not valid before %s", verified.NotBefore.Time.UTC().Format(time.RFC3339))
	}

	if v.issuer != "" && verified.Issuer != v.issuer {
		return nil, newError(KindBadSignature, "issuer mismatch")
	}
	if len(v.audience) > 0 && !audienceMatches(verified.Audience, v.audience) {
		return nil, newError(KindBadSignature, "audience mismatch")
	}
	return verified, nil
}

func (v *Validator) keyFunc(t *gojwt.Token) (interface{}, error) {
	var key *Key
	if kid, ok := t.Header["kid"].(string); ok {
		k, found := v.keyring.Lookup(kid)
		if !found {
			return nil, newError(KindBadSignature, "unknown key id %q", kid)
		}
		key = k
	} else {
		key = v.keyring.Active()
	}
	if t.Method.Alg() != string(key.Method) {
		return nil, newError(KindBadSignature, "algorithm %s does not match key %s", t.Method.Alg(), key.ID)
	}
	return key.verify, nil
}

// decodeUnverified checks the compact structure and decodes header and
// payload without trusting them.
func decodeUnverified(raw string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, newError(KindMalformed, "expected 3 segments, got %d", len(parts))
	}
	for i, p := range parts {
		if p == "" {
			return nil, newError(KindMalformed, "segment %d is empty", i)
		}
	}

	headerJSON, err := base64.RawURLEncoding.Strict().DecodeString(parts[0])
	if err != nil {
		return nil, newError(KindMalformed, "header encoding: %v", err)
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil || header.Alg == "" {
		return nil, newError(KindMalformed, "header is not a JWS header")
	}

	payload, err := base64.RawURLEncoding.Strict().DecodeString(parts[1])
	if err != nil {
		return nil, newError(KindMalformed, "payload encoding: %v", err)
	}
	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, newError(KindMalformed, "payload is not a claims object: %v", err)
	}
	if claims.Subject == "" || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, newError(KindMalformed, "missing sub, exp or iat")
	}
	return claims, nil
}

func audienceMatches(got gojwt.ClaimStrings, want []string) bool {
	for _, a := range want {
		if slices.Contains(got, a) {
			return true
		}
	}
	return false
}
