package auth

import (
	"strings"
	"testing"

	"github.com/kbukum/tokengate/auth/token"
	"github.com/kbukum/tokengate/credential"
)

func TestConfig_MissingKeyIsFatal(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected an error without a signing key")
	}
	if !strings.HasPrefix(err.Error(), "auth.token:") {
		t.Errorf("error should name the token section, got %q", err)
	}
}

func TestConfig_DefaultsAndDescribe(t *testing.T) {
	cfg := Config{}
	cfg.Token.Secret = strings.Repeat("k", token.MinSecretLength)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	got := cfg.Describe()
	for _, want := range []string{"token(HS256)", "ttl=15m0s", "password=bcrypt", "revocation=memory"} {
		if !strings.Contains(got, want) {
			t.Errorf("Describe() = %q, missing %q", got, want)
		}
	}
}

func TestFuncAdapters(t *testing.T) {
	want := &token.Claims{Roles: []string{"USER"}}
	v := TokenValidatorFunc(func(string) (*token.Claims, error) { return want, nil })
	if got, _ := v.Validate("x"); got != want {
		t.Error("TokenValidatorFunc did not pass through")
	}

	i := TokenIssuerFunc(func(p credential.Principal) (*token.Token, error) {
		return &token.Token{Value: p.Username}, nil
	})
	if tok, _ := i.Issue(credential.Principal{Username: "u"}); tok.Value != "u" {
		t.Error("TokenIssuerFunc did not pass through")
	}
}
