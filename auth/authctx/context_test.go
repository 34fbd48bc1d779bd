package authctx

import (
	"context"
	"testing"

	"github.com/kbukum/tokengate/auth/token"
)

func TestClaimsRoundTrip(t *testing.T) {
	if _, ok := Claims(context.Background()); ok {
		t.Fatal("empty context must not carry claims")
	}
	if Username(context.Background()) != "" {
		t.Fatal("expected empty username")
	}

	c := &token.Claims{Roles: []string{"USER"}}
	c.Subject = "user1"
	ctx := WithClaims(context.Background(), c)

	got, ok := Claims(ctx)
	if !ok || got != c {
		t.Fatalf("Claims = %v, %v", got, ok)
	}
	if Username(ctx) != "user1" {
		t.Errorf("Username = %q", Username(ctx))
	}
}

func TestNilClaims(t *testing.T) {
	ctx := WithClaims(context.Background(), nil)
	if _, ok := Claims(ctx); ok {
		t.Error("nil claims must report not found")
	}
}
