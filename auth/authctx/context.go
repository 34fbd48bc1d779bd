// Package authctx carries validated token claims on a context.Context so
// code below the HTTP layer (loggers, spans, stores) can see who is calling.
// Most route handlers receive claims as an argument instead.
package authctx

import (
	"context"

	"github.com/kbukum/tokengate/auth/token"
)

type contextKey struct{}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// Claims returns the claims stored by WithClaims.
func Claims(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(*token.Claims)
	return c, ok && c != nil
}

// Username returns the subject of the stored claims, or "".
func Username(ctx context.Context) string {
	if c, ok := Claims(ctx); ok {
		return c.Subject
	}
	return ""
}
