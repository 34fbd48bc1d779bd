// Package revocation records signed-out token ids until the tokens would
// have expired on their own. The token validator never consults it; the
// HTTP authenticator checks it after a token validates.
package revocation

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyID is returned by Revoke for a token without a jti.
var ErrEmptyID = errors.New("revocation: empty token id")

// Store is a revocation list keyed by token id (jti).
type Store interface {
	// Revoke marks jti revoked until the given instant. Revoking an id whose
	// until is already past is a no-op.
	Revoke(ctx context.Context, jti string, until time.Time) error

	// IsRevoked reports whether jti is currently revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Nop is a Store that never revokes anything.
type Nop struct{}

func (Nop) Revoke(context.Context, string, time.Time) error { return nil }
func (Nop) IsRevoked(context.Context, string) (bool, error) { return false, nil }
