package credential

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyExists is returned by Create for a taken username.
	ErrAlreadyExists = errors.New("credential: principal already exists")
	// ErrNotFound is returned by UpdateRoles and Delete for an unknown username.
	ErrNotFound = errors.New("credential: principal not found")
	// ErrInvalidPrincipal is returned for an empty username or hash.
	ErrInvalidPrincipal = errors.New("credential: invalid principal")
)

// Store is the read path used by sign-in plus the create path used by
// provisioning.
type Store interface {
	// Lookup finds a principal by exact username. An unknown username is
	// (Principal{}, false, nil); err is reserved for storage failures.
	Lookup(ctx context.Context, username string) (Principal, bool, error)

	// Create inserts a new principal.
	Create(ctx context.Context, p Principal) error
}

// Manager adds administrative operations to Store.
type Manager interface {
	Store

	UpdateRoles(ctx context.Context, username string, roles []string) error
	Delete(ctx context.Context, username string) error
}
