package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/tokengate/auth/password"
	"github.com/kbukum/tokengate/logger"
	"github.com/kbukum/tokengate/validation"
)

// Seed is a user declared in configuration. Exactly one of Password
// (plaintext, hashed at startup) or PasswordHash (already hashed) is set.
type Seed struct {
	Username     string   `mapstructure:"username" validate:"required,max=255"`
	Password     string   `mapstructure:"password" validate:"required_without=PasswordHash,excluded_with=PasswordHash"`
	PasswordHash string   `mapstructure:"password_hash"`
	Roles        []string `mapstructure:"roles" validate:"dive,rolename"`
	Disabled     bool     `mapstructure:"disabled"`
}

// Provision creates every seed user that the store does not already hold
// and returns how many were created. Existing users are left untouched.
func Provision(ctx context.Context, store Store, hasher password.Hasher, seeds []Seed, log *logger.Logger) (int, error) {
	log = log.WithComponent("provision")
	created := 0
	for i, seed := range seeds {
		if err := validation.Validate(seed); err != nil {
			return created, fmt.Errorf("users[%d]: %w", i, err)
		}

		if _, ok, err := store.Lookup(ctx, seed.Username); err != nil {
			return created, fmt.Errorf("users[%d]: lookup: %w", i, err)
		} else if ok {
			log.Debug("Seed user already present", map[string]interface{}{logger.FieldUsername: seed.Username})
			continue
		}

		hash, err := seedHash(seed, hasher)
		if err != nil {
			return created, fmt.Errorf("users[%d]: %w", i, err)
		}

		p := Principal{
			Username:     seed.Username,
			PasswordHash: hash,
			Roles:        seed.Roles,
			Enabled:      !seed.Disabled,
		}
		if err := store.Create(ctx, p); err != nil {
			if errors.Is(err, ErrAlreadyExists) {
				continue
			}
			return created, fmt.Errorf("users[%d]: create: %w", i, err)
		}
		created++
		log.Info("Provisioned user", map[string]interface{}{
			logger.FieldUsername: seed.Username,
			"roles":              seed.Roles,
		})
	}
	return created, nil
}

func seedHash(seed Seed, hasher password.Hasher) (string, error) {
	if seed.PasswordHash != "" {
		if password.Identify(seed.PasswordHash) == "" {
			return "", fmt.Errorf("password_hash for %q is not a bcrypt or argon2id hash", seed.Username)
		}
		return seed.PasswordHash, nil
	}
	hash, err := hasher.Hash(seed.Password)
	if err != nil {
		return "", fmt.Errorf("hash password for %q: %w", seed.Username, err)
	}
	return hash, nil
}
