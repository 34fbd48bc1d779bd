package app

import (
	"context"
	"fmt"

	"github.com/kbukum/tokengate/auth/password"
	"github.com/kbukum/tokengate/bootstrap"
	"github.com/kbukum/tokengate/credential"
	"github.com/kbukum/tokengate/database"
	"github.com/kbukum/tokengate/logger"
)

// userTask runs against the persistent user store.
type userTask func(ctx context.Context, users credential.Manager, log *logger.Logger) error

// runUserTask starts only the database, runs task and shuts down. The
// memory store is gone when the process ends, so the sql backend is required.
func runUserTask(ctx context.Context, name string, cfg *Config, opts []bootstrap.Option, task userTask) error {
	if !cfg.usesDatabase() {
		return fmt.Errorf("%s needs credentials.backend=%s, got %q", name, credential.BackendSQL, cfg.Credentials.Backend)
	}
	a, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return err
	}

	db := database.NewComponent(cfg.Database, a.Logger).WithAutoMigrate(credential.Models()...)
	if err := a.RegisterComponent(db); err != nil {
		return err
	}
	return a.RunTask(ctx, func(ctx context.Context) error {
		return task(ctx, credential.NewSQLStore(db.DB()), a.Logger.WithComponent(name))
	})
}

// Provision creates the configured seed users and exits without serving.
func Provision(ctx context.Context, cfg *Config, opts ...bootstrap.Option) (int, error) {
	hasher, err := password.NewHasher(cfg.Auth.Password)
	if err != nil {
		return 0, fmt.Errorf("password hasher: %w", err)
	}

	var created int
	err = runUserTask(ctx, "provision", cfg, opts, func(ctx context.Context, users credential.Manager, log *logger.Logger) error {
		n, err := credential.Provision(ctx, users, hasher, cfg.Credentials.Users, log)
		created = n
		return err
	})
	return created, err
}

// SetRoles replaces the roles of an existing user. Tokens already issued
// keep the roles they were signed with until they expire.
func SetRoles(ctx context.Context, cfg *Config, username string, roles []string, opts ...bootstrap.Option) error {
	return runUserTask(ctx, "roles", cfg, opts, func(ctx context.Context, users credential.Manager, log *logger.Logger) error {
		if err := users.UpdateRoles(ctx, username, roles); err != nil {
			return fmt.Errorf("user %q: %w", username, err)
		}
		log.Info("Roles updated", map[string]interface{}{logger.FieldUsername: username, "roles": roles})
		return nil
	})
}

// DeleteUser removes a user and its roles.
func DeleteUser(ctx context.Context, cfg *Config, username string, opts ...bootstrap.Option) error {
	return runUserTask(ctx, "delete", cfg, opts, func(ctx context.Context, users credential.Manager, log *logger.Logger) error {
		if err := users.Delete(ctx, username); err != nil {
			return fmt.Errorf("user %q: %w", username, err)
		}
		log.Info("User deleted", map[string]interface{}{logger.FieldUsername: username})
		return nil
	})
}
