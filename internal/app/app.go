// Package app wires tokengate together: credential store, token keyring,
// revocation list, sign-in service and the HTTP server.
package app

import (
	"context"
	"fmt"

	"github.com/kbukum/tokengate/auth/password"
	"github.com/kbukum/tokengate/auth/revocation"
	"github.com/kbukum/tokengate/auth/token"
	"github.com/kbukum/tokengate/bootstrap"
	"github.com/kbukum/tokengate/component"
	"github.com/kbukum/tokengate/credential"
	"github.com/kbukum/tokengate/database"
	"github.com/kbukum/tokengate/internal/api"
	"github.com/kbukum/tokengate/logger"
	"github.com/kbukum/tokengate/observability"
	"github.com/kbukum/tokengate/redis"
	"github.com/kbukum/tokengate/server"
	"github.com/kbukum/tokengate/server/middleware"
	"github.com/kbukum/tokengate/signin"
)

// App is the bootstrap application type for tokengate.
type App = bootstrap.App[*Config]

// Service exposes the wired pieces. Fields are set once the app has
// started its infrastructure and run its configure step.
type Service struct {
	Server      *server.Server
	SignIn      *signin.Service
	Keyring     *token.Keyring
	Store       credential.Store
	Hasher      password.Hasher
	Revocations revocation.Store
}

// RotateSigningKey makes the key described by cfg the signing key when it
// differs from the active one. The previous key is retired and keeps
// verifying within the keyring's retired limit, which is fixed at startup.
func (s *Service) RotateSigningKey(cfg token.Config) (bool, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return false, err
	}
	k, err := token.KeyFromConfig(cfg.KeyConfig)
	if err != nil {
		return false, err
	}
	if k.ID == s.Keyring.Active().ID {
		return false, nil
	}
	if err := s.Keyring.Rotate(k); err != nil {
		return false, err
	}
	return true, nil
}

// New builds the application. The signing key is loaded here so a missing
// or weak key fails before anything starts.
func New(cfg *Config, opts ...bootstrap.Option) (*App, *Service, error) {
	a, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}

	keyring, err := token.KeyringFromConfig(cfg.Auth.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("signing key: %w", err)
	}
	hasher, err := password.NewHasher(cfg.Auth.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("password hasher: %w", err)
	}

	svc := &Service{Keyring: keyring, Hasher: hasher}
	w := &wiring{cfg: cfg, svc: svc, log: a.Logger}

	if err := a.RegisterComponent(&telemetry{
		cfg: cfg.Observability,
		res: observability.Resource{Name: cfg.Name, Version: cfg.Version, Environment: cfg.Environment},
	}); err != nil {
		return nil, nil, err
	}
	if cfg.usesDatabase() {
		w.db = database.NewComponent(cfg.Database, a.Logger).WithAutoMigrate(credential.Models()...)
		if err := a.RegisterComponent(w.db); err != nil {
			return nil, nil, err
		}
	}
	if cfg.usesRedis() {
		w.redis, err = redis.NewComponent(cfg.Redis, a.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		if err := a.RegisterComponent(w.redis); err != nil {
			return nil, nil, err
		}
	}

	a.OnConfigure(w.configure)
	a.OnStop(w.stop)
	return a, svc, nil
}

// wiring builds the services once infrastructure is up.
type wiring struct {
	cfg   *Config
	svc   *Service
	log   *logger.Logger
	db    *database.Component
	redis *redis.Component

	cancel context.CancelFunc
}

func (w *wiring) configure(ctx context.Context, a *App) error {
	bg, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	store, err := credentialStore(w.db)
	if err != nil {
		return err
	}
	w.svc.Store = store

	created, err := credential.Provision(ctx, store, w.svc.Hasher, w.cfg.Credentials.Users, w.log)
	if err != nil {
		return fmt.Errorf("provision users: %w", err)
	}
	if created > 0 {
		w.log.Info("Users provisioned", map[string]interface{}{"created": created})
	}

	w.svc.Revocations = w.revocationStore(bg)

	metrics, err := observability.NewAuthMetrics(observability.Meter(ServiceName))
	if err != nil {
		return err
	}
	issuer := token.NewIssuer(w.svc.Keyring, w.cfg.Auth.Token)
	validator := token.NewValidator(w.svc.Keyring, w.cfg.Auth.Token)

	w.svc.SignIn, err = signin.NewService(store, w.svc.Hasher, issuer,
		signin.WithRevocation(w.svc.Revocations),
		signin.WithMetrics(metrics),
		signin.WithLogger(w.log),
	)
	if err != nil {
		return err
	}

	srv := server.New(w.cfg.Server, w.log)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(w.cfg.Name, a.Components.HealthAll, func() []component.Description {
		return append(a.Components.Describe(), component.Description{
			Name: "Auth", Type: "auth", Details: w.cfg.Auth.Describe(),
		})
	})
	api.Register(srv.GinEngine(), api.NewHandler(w.svc.SignIn, w.svc.Keyring, w.log), w.cfg.API, api.Deps{
		Authenticator: middleware.NewAuthenticator(validator, w.svc.Revocations, metrics, w.log),
		Metrics:       metrics,
		Context:       bg,
	})
	w.svc.Server = srv

	// Routes are complete; the server starts after everything it serves.
	if err := a.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}
	return a.Components.StartAll(ctx)
}

func credentialStore(db *database.Component) (credential.Store, error) {
	if db == nil {
		return credential.NewMemoryStore()
	}
	return credential.NewSQLStore(db.DB()), nil
}

func (w *wiring) revocationStore(ctx context.Context) revocation.Store {
	switch w.cfg.Auth.Revocation.Backend {
	case revocation.BackendRedis:
		store := revocation.NewRedisStore(w.redis.Client(), w.cfg.Auth.Revocation.KeyPrefix, nil)
		return revocation.NewGuarded(store, w.cfg.Auth.Revocation.Breaker, w.log)
	case revocation.BackendNone:
		return revocation.Nop{}
	default:
		mem := revocation.NewMemoryStore(nil)
		go mem.RunSweeper(ctx, w.cfg.Auth.Revocation.SweepInterval)
		return mem
	}
}

func (w *wiring) stop(context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}
	return nil
}
