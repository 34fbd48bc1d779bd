package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/tokengate/logger"
	"github.com/kbukum/tokengate/resilience"
)

// Guarded wraps a remote Store with a circuit breaker. While the breaker is
// open every call fails at once with an error wrapping
// resilience.ErrCircuitOpen, which callers treat like any other store
// failure.
type Guarded struct {
	next    Store
	breaker *resilience.Breaker
}

// NewGuarded wraps next. State changes are logged as warnings.
func NewGuarded(next Store, cfg BreakerConfig, log *logger.Logger) *Guarded {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("revocation")
	return &Guarded{
		next: next,
		breaker: resilience.NewBreaker(resilience.BreakerConfig{
			Name:        "revocation-store",
			MaxFailures: cfg.MaxFailures,
			Cooldown:    cfg.Cooldown,
			Now:         cfg.now,
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warn("Circuit breaker state changed", map[string]interface{}{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
			},
		}),
	}
}

func (g *Guarded) Revoke(ctx context.Context, jti string, until time.Time) error {
	err := g.breaker.Execute(func() error {
		return g.next.Revoke(ctx, jti, until)
	}, callerError)
	return wrapOpen(err)
}

func (g *Guarded) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := g.breaker.Execute(func() error {
		var err error
		revoked, err = g.next.IsRevoked(ctx, jti)
		return err
	}, callerError)
	return revoked, wrapOpen(err)
}

// State reports the breaker state.
func (g *Guarded) State() resilience.State {
	return g.breaker.State()
}

func callerError(err error) bool {
	return errors.Is(err, ErrEmptyID) || errors.Is(err, context.Canceled)
}

func wrapOpen(err error) error {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("revocation store unavailable: %w", err)
	}
	return err
}
