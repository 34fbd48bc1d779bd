package observability

import (
	"context"
	"errors"

	"github.com/kbukum/tokengate/logger"
)

// ShutdownFunc flushes and stops installed providers.
type ShutdownFunc func(ctx context.Context) error

// Setup installs tracer and meter providers per cfg.
func Setup(ctx context.Context, cfg Config, res Resource) (ShutdownFunc, error) {
	if !cfg.Enabled() {
		logger.Debug("Telemetry export disabled", nil)
		return func(context.Context) error { return nil }, nil
	}

	tp, err := InitTracer(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
