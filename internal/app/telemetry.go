package app

import (
	"context"
	"fmt"

	"github.com/kbukum/tokengate/component"
	"github.com/kbukum/tokengate/observability"
)

// telemetry installs the OpenTelemetry providers as a component so they
// start first and flush last.
type telemetry struct {
	cfg      observability.Config
	res      observability.Resource
	shutdown observability.ShutdownFunc
}

var (
	_ component.Component   = (*telemetry)(nil)
	_ component.Describable = (*telemetry)(nil)
)

func (t *telemetry) Name() string { return "telemetry" }

func (t *telemetry) Start(ctx context.Context) error {
	shutdown, err := observability.Setup(ctx, t.cfg, t.res)
	if err != nil {
		return fmt.Errorf("telemetry start: %w", err)
	}
	t.shutdown = shutdown
	return nil
}

func (t *telemetry) Stop(ctx context.Context) error {
	if t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}

func (t *telemetry) Health(context.Context) component.Health {
	return component.Health{Name: t.Name(), Status: component.StatusHealthy}
}

func (t *telemetry) Describe() component.Description {
	details := "export=off"
	if t.cfg.Enabled() {
		details = fmt.Sprintf("otlp=%s sample_rate=%.2f", t.cfg.Endpoint, t.cfg.SampleRate)
	}
	return component.Description{Name: "Telemetry", Type: "observability", Details: details}
}
