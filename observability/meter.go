package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/tokengate/logger"
)

// Sign-in outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeBadCredentials = "bad_credentials"
	OutcomeError          = "error"
)

// InitMeter installs an OTLP/HTTP meter provider as the global provider.
func InitMeter(ctx context.Context, cfg Config, res Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	r, err := newResource(res)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(r),
	)
	otel.SetMeterProvider(mp)

	logger.Info("Meter initialized", logger.Fields(
		"service", res.Name,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// AuthMetrics holds the instruments recorded by sign-in, token checks and
// the HTTP layer.
type AuthMetrics struct {
	signInTotal     metric.Int64Counter
	signInDuration  metric.Float64Histogram
	validations     metric.Int64Counter
	decisions       metric.Int64Counter
	revocations     metric.Int64Counter
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewAuthMetrics creates metric instruments on the given meter.
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	var (
		m   AuthMetrics
		err error
	)
	if m.signInTotal, err = meter.Int64Counter("signin.attempts",
		metric.WithDescription("Sign-in attempts by outcome")); err != nil {
		return nil, fmt.Errorf("creating signin.attempts counter: %w", err)
	}
	if m.signInDuration, err = meter.Float64Histogram("signin.duration",
		metric.WithDescription("Duration of sign-in attempts"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating signin.duration histogram: %w", err)
	}
	if m.validations, err = meter.Int64Counter("token.validations",
		metric.WithDescription("Bearer token validations by result")); err != nil {
		return nil, fmt.Errorf("creating token.validations counter: %w", err)
	}
	if m.decisions, err = meter.Int64Counter("authz.decisions",
		metric.WithDescription("Authorization decisions by reason")); err != nil {
		return nil, fmt.Errorf("creating authz.decisions counter: %w", err)
	}
	if m.revocations, err = meter.Int64Counter("token.revocations",
		metric.WithDescription("Tokens revoked through sign-out")); err != nil {
		return nil, fmt.Errorf("creating token.revocations counter: %w", err)
	}
	if m.requestTotal, err = meter.Int64Counter("http.requests",
		metric.WithDescription("HTTP requests by route and status")); err != nil {
		return nil, fmt.Errorf("creating http.requests counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("http.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating http.request.duration histogram: %w", err)
	}
	return &m, nil
}

// NewNopAuthMetrics returns instruments backed by the global provider,
// which is a no-op until Setup installs one.
func NewNopAuthMetrics() *AuthMetrics {
	m, err := NewAuthMetrics(Meter(defaultTracerName))
	if err != nil {
		panic(err)
	}
	return m
}

// RecordSignIn records one sign-in attempt.
func (m *AuthMetrics) RecordSignIn(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.signInTotal.Add(ctx, 1, attrs)
	m.signInDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordValidation records a bearer token check; result is "valid" or an error kind.
func (m *AuthMetrics) RecordValidation(ctx context.Context, result string) {
	m.validations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordDecision records an authorization decision.
func (m *AuthMetrics) RecordDecision(ctx context.Context, reason string) {
	m.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordRevocation records a token revoked through sign-out.
func (m *AuthMetrics) RecordRevocation(ctx context.Context) {
	m.revocations.Add(ctx, 1)
}

// RecordRequest records a completed HTTP request.
func (m *AuthMetrics) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}
