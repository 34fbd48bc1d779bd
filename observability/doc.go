// Package observability wires OpenTelemetry tracing and metrics.
//
// Setup installs OTLP/HTTP trace and metric providers when an endpoint is
// configured and leaves the global no-op providers in place otherwise.
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, observability.Resource{Name: "tokengate"})
//	defer shutdown(ctx)
//
//	m, err := observability.NewAuthMetrics(observability.Meter("tokengate"))
//	m.RecordSignIn(ctx, observability.OutcomeSuccess, time.Since(start))
package observability
