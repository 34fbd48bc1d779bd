// Package server runs the tokengate HTTP surface: a Gin engine behind an
// h2c handler, wrapped in server-wide middleware, with lifecycle managed as
// a component.
//
// # Middleware
//
// Server-wide (server/middleware, wraps every request):
//
//   - Recovery: panic to 500 with a logged stack
//   - RequestID: X-Request-Id propagation into log context
//   - CORS: origin allow-list and preflight
//   - BodySizeLimit: rejects oversized bodies
//   - RequestLogger: one log line per request
//
// Per route (Gin handlers):
//
//   - Authenticator.Protect: bearer token, revocation and role check
//   - RateLimit: token bucket per client IP or token subject
//   - Metrics: request count and duration by route template
//
// # Endpoints
//
// RegisterDefaultEndpoints adds /health, /alive, /ready and /info.
package server
