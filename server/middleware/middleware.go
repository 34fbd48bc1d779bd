package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior. Server-wide
// concerns (recovery, request ids, CORS, body limits, access logs) use this
// type and wrap the whole handler; route-level concerns are gin handlers.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost
// (runs first on a request, last on a response).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
