package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/tokengate/logger"
)

// RequestLogger logs each request once it completes. Probe endpoints are
// skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbeEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				logger.FieldStatus:   rec.Status(),
				logger.FieldDuration: time.Since(start).String(),
				"bytes":              rec.bytes,
				"client":             clientAddr(r),
			}
			logByStatus(log.WithContext(r.Context()), fields, rec.Status())
		})
	}
}

func isProbeEndpoint(path string) bool {
	switch path {
	case "/health", "/info", "/alive", "/ready":
		return true
	}
	return false
}

func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

// logByStatus logs at a level matching the HTTP status class.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
