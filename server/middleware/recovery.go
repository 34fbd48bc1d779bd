package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/kbukum/tokengate/errors"
	"github.com/kbukum/tokengate/logger"
)

// Recovery turns a panic into a 500 response and logs the stack.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.WithContext(r.Context()).Error("Panic recovered", map[string]interface{}{
						logger.FieldError: fmt.Sprintf("%v", rec),
						"stack":           string(debug.Stack()),
						"path":            r.URL.Path,
						"method":          r.Method,
					})
					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(apperrors.Internal(nil).ToResponse())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
