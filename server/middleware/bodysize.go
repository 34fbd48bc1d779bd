package middleware

import (
	"net/http"

	"github.com/kbukum/tokengate/util"
)

const defaultMaxBodySize = 1 << 20

// BodySizeLimit restricts request bodies to maxSize (e.g. "64KB", "1MB").
// Requests that declare a larger Content-Length are refused with 413 before
// the handler runs; chunked bodies fail on read.
func BodySizeLimit(maxSize string) Middleware {
	size, err := util.ParseSize(maxSize)
	if err != nil || size <= 0 {
		size = defaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
