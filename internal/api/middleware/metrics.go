package middleware

import (
	"net/http"
	"sync/atomic"
)

// CountRequests returns middleware that increments requests for every call
// and errors for every response with a 4xx or 5xx status. The counters are
// owned by the caller so the metrics endpoint can read them.
func CountRequests(requests, errors *atomic.Int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			if rw.status >= 400 {
				errors.Add(1)
			}
		})
	}
}
