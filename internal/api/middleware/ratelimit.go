package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// ipLimiters hands out one token bucket per client IP. The map is reset
// wholesale once it grows past maxTrackedIPs rather than aging entries
// individually; a reset only refills buckets, it never blocks anyone.
type ipLimiters struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

const maxTrackedIPs = 10000

func newIPLimiters(rps float64, burst int) *ipLimiters {
	return &ipLimiters{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buckets) > maxTrackedIPs {
		l.buckets = make(map[string]*rate.Limiter)
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[ip] = b
	}
	return b.Allow()
}

// RateLimit returns middleware enforcing a per-IP request rate. The client IP
// comes from X-Real-IP when the RealIP middleware has set it, falling back to
// the connection's remote address.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiters := newIPLimiters(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.Header.Get("X-Real-IP")
			if ip == "" {
				ip = r.RemoteAddr
			}

			if !limiters.allow(ip) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
