package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sparkeditor/spark/pkg/ratelimiter"
)

// Limiter is the part of the rate limiter the middleware needs
type Limiter interface {
	Allow(namespace, client string) bool
	RetryAfter(namespace, client string) time.Duration
}

var _ Limiter = (*ratelimiter.RateLimiter)(nil)

// RateLimitMiddleware rejects requests over the limit of the namespace chosen
// by namespaceFor with 429 and a Retry-After header. Requests for which
// namespaceFor returns "" are not limited. Clients are keyed by remote IP.
func RateLimitMiddleware(limiter Limiter, namespaceFor func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			namespace := namespaceFor(r)
			if namespace == "" {
				next.ServeHTTP(w, r)
				return
			}

			client := clientIP(r)
			if !limiter.Allow(namespace, client) {
				if wait := limiter.RetryAfter(namespace, client); wait > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(wait/time.Second)))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
