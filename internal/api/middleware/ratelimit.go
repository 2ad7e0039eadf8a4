package middleware

import (
	"encoding/json"
	"net/http"
)

// Limiter is satisfied by ratelimiter.ProbeLimiter.
type Limiter interface {
	Allow() bool
}

// RateLimit answers 429 once the limiter's bucket is empty.
func RateLimit(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
