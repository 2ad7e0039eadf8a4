package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

// AllowedHosts rejects requests whose Host header matches none of the
// patterns with 400. A pattern is "*" (any host), ".example.com" or
// "*.example.com" (the domain and every subdomain), or an exact host.
// Matching ignores case and the port.
func AllowedHosts(patterns []string) func(http.Handler) http.Handler {
	normalized := make([]string, 0, len(patterns))
	for _, p := range patterns {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(p)))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HostAllowed(r.Host, normalized) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid host header"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HostAllowed reports whether host matches one of the lower-cased patterns.
func HostAllowed(host string, patterns []string) bool {
	host = strings.ToLower(stripPort(host))
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return false
	}

	for _, p := range patterns {
		switch {
		case p == "*":
			return true
		case strings.HasPrefix(p, "*."):
			if matchesDomain(host, p[2:]) {
				return true
			}
		case strings.HasPrefix(p, "."):
			if matchesDomain(host, p[1:]) {
				return true
			}
		case host == p:
			return true
		}
	}
	return false
}

func matchesDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func stripPort(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return strings.Trim(h, "[]")
	}
	return strings.Trim(hostport, "[]")
}
