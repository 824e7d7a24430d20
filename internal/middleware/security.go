// Package middleware carries the HTTP plumbing shared by the planner and
// backend servers: security headers, per-client rate limiting and request
// tracing.
package middleware

import "net/http"

// SecurityHeaders applies a locked-down header set suitable for a JSON API:
// nothing is ever rendered, so the CSP can deny everything.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
