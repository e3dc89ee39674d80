package middleware

import (
	"net/http"
)

// APIContentSecurityPolicy forbids everything: API responses are JSON and are
// never rendered as documents.
const APIContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders adds the JSON API header set.
func SecurityHeaders(isHTTPS bool) func(http.Handler) http.Handler {
	return SecurityHeadersWithCSP(isHTTPS, APIContentSecurityPolicy)
}

// SecurityHeadersWithCSP adds security headers with custom Content-Security-Policy
// isHTTPS: if true, adds Strict-Transport-Security header
// csp: Content-Security-Policy value (if empty, no CSP header is set)
func SecurityHeadersWithCSP(isHTTPS bool, csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()

			headers.Set("X-Frame-Options", "DENY")
			headers.Set("X-Content-Type-Options", "nosniff")
			headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			// The sign-up form asks for location to suggest a district.
			headers.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(self), payment=()")
			// Responses may carry personal data.
			headers.Set("Cache-Control", "no-store")

			if csp != "" {
				headers.Set("Content-Security-Policy", csp)
			}
			if isHTTPS {
				headers.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
