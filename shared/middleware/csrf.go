package middleware

import (
	"net/http"

	"github.com/Serubin/AJD-Site/shared/api"
	"github.com/Serubin/AJD-Site/shared/csrf"
	"github.com/Serubin/AJD-Site/shared/logger"
	"github.com/Serubin/AJD-Site/shared/utils"
)

const csrfCookieMaxAge = 365 * 24 * 60 * 60

// CSRFConfig holds CSRF middleware configuration
type CSRFConfig struct {
	SecureCookies bool // Use Secure flag on cookies (requires HTTPS)
}

// IssueCSRFToken makes sure every client holds a csrf_token cookie. The cookie
// is readable by page scripts, which echo it back in the X-CSRF-Token header.
func IssueCSRFToken(config CSRFConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(csrf.CookieName); err != nil || cookie.Value == "" {
				token, err := csrf.GenerateToken()
				if err != nil {
					logger.Log.Error("failed to generate CSRF token", "error", err)
					utils.WriteJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     csrf.CookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false,
					Secure:   config.SecureCookies,
					SameSite: http.SameSiteStrictMode,
					MaxAge:   csrfCookieMaxAge,
				})
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCSRFToken rejects state-changing requests whose header does not match
// the cookie.
func RequireCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		var cookieToken string
		if cookie, err := r.Cookie(csrf.CookieName); err == nil {
			cookieToken = cookie.Value
		}
		if !csrf.ValidateToken(cookieToken, r.Header.Get(csrf.HeaderName)) {
			logger.Log.Warn("CSRF token validation failed", "path", r.URL.Path, "method", r.Method)
			utils.WriteJSON(w, http.StatusForbidden, api.ErrorResponse{Error: "CSRF token invalid"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
