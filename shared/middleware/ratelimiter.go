package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/Serubin/AJD-Site/shared/api"
	"github.com/Serubin/AJD-Site/shared/errors"
	"github.com/Serubin/AJD-Site/shared/logger"
	"github.com/Serubin/AJD-Site/shared/middleware/ratelimiter"
	"github.com/Serubin/AJD-Site/shared/phone"
	"github.com/Serubin/AJD-Site/shared/utils"
)

// RateLimit rejects requests whose identity has run out of tokens.
func RateLimit(rl *ratelimiter.KeyedLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Warn("rate limit exceeded", "path", r.URL.Path)
				utils.WriteJSON(w, http.StatusTooManyRequests, api.ErrorResponse{Error: "Too many requests, try again later"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GlobalRateLimit(rl *ratelimiter.KeyedLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetIP extracts the client IP from RemoteAddr. When the server sits behind a
// trusted proxy, chi's RealIP middleware has already rewritten RemoteAddr.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}

// GetContactFromBody keys a request by the email or phone it carries, so one
// address cannot be flooded with update links from many IPs. The body is
// restored for the handler.
func GetContactFromBody(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		return "", errors.BadRequest("Invalid request body")
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	var data struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", errors.BadRequest("Invalid JSON body")
	}

	if email := strings.ToLower(strings.TrimSpace(data.Email)); email != "" {
		return "email:" + email, nil
	}
	if digits := phone.Digits(data.Phone); digits != "" {
		return "phone:" + digits, nil
	}
	return "", errors.Validation(map[string]string{"email": "Email or phone is required"})
}
