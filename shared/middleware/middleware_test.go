package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	var called bool
	h := SecurityHeaders(true)(okHandler(&called))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.True(t, called)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Equal(t, APIContentSecurityPolicy, rr.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))

	rr = httptest.NewRecorder()
	SecurityHeadersWithCSP(false, "")(okHandler(&called)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, rr.Header().Get("Content-Security-Policy"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := chimw.RequestID(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("{}"))
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/users?email=jane@x.com", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, `"path":"/api/users"`)
	assert.Contains(t, out, `"request_id"`)
	assert.NotContains(t, out, "jane@x.com")
}
