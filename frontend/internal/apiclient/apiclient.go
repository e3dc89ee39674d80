package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/Serubin/AJD-Site/shared/api"
	"github.com/Serubin/AJD-Site/shared/csrf"
)

// APIClient struct handles all communication with the backend API. It keeps
// the backend's cookies, so the CSRF cookie it is handed on the first
// response is echoed in the header of every later mutating request.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a new client for interacting with the backend.
func New(baseURL string) *APIClient {
	jar, _ := cookiejar.New(nil) // only fails for a non-nil Options with a broken PublicSuffixList
	return &APIClient{
		BaseURL:    baseURL,
		HttpClient: &http.Client{Jar: jar},
	}
}

// Error is a non-2xx answer from the backend.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %d", e.StatusCode)
}

// StatusCode returns the HTTP status of an *Error, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// do is the single, unified helper for making API requests. body and out may
// be nil.
func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if method != http.MethodGet && method != http.MethodHead {
		token, err := c.csrfToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set(csrf.HeaderName, token)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body api.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &Error{StatusCode: resp.StatusCode, Message: body.Error, Fields: body.Errors}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// csrfToken returns the CSRF cookie value, fetching the liveness endpoint once
// when no cookie has been handed out yet.
func (c *APIClient) csrfToken(ctx context.Context) (string, error) {
	if token := c.cookie(csrf.CookieName); token != "" {
		return token, nil
	}
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return "", fmt.Errorf("failed to obtain CSRF token: %w", err)
	}
	if token := c.cookie(csrf.CookieName); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("backend did not issue a %s cookie", csrf.CookieName)
}

func (c *APIClient) cookie(name string) string {
	if c.HttpClient.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.HttpClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}
