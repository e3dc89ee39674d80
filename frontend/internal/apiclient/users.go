package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Serubin/AJD-Site/shared/api"
	"github.com/Serubin/AJD-Site/shared/domain"
)

// LookupUser reports whether a user with the given email or phone exists.
func (c *APIClient) LookupUser(ctx context.Context, contact domain.Contact) (bool, error) {
	q := url.Values{}
	if contact.Email != "" {
		q.Set("email", contact.Email)
	}
	if contact.Phone != "" {
		q.Set("phone", contact.Phone)
	}
	var resp api.LookupResponse
	if err := c.do(ctx, http.MethodGet, "/api/users?"+q.Encode(), nil, &resp); err != nil {
		return false, err
	}
	return resp.Found, nil
}

func (c *APIClient) CreateUser(ctx context.Context, req api.UserRequest) (domain.User, error) {
	var resp api.UserResponse
	if err := c.do(ctx, http.MethodPost, "/api/users", req, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}
