package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Serubin/AJD-Site/shared/api"
	"github.com/Serubin/AJD-Site/shared/domain"
)

// RequestUpdateLink asks the backend to send an update link to the owner of
// contact. It succeeds whether or not anyone owns it.
func (c *APIClient) RequestUpdateLink(ctx context.Context, contact domain.Contact) error {
	return c.do(ctx, http.MethodPost, "/api/presigned-links",
		api.IssueLinkRequest{Email: contact.Email, Phone: contact.Phone}, nil)
}

func (c *APIClient) UpdateViaLink(ctx context.Context, slug string, req api.UserRequest) (domain.User, error) {
	var resp api.UserResponse
	body := api.UpdateViaLinkRequest{Slug: slug, UserRequest: req}
	if err := c.do(ctx, http.MethodPatch, "/api/presigned-links", body, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

// Prefill fetches the data an update form starts from.
func (c *APIClient) Prefill(ctx context.Context, slug string) (api.PrefillResponse, error) {
	var resp api.PrefillResponse
	if err := c.do(ctx, http.MethodGet, "/api/presigned-links/"+url.PathEscape(slug), nil, &resp); err != nil {
		return api.PrefillResponse{}, err
	}
	return resp, nil
}
