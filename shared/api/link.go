package api

import "github.com/Serubin/AJD-Site/shared/domain"

// Request DTOs

type IssueLinkRequest struct {
	Email string `json:"email,omitempty" validate:"required_without=Phone,omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"required_without=Email,omitempty,canonicalphone"`
}

func (r IssueLinkRequest) Contact() domain.Contact {
	return domain.Contact{Email: r.Email, Phone: r.Phone}
}

type UpdateViaLinkRequest struct {
	Slug string `json:"slug" validate:"required,uuid4"`
	UserRequest
}

// Response DTOs

type SuccessResponse struct {
	Success bool `json:"success"`
}

// PrefillResponse carries what the update form needs for a valid link.
type PrefillResponse struct {
	Name                  string   `json:"name"`
	Email                 string   `json:"email"`
	PhoneCountryCode      string   `json:"phoneCountryCode"`
	PhoneNational         string   `json:"phoneNational"`
	States                []string `json:"states"`
	CongressionalDistrict string   `json:"congressionalDistrict"`
}
