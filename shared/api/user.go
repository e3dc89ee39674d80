package api

import "github.com/Serubin/AJD-Site/shared/domain"

// Request DTOs

type UserRequest struct {
	Name                  string   `json:"name" validate:"required,max=200"`
	Email                 string   `json:"email" validate:"required,email,max=320"`
	Phone                 string   `json:"phone" validate:"omitempty,canonicalphone"`
	States                []string `json:"states" validate:"required,min=1,dive,usstate"`
	CongressionalDistrict string   `json:"congressionalDistrict" validate:"omitempty,max=16"`
}

// LookupQuery is the query string of GET /api/users.
type LookupQuery struct {
	Email string `json:"email,omitempty" validate:"required_without=Phone,omitempty,email,max=320"`
	Phone string `json:"phone,omitempty" validate:"required_without=Email,omitempty,canonicalphone"`
}

func (q LookupQuery) Contact() domain.Contact {
	return domain.Contact{Email: q.Email, Phone: q.Phone}
}

func (r UserRequest) Input() domain.UserInput {
	return domain.UserInput{
		Name:                  r.Name,
		Email:                 r.Email,
		Phone:                 r.Phone,
		States:                r.States,
		CongressionalDistrict: r.CongressionalDistrict,
	}
}

// Response DTOs

type LookupResponse struct {
	Found bool `json:"found"`
}

type UserResponse struct {
	Success bool        `json:"success"`
	User    domain.User `json:"user"`
}
