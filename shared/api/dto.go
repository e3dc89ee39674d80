package api

import "github.com/Serubin/AJD-Site/shared/domain"

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

type DistrictResponse struct {
	District string `json:"district"`
}

type PageContentResponse struct {
	Page     string                    `json:"page"`
	Sections map[string]domain.Section `json:"sections"`
}

type GetInvolvedResponse struct {
	StatusContent domain.StatusContent `json:"statusContent"`
	WhatsappLink  string               `json:"whatsappLink,omitempty"`
	States        map[string]string    `json:"states"`
}
