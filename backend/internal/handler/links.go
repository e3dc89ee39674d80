package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Serubin/AJD-Site/backend/internal/service"
	"github.com/Serubin/AJD-Site/shared/api"
	"github.com/Serubin/AJD-Site/shared/errors"
	"github.com/Serubin/AJD-Site/shared/utils"
)

// RequestUpdateLink always answers 200 for a well formed request, whether or
// not the contact belongs to anyone.
func (h *Handler) RequestUpdateLink(w http.ResponseWriter, r *http.Request) {
	var body api.IssueLinkRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.links.RequestUpdateLink(r.Context(), body.Contact()); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}

func (h *Handler) UpdateViaLink(w http.ResponseWriter, r *http.Request) {
	var body api.UpdateViaLinkRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.links.UpdateViaLink(r.Context(), body.Slug, body.Input())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.UserResponse{Success: true, User: user})
}

func (h *Handler) Prefill(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !utils.ValidSlug(slug) {
		utils.WriteErrorAndStatusCode(w, errors.NotFound(service.InvalidLinkMessage))
		return
	}

	p, err := h.links.Prefill(r.Context(), slug)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.PrefillResponse{
		Name:                  p.User.Name,
		Email:                 p.User.Email,
		PhoneCountryCode:      p.Phone.CountryCode,
		PhoneNational:         p.Phone.NationalDigits,
		States:                p.User.States,
		CongressionalDistrict: p.User.CongressionalDistrict,
	})
}
