package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Serubin/AJD-Site/shared/api"
	"github.com/Serubin/AJD-Site/shared/domain"
	"github.com/Serubin/AJD-Site/shared/utils"
)

func (h *Handler) GetPageContent(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	sections, err := h.content.Page(r.Context(), page)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.PageContentResponse{Page: page, Sections: sections})
}

// GetInvolved returns what the sign-up panel needs besides the form itself.
func (h *Handler) GetInvolved(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.GetInvolvedResponse{
		StatusContent: h.content.StatusContent(r.Context()),
		WhatsappLink:  h.cfg.Features.WhatsappLink,
		States:        domain.USStates,
	})
}

func (h *Handler) GetCongressionalDistrict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	district, err := h.district.Lookup(r.Context(), q.Get("lat"), q.Get("lng"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.DistrictResponse{District: district})
}
