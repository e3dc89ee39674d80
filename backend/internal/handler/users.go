package handler

import (
	"net/http"
	"strings"

	"github.com/Serubin/AJD-Site/shared/api"
	"github.com/Serubin/AJD-Site/shared/utils"
)

// LookupUser answers whether a user with the given email or phone exists.
// Nothing about the user is returned.
func (h *Handler) LookupUser(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := api.LookupQuery{
		Email: strings.TrimSpace(q.Get("email")),
		Phone: strings.TrimSpace(q.Get("phone")),
	}
	if err := utils.Validate(query); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	_, found, err := h.users.FindByContact(r.Context(), query.Contact())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.LookupResponse{Found: found})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body api.UserRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.users.Create(r.Context(), body.Input())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.UserResponse{Success: true, User: user})
}
