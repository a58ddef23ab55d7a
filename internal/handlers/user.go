package handlers

import (
	"encoding/json"
	"net/http"

	mw "mindjournal/internal/middleware"
	"mindjournal/internal/services"
)

type UserHandler struct {
	auth *services.AuthService
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// GetMe returns the current user's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.CurrentUser(mw.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(u))
}

// UpdateMe updates the profile fields a user may change themselves.
// Points and streak only move through check-ins, entries and redemptions.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	sess := mw.SessionFrom(r.Context())
	var body struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if _, err := h.auth.CurrentUser(sess); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.auth.UpdateUser(r.Context(), sess.UserID, services.UserPatch{Name: body.Name, Email: body.Email})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(u))
}
