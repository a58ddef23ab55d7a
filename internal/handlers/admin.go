package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "mindjournal/internal/middleware"
	"mindjournal/internal/services"
)

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler { return &AdminHandler{admin: admin} }

type adminOverview struct {
	RegularUsers int `json:"regular_users"`
	TotalEntries int `json:"total_entries"`
	EntriesToday int `json:"entries_today"`
}

// Overview godoc
// @Summary Get admin overview
// @Description Returns user and entry counts (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} adminOverview
// @Failure 403 {string} string "Forbidden"
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.admin.Overview(mw.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adminOverview{
		RegularUsers: ov.RegularUsers,
		TotalEntries: ov.TotalEntries,
		EntriesToday: ov.EntriesToday,
	})
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.Users(mw.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDTO(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) UserRedemptions(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.UserRedemptions(mw.SessionFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRedemptionDTOs(list))
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteUser(r.Context(), mw.SessionFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
