package handlers

import (
	"net/http"

	mw "mindjournal/internal/middleware"
	"mindjournal/internal/services"
)

type ProgressHandler struct {
	points *services.PointsService
}

func NewProgressHandler(points *services.PointsService) *ProgressHandler {
	return &ProgressHandler{points: points}
}

type checkInResponse struct {
	CheckedIn bool    `json:"checked_in"`
	Bonus     int     `json:"bonus"`
	User      UserDTO `json:"user"`
}

// CheckIn records today's check-in. A repeat on the same UTC day answers
// 200 with checked_in=false and leaves the balance alone.
func (h *ProgressHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ok, u, err := h.points.CheckIn(r.Context(), mw.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := checkInResponse{CheckedIn: ok, User: ToUserDTO(u)}
	if ok {
		resp.Bonus = services.StreakBonus(u.Streak)
	}
	writeJSON(w, http.StatusOK, resp)
}
