package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "mindjournal/internal/middleware"
	"mindjournal/internal/services"
)

type RewardsHandler struct {
	rewards *services.RewardsService
}

func NewRewardsHandler(rewards *services.RewardsService) *RewardsHandler {
	return &RewardsHandler{rewards: rewards}
}

type catalogItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost"`
	Image       string `json:"image"`
	Redeemed    int    `json:"redeemed"`
	Affordable  bool   `json:"affordable"`
}

func (h *RewardsHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.rewards.Catalog(mw.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]catalogItem, 0, len(items))
	for _, it := range items {
		out = append(out, catalogItem{
			ID:          it.ID,
			Title:       it.Title,
			Description: it.Description,
			PointsCost:  it.PointsCost,
			Image:       it.Image,
			Redeemed:    it.Redeemed,
			Affordable:  it.Affordable,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RewardsHandler) Redeemed(w http.ResponseWriter, r *http.Request) {
	list, err := h.rewards.ListMine(mw.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRedemptionDTOs(list))
}

type redeemResponse struct {
	Redemption RedemptionDTO `json:"redemption"`
	User       UserDTO       `json:"user"`
}

// Redeem godoc
// @Summary Redeem a reward
// @Tags rewards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reward ID"
// @Success 201 {object} redeemResponse
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Insufficient points"
// @Router /rewards/{id}/redeem [post]
func (h *RewardsHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	rec, u, err := h.rewards.Redeem(r.Context(), mw.SessionFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, redeemResponse{Redemption: ToRedemptionDTO(rec), User: ToUserDTO(u)})
}
