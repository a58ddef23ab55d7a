package handlers

import (
	"encoding/json"
	"net/http"

	mw "mindjournal/internal/middleware"
	"mindjournal/internal/services"
)

// AnalyzerHandler manages the analysis settings. Both routes are admin only.
type AnalyzerHandler struct {
	admin *services.AdminService
}

func NewAnalyzerHandler(admin *services.AdminService) *AnalyzerHandler {
	return &AnalyzerHandler{admin: admin}
}

// GetAPIKey reports whether a key is configured; the key itself is never returned.
func (h *AnalyzerHandler) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	ok, err := h.admin.HasAPIKey(mw.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"configured": ok})
}

// SetAPIKey godoc
// @Summary Set the analysis API key
// @Description An empty key switches analysis back to the hosted backend
// @Tags settings
// @Accept json
// @Security BearerAuth
// @Success 204
// @Failure 403 {string} string "Forbidden"
// @Router /settings/api-key [put]
func (h *AnalyzerHandler) SetAPIKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.admin.SetAPIKey(r.Context(), mw.SessionFrom(r.Context()), body.APIKey); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
