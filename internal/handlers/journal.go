package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "mindjournal/internal/middleware"
	"mindjournal/internal/models"
	"mindjournal/internal/services"
)

type JournalHandler struct {
	journal *services.JournalService
}

func NewJournalHandler(journal *services.JournalService) *JournalHandler {
	return &JournalHandler{journal: journal}
}

type journalRequest struct {
	Content string      `json:"content"`
	Mood    models.Mood `json:"mood"`
	Tags    []string    `json:"tags"`
}

// Create godoc
// @Summary Write a journal entry
// @Description Saves the entry, awards points and queues the AI analysis
// @Tags journal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} EntryDTO
// @Failure 400 {string} string "Invalid body"
// @Router /journal [post]
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	e, err := h.journal.Create(r.Context(), mw.SessionFrom(r.Context()), req.Content, req.Mood, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	// The entry is already saved; analysis lands on it later, or never.
	h.journal.AnalyzeAsync(r.Context(), e.ID)
	writeJSON(w, http.StatusCreated, ToEntryDTO(e))
}

// List returns the caller's entries, newest first, optionally narrowed by ?date=YYYY-MM-DD.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := mw.SessionFrom(r.Context())
	var (
		entries []models.JournalEntry
		err     error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		entries, err = h.journal.ListByDate(sess, date)
	} else {
		entries, err = h.journal.ListMine(sess)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.journal.Get(mw.SessionFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToEntryDTO(e))
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.Delete(r.Context(), mw.SessionFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
