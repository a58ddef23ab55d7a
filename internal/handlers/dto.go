package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mindjournal/internal/models"
	"mindjournal/internal/services"
)

// UserDTO is the public view of a user; the password hash never leaves the store.
type UserDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Points        int     `json:"points"`
	Streak        int     `json:"streak"`
	StreakMessage string  `json:"streak_message"`
	LastCheckIn   *string `json:"last_check_in,omitempty"`
	JoinedAt      string  `json:"joined_at"`
	IsAdmin       bool    `json:"is_admin"`
}

func toDateTimeStringPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Points:        u.Points,
		Streak:        u.Streak,
		StreakMessage: services.StreakMessage(u.Streak),
		LastCheckIn:   toDateTimeStringPtr(u.LastCheckIn),
		JoinedAt:      u.JoinedAt.UTC().Format(time.RFC3339),
		IsAdmin:       u.IsAdmin,
	}
}

type EntryDTO struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Mood      models.Mood      `json:"mood"`
	Date      string           `json:"date"`
	LocalDate string           `json:"local_date"`
	Tags      []string         `json:"tags"`
	Analysis  *models.Analysis `json:"analysis,omitempty"`
}

func ToEntryDTO(e models.JournalEntry) EntryDTO {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return EntryDTO{
		ID:        e.ID,
		Content:   e.Content,
		Mood:      e.Mood,
		Date:      e.Date.UTC().Format(time.RFC3339),
		LocalDate: e.LocalDate(),
		Tags:      tags,
		Analysis:  e.Analysis,
	}
}

func toEntryDTOs(entries []models.JournalEntry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToEntryDTO(e))
	}
	return out
}

type RedemptionDTO struct {
	ID         string `json:"id"`
	RewardID   string `json:"reward_id"`
	Code       string `json:"code"`
	RedeemedAt string `json:"redeemed_at"`
}

func ToRedemptionDTO(r models.RedeemedReward) RedemptionDTO {
	return RedemptionDTO{
		ID:         r.ID,
		RewardID:   r.RewardID,
		Code:       r.Code,
		RedeemedAt: r.RedeemedAt.UTC().Format(time.RFC3339),
	}
}

func toRedemptionDTOs(list []models.RedeemedReward) []RedemptionDTO {
	out := make([]RedemptionDTO, 0, len(list))
	for _, r := range list {
		out = append(out, ToRedemptionDTO(r))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes with a short message.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, services.ErrInvalidCredentials):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, services.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrDuplicateEmail):
		http.Error(w, "email already registered", http.StatusConflict)
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrEntryNotFound),
		errors.Is(err, services.ErrRewardNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, services.ErrInsufficientPoints):
		http.Error(w, "insufficient points", http.StatusConflict)
	case errors.Is(err, services.ErrRedemptionInFlight):
		http.Error(w, "redemption in progress", http.StatusConflict)
	case errors.Is(err, services.ErrVoucherExhausted):
		http.Error(w, "could not issue voucher", http.StatusServiceUnavailable)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
