package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"mindjournal/internal/models"
	"mindjournal/internal/store"
)

type Overview struct {
	RegularUsers int
	TotalEntries int
	EntriesToday int
}

// AdminService backs the admin dashboard. Every call requires an admin session.
type AdminService struct {
	store *store.Store
	now   Clock
	log   *zap.Logger
}

func NewAdminService(st *store.Store, now Clock, log *zap.Logger) *AdminService {
	return &AdminService{store: st, now: now, log: log}
}

func (a *AdminService) Overview(sess Session) (Overview, error) {
	if err := sess.requireAdmin(); err != nil {
		return Overview{}, err
	}
	var ov Overview
	for _, u := range a.store.Users() {
		if !u.IsAdmin {
			ov.RegularUsers++
		}
	}
	today := a.now().UTC().Format(models.DateLayout)
	for _, e := range a.store.Entries() {
		ov.TotalEntries++
		if e.LocalDate() == today {
			ov.EntriesToday++
		}
	}
	return ov, nil
}

// Users lists the regular users.
func (a *AdminService) Users(sess Session) ([]models.User, error) {
	if err := sess.requireAdmin(); err != nil {
		return nil, err
	}
	var out []models.User
	for _, u := range a.store.Users() {
		if !u.IsAdmin {
			out = append(out, u)
		}
	}
	return out, nil
}

func (a *AdminService) UserRedemptions(sess Session, userID string) ([]models.RedeemedReward, error) {
	if err := sess.requireAdmin(); err != nil {
		return nil, err
	}
	if _, ok := a.store.User(userID); !ok {
		return nil, ErrUserNotFound
	}
	return a.store.RedemptionsByUser(userID), nil
}

func (a *AdminService) DeleteUser(ctx context.Context, sess Session, userID string) error {
	if err := sess.requireAdmin(); err != nil {
		return err
	}
	if userID == sess.UserID {
		return ErrForbidden
	}
	if err := a.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	a.log.Info("user deleted", zap.String("user_id", userID), zap.String("by", sess.UserID))
	return nil
}

// SetAPIKey stores the analysis API key. An empty key switches analysis back
// to the hosted backend.
func (a *AdminService) SetAPIKey(ctx context.Context, sess Session, key string) error {
	if err := sess.requireAdmin(); err != nil {
		return err
	}
	settings := a.store.Settings()
	settings.OpenAIAPIKey = strings.TrimSpace(key)
	if err := a.store.SetSettings(ctx, settings); err != nil {
		return err
	}
	a.log.Info("analysis api key updated", zap.Bool("set", settings.OpenAIAPIKey != ""))
	return nil
}

// HasAPIKey reports whether a key is stored without revealing it.
func (a *AdminService) HasAPIKey(sess Session) (bool, error) {
	if err := sess.requireAdmin(); err != nil {
		return false, err
	}
	return a.store.Settings().OpenAIAPIKey != "", nil
}
