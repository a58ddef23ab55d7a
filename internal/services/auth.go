package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mindjournal/internal/config"
	"mindjournal/internal/models"
	"mindjournal/internal/store"
)

type AuthService struct {
	store    *store.Store
	cfg      config.AuthConfig
	now      Clock
	log      *zap.Logger
	hashCost int
}

func NewAuthService(st *store.Store, cfg config.AuthConfig, now Clock, log *zap.Logger) *AuthService {
	return &AuthService{store: st, cfg: cfg, now: now, log: log, hashCost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) isAdminEmail(email string) bool {
	return strings.EqualFold(normalizeEmail(email), normalizeEmail(s.cfg.AdminEmail))
}

// Register creates a regular user and returns an authenticated session for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (Session, models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return Session{}, models.User{}, fmt.Errorf("%w: name, email and password required", ErrInvalidInput)
	}
	// The admin address is reserved for the provisioned admin record.
	if s.isAdminEmail(email) {
		return Session{}, models.User{}, ErrDuplicateEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return Session{}, models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		JoinedAt:     s.now().UTC(),
	}
	if err := s.store.InsertUser(ctx, u); err != nil {
		return Session{}, models.User{}, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return Session{UserID: u.ID, Authenticated: true}, u, nil
}

// Login authenticates by email and password. The reserved admin credentials
// provision the admin record on first use and reuse it afterwards.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, models.User{}, ErrInvalidCredentials
	}
	if s.isAdminEmail(email) && s.cfg.AdminPassword != "" &&
		subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1 {
		admin, err := s.ensureAdmin(ctx)
		if err != nil {
			return Session{}, models.User{}, err
		}
		return Session{UserID: admin.ID, Authenticated: true, Admin: true}, admin, nil
	}

	u, ok := s.store.UserByEmail(email)
	if !ok || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, models.User{}, ErrInvalidCredentials
	}
	return Session{UserID: u.ID, Authenticated: true, Admin: u.IsAdmin}, u, nil
}

func (s *AuthService) ensureAdmin(ctx context.Context) (models.User, error) {
	if u, ok := s.store.UserByEmail(s.cfg.AdminEmail); ok {
		if u.IsAdmin {
			return u, nil
		}
		return s.store.UpdateUser(ctx, u.ID, func(u *models.User) error {
			u.IsAdmin = true
			return nil
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), s.hashCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	admin := models.User{
		ID:           "admin-" + uuid.New().String(),
		Name:         "Admin",
		Email:        normalizeEmail(s.cfg.AdminEmail),
		PasswordHash: string(hashed),
		JoinedAt:     s.now().UTC(),
		IsAdmin:      true,
	}
	err = s.store.InsertUser(ctx, admin)
	if errors.Is(err, store.ErrDuplicateEmail) {
		// provisioned concurrently
		if u, ok := s.store.UserByEmail(s.cfg.AdminEmail); ok {
			return u, nil
		}
	}
	if err != nil {
		return models.User{}, err
	}
	s.log.Info("admin account provisioned", zap.String("user_id", admin.ID))
	return admin, nil
}

func (s *AuthService) Logout(sess *Session) {
	if sess.Authenticated {
		s.log.Debug("session closed", zap.String("user_id", sess.UserID))
	}
	sess.Logout()
}

// CurrentUser resolves the session against the store. A session pointing at a
// deleted user is treated as unauthenticated.
func (s *AuthService) CurrentUser(sess Session) (models.User, error) {
	if err := sess.requireUser(); err != nil {
		return models.User{}, err
	}
	u, ok := s.store.User(sess.UserID)
	if !ok {
		return models.User{}, ErrNotAuthenticated
	}
	return u, nil
}

// UserPatch carries the fields to merge into a user; nil fields are left as is.
type UserPatch struct {
	Name        *string
	Email       *string
	Points      *int
	Streak      *int
	LastCheckIn *time.Time
}

// UpdateUser merges patch into the user. A missing user yields ErrUserNotFound
// and nothing is written.
func (s *AuthService) UpdateUser(ctx context.Context, userID string, patch UserPatch) (models.User, error) {
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email == "" {
			return models.User{}, fmt.Errorf("%w: email required", ErrInvalidInput)
		}
		if other, ok := s.store.UserByEmail(email); (ok && other.ID != userID) || s.isAdminEmail(email) {
			return models.User{}, ErrDuplicateEmail
		}
		patch.Email = &email
	}
	return s.store.UpdateUser(ctx, userID, func(u *models.User) error {
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return fmt.Errorf("%w: name required", ErrInvalidInput)
			}
			u.Name = name
		}
		if patch.Email != nil {
			// the admin record is bound to the reserved address
			if u.IsAdmin {
				return ErrForbidden
			}
			u.Email = *patch.Email
		}
		if patch.Points != nil {
			u.Points = *patch.Points
		}
		if patch.Streak != nil {
			u.Streak = *patch.Streak
		}
		if patch.LastCheckIn != nil {
			t := patch.LastCheckIn.UTC()
			u.LastCheckIn = &t
		}
		return nil
	})
}
