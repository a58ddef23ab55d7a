package services

import (
	"errors"
	"fmt"
	"time"

	"mindjournal/internal/store"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyContent       = fmt.Errorf("%w: content is empty", ErrInvalidInput)
	ErrInvalidMood        = fmt.Errorf("%w: unknown mood", ErrInvalidInput)
	ErrDuplicateEmail     = store.ErrDuplicateEmail
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = store.ErrUserNotFound
	ErrEntryNotFound      = store.ErrEntryNotFound
	ErrRewardNotFound     = errors.New("reward not found")
	ErrInsufficientPoints = store.ErrInsufficientPoints
	ErrRedemptionInFlight = errors.New("redemption already in progress")
	ErrVoucherExhausted   = errors.New("could not issue a unique voucher code")
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// Session identifies who is acting. It is passed explicitly to every
// service call; over HTTP it is rebuilt from the bearer token per request.
type Session struct {
	UserID        string
	Authenticated bool
	Admin         bool
}

// Logout clears the session pointer and its flags.
func (s *Session) Logout() {
	*s = Session{}
}

func (s Session) requireUser() error {
	if !s.Authenticated || s.UserID == "" {
		return ErrNotAuthenticated
	}
	return nil
}

func (s Session) requireAdmin() error {
	if err := s.requireUser(); err != nil {
		return err
	}
	if !s.Admin {
		return ErrForbidden
	}
	return nil
}
