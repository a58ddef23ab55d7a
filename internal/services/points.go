package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mindjournal/internal/models"
	"mindjournal/internal/store"
)

const (
	CheckInPoints = 10
	EntryPoints   = 20
)

var errAlreadyCheckedIn = errors.New("already checked in today")

// StreakBonus is the extra award for reaching a milestone streak length.
func StreakBonus(streak int) int {
	switch streak {
	case 7:
		return 50
	case 14:
		return 100
	case 30:
		return 200
	}
	return 0
}

func StreakMessage(streak int) string {
	switch {
	case streak <= 0:
		return "Start your streak today!"
	case streak == 1:
		return "First day of your streak!"
	case streak < 7:
		return fmt.Sprintf("%d day streak! Keep it up!", streak)
	case streak == 7:
		return "1 week streak! Amazing!"
	case streak < 14:
		return fmt.Sprintf("%d day streak! You're on fire!", streak)
	case streak == 14:
		return "2 week streak! Incredible!"
	case streak < 30:
		return fmt.Sprintf("%d day streak! Unstoppable!", streak)
	case streak == 30:
		return "1 month streak! Legendary!"
	}
	return fmt.Sprintf("%d day streak! You're a mental health champion!", streak)
}

// PointsService owns check-ins, streaks and the points balance.
type PointsService struct {
	store *store.Store
	now   Clock
	log   *zap.Logger
}

func NewPointsService(st *store.Store, now Clock, log *zap.Logger) *PointsService {
	return &PointsService{store: st, now: now, log: log}
}

// CheckIn records today's check-in. It reports false, with no change, when the
// user already checked in on the current UTC calendar day. A check-in on the
// day after the previous one extends the streak; any gap restarts it at 1.
func (p *PointsService) CheckIn(ctx context.Context, sess Session) (bool, models.User, error) {
	if err := sess.requireUser(); err != nil {
		return false, models.User{}, err
	}
	now := p.now().UTC()
	today := now.Format(models.DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(models.DateLayout)

	u, err := p.store.UpdateUser(ctx, sess.UserID, func(u *models.User) error {
		last := ""
		if u.LastCheckIn != nil {
			last = u.LastCheckIn.UTC().Format(models.DateLayout)
		}
		if last == today {
			return errAlreadyCheckedIn
		}
		if last == yesterday {
			u.Streak++
		} else {
			u.Streak = 1
		}
		u.Points += CheckInPoints + StreakBonus(u.Streak)
		u.LastCheckIn = &now
		return nil
	})
	switch {
	case errors.Is(err, errAlreadyCheckedIn):
		return false, u, nil
	case errors.Is(err, store.ErrUserNotFound):
		return false, models.User{}, ErrNotAuthenticated
	case err != nil:
		return false, u, err
	}
	p.log.Info("check-in", zap.String("user_id", u.ID), zap.Int("streak", u.Streak), zap.Int("points", u.Points))
	return true, u, nil
}

// AddPoints adds delta to the session user's balance without any lower bound.
func (p *PointsService) AddPoints(ctx context.Context, sess Session, delta int) (models.User, error) {
	if err := sess.requireUser(); err != nil {
		return models.User{}, err
	}
	u, err := p.store.UpdateUser(ctx, sess.UserID, func(u *models.User) error {
		u.Points += delta
		return nil
	})
	if errors.Is(err, store.ErrUserNotFound) {
		return models.User{}, ErrNotAuthenticated
	}
	return u, err
}
