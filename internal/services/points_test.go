package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheckInSameDayIsNoop(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")

	ok, u, err := env.points.CheckIn(env.ctx, sess)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, u.Streak)
	require.Equal(t, CheckInPoints, u.Points)

	env.clock.advance(11 * time.Hour) // 23:00 the same day
	ok, u, err = env.points.CheckIn(env.ctx, sess)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, u.Streak)
	require.Equal(t, CheckInPoints, u.Points)
}

func TestCheckInConsecutiveDaysAndGap(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")

	_, _, err := env.points.CheckIn(env.ctx, sess)
	require.NoError(t, err)

	env.clock.advance(13 * time.Hour) // 01:00 next day
	ok, u, err := env.points.CheckIn(env.ctx, sess)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, u.Streak)
	require.Equal(t, 2*CheckInPoints, u.Points)

	env.clock.advance(72 * time.Hour)
	ok, u, err = env.points.CheckIn(env.ctx, sess)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, u.Streak)
	require.Equal(t, 3*CheckInPoints, u.Points)
}

func TestCheckInMilestoneBonuses(t *testing.T) {
	for _, tc := range []struct {
		before int
		award  int
	}{
		{5, 10},
		{6, 60},
		{13, 110},
		{29, 210},
		{30, 10},
	} {
		env := newEnv(t)
		sess, u := env.register(t, "Ann", "ann@example.com")
		yesterday := env.clock.t.AddDate(0, 0, -1)
		streak := tc.before
		_, err := env.auth.UpdateUser(env.ctx, u.ID, UserPatch{Streak: &streak, LastCheckIn: &yesterday})
		require.NoError(t, err)

		ok, got, err := env.points.CheckIn(env.ctx, sess)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, tc.before+1, got.Streak)
		require.Equal(t, tc.award, got.Points, "streak %d", tc.before+1)
	}
}

func TestCheckInRequiresSession(t *testing.T) {
	env := newEnv(t)
	_, _, err := env.points.CheckIn(env.ctx, Session{})
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, _, err = env.points.CheckIn(env.ctx, Session{UserID: "gone", Authenticated: true})
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAddPointsHasNoFloor(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")

	u, err := env.points.AddPoints(env.ctx, sess, -15)
	require.NoError(t, err)
	require.Equal(t, -15, u.Points)
}

func TestStreakMessage(t *testing.T) {
	require.Equal(t, "Start your streak today!", StreakMessage(0))
	require.Equal(t, "1 week streak! Amazing!", StreakMessage(7))
	require.Equal(t, "3 day streak! Keep it up!", StreakMessage(3))
	require.Equal(t, "45 day streak! You're a mental health champion!", StreakMessage(45))
}

func TestSevenConsecutiveCheckIns(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")

	var total int
	for day := 0; day < 7; day++ {
		ok, u, err := env.points.CheckIn(env.ctx, sess)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, day+1, u.Streak)
		total = u.Points
		env.clock.advance(24 * time.Hour)
	}
	require.Equal(t, 10*7+50, total)
}
