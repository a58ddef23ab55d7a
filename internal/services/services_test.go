package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mindjournal/internal/config"
	"mindjournal/internal/models"
	"mindjournal/internal/storage"
	"mindjournal/internal/store"
)

const (
	adminEmail    = "admin@mindjournal.com"
	adminPassword = "admin123"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type stubAnalyzer struct {
	fn    func(ctx context.Context, text string) (*models.Analysis, error)
	calls int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, text string) (*models.Analysis, error) {
	s.calls++
	return s.fn(ctx, text)
}

func fixedAnalysis(score int) *stubAnalyzer {
	return &stubAnalyzer{fn: func(context.Context, string) (*models.Analysis, error) {
		return &models.Analysis{
			Score:       score,
			Summary:     "ok",
			Suggestions: []string{"a", "b", "c"},
			Keywords:    []string{"x", "y", "z"},
		}, nil
	}}
}

// failingSlots fails saves for the chosen keys.
type failingSlots struct {
	*storage.Memory
	failSave map[string]bool
}

func (f *failingSlots) Save(ctx context.Context, key string, value []byte) error {
	if f.failSave[key] {
		return errors.New("disk full")
	}
	return f.Memory.Save(ctx, key, value)
}

type testEnv struct {
	ctx      context.Context
	clock    *fakeClock
	slots    *failingSlots
	store    *store.Store
	auth     *AuthService
	points   *PointsService
	journal  *JournalService
	rewards  *RewardsService
	insights *InsightsService
	admin    *AdminService
	analyzer *stubAnalyzer
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()
	clock := &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	slots := &failingSlots{Memory: storage.NewMemory(), failSave: map[string]bool{}}
	st := store.Open(ctx, slots, log)

	auth := NewAuthService(st, config.AuthConfig{AdminEmail: adminEmail, AdminPassword: adminPassword}, clock.now, log)
	auth.hashCost = bcrypt.MinCost
	points := NewPointsService(st, clock.now, log)
	an := fixedAnalysis(70)

	return &testEnv{
		ctx:      ctx,
		clock:    clock,
		slots:    slots,
		store:    st,
		auth:     auth,
		points:   points,
		journal:  NewJournalService(st, points, an, clock.now, log),
		rewards:  NewRewardsService(st, clock.now, log),
		insights: NewInsightsService(st, clock.now),
		admin:    NewAdminService(st, clock.now, log),
		analyzer: an,
	}
}

func (e *testEnv) register(t *testing.T, name, email string) (Session, models.User) {
	t.Helper()
	sess, u, err := e.auth.Register(e.ctx, name, email, "secret")
	require.NoError(t, err)
	return sess, u
}

func (e *testEnv) adminSession(t *testing.T) Session {
	t.Helper()
	sess, _, err := e.auth.Login(e.ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	return sess
}

func (e *testEnv) setPoints(t *testing.T, userID string, points int) {
	t.Helper()
	_, err := e.auth.UpdateUser(e.ctx, userID, UserPatch{Points: &points})
	require.NoError(t, err)
}
