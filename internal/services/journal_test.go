package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindjournal/internal/analyzer"
	"mindjournal/internal/config"
	"mindjournal/internal/models"
)

func TestCreateEntry(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")

	e, err := env.journal.Create(env.ctx, sess, "  a good day  ", models.MoodHappy, []string{" work ", "", "family", "work"})
	require.NoError(t, err)
	require.Equal(t, "a good day", e.Content)
	require.Equal(t, []string{"work", "family"}, e.Tags)
	require.Equal(t, env.clock.t, e.Date)
	require.Nil(t, e.Analysis)

	u, err := env.auth.CurrentUser(sess)
	require.NoError(t, err)
	require.Equal(t, EntryPoints, u.Points)
	require.Zero(t, env.analyzer.calls)
}

func TestCreateEntryValidation(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")

	_, err := env.journal.Create(env.ctx, sess, "   ", models.MoodHappy, nil)
	require.ErrorIs(t, err, ErrEmptyContent)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.journal.Create(env.ctx, sess, "text", models.Mood("ecstatic"), nil)
	require.ErrorIs(t, err, ErrInvalidMood)

	_, err = env.journal.Create(env.ctx, Session{}, "text", models.MoodHappy, nil)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	require.Empty(t, env.store.Entries())
}

func TestEntriesListNewestFirst(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")
	other, _ := env.register(t, "Bob", "bob@example.com")

	first, err := env.journal.Create(env.ctx, sess, "one", models.MoodSad, nil)
	require.NoError(t, err)
	env.clock.advance(24 * time.Hour)
	second, err := env.journal.Create(env.ctx, sess, "two", models.MoodJoyful, nil)
	require.NoError(t, err)
	_, err = env.journal.Create(env.ctx, other, "bob", models.MoodNeutral, nil)
	require.NoError(t, err)

	mine, err := env.journal.ListMine(sess)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, second.ID, mine[0].ID)
	require.Equal(t, first.ID, mine[1].ID)

	day, err := env.journal.ListByDate(sess, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, day, 1)
	require.Equal(t, first.ID, day[0].ID)

	month, err := env.journal.ListByDate(sess, "2025-03")
	require.NoError(t, err)
	require.Len(t, month, 2)
}

func TestEntryOwnership(t *testing.T) {
	env := newEnv(t)
	ann, _ := env.register(t, "Ann", "ann@example.com")
	bob, _ := env.register(t, "Bob", "bob@example.com")

	e, err := env.journal.Create(env.ctx, ann, "private", models.MoodNeutral, nil)
	require.NoError(t, err)

	_, err = env.journal.Get(bob, e.ID)
	require.ErrorIs(t, err, ErrEntryNotFound)
	require.ErrorIs(t, env.journal.Delete(env.ctx, bob, e.ID), ErrEntryNotFound)

	require.NoError(t, env.journal.Delete(env.ctx, ann, e.ID))
	_, err = env.journal.Get(ann, e.ID)
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestAnalyzeAttachesOnce(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")
	e, err := env.journal.Create(env.ctx, sess, "text", models.MoodHappy, nil)
	require.NoError(t, err)

	got, ok := env.journal.Analyze(env.ctx, e.ID)
	require.True(t, ok)
	require.NotNil(t, got.Analysis)
	require.Equal(t, 70, got.Analysis.Score)

	_, ok = env.journal.Analyze(env.ctx, e.ID)
	require.False(t, ok)
	require.Equal(t, 1, env.analyzer.calls)
}

func TestAnalyzeSoftFailure(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")
	e, err := env.journal.Create(env.ctx, sess, "text", models.MoodHappy, nil)
	require.NoError(t, err)

	env.analyzer.fn = func(context.Context, string) (*models.Analysis, error) {
		return nil, fmt.Errorf("%w: status 500", analyzer.ErrAnalysisUnavailable)
	}
	got, ok := env.journal.Analyze(env.ctx, e.ID)
	require.False(t, ok)
	require.Nil(t, got.Analysis)

	stored, err := env.journal.Get(sess, e.ID)
	require.NoError(t, err)
	require.Nil(t, stored.Analysis)
	require.Equal(t, "text", stored.Content)
}

func TestAnalyzeEntryDeletedMidFlight(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")
	e, err := env.journal.Create(env.ctx, sess, "text", models.MoodHappy, nil)
	require.NoError(t, err)

	inner := env.analyzer.fn
	env.analyzer.fn = func(ctx context.Context, text string) (*models.Analysis, error) {
		require.NoError(t, env.journal.Delete(ctx, sess, e.ID))
		return inner(ctx, text)
	}
	_, ok := env.journal.Analyze(env.ctx, e.ID)
	require.False(t, ok)
	require.Empty(t, env.store.Entries())
}

func TestAnalyzeAsyncSurvivesCancelledRequest(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.register(t, "Ann", "ann@example.com")
	e, err := env.journal.Create(env.ctx, sess, "text", models.MoodHappy, nil)
	require.NoError(t, err)

	inner := env.analyzer.fn
	env.analyzer.fn = func(ctx context.Context, text string) (*models.Analysis, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return inner(ctx, text)
	}

	ctx, cancel := context.WithCancel(env.ctx)
	cancel()
	env.journal.AnalyzeAsync(ctx, e.ID)
	env.journal.Wait()

	stored, err := env.journal.Get(sess, e.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Analysis)
}

func TestMalformedAnalysisLeavesEntryUnanalyzed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"completion":"I am not JSON"}`))
	}))
	defer srv.Close()

	env := newEnv(t)
	client, err := analyzer.NewClient(config.AnalysisConfig{HostedURL: srv.URL, Timeout: time.Second}, func() string { return "" }, zap.NewNop())
	require.NoError(t, err)
	env.journal.analyzer = client

	sess, _ := env.register(t, "Ann", "ann@example.com")
	e, err := env.journal.Create(env.ctx, sess, "text", models.MoodNeutral, nil)
	require.NoError(t, err)
	env.journal.AnalyzeAsync(env.ctx, e.ID)
	env.journal.Wait()

	stored, err := env.journal.Get(sess, e.ID)
	require.NoError(t, err)
	require.Nil(t, stored.Analysis)
}
