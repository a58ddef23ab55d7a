package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindjournal/internal/analyzer"
	"mindjournal/internal/models"
	"mindjournal/internal/store"
)

type JournalService struct {
	store    *store.Store
	points   *PointsService
	analyzer analyzer.Analyzer
	now      Clock
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewJournalService(st *store.Store, points *PointsService, an analyzer.Analyzer, now Clock, log *zap.Logger) *JournalService {
	return &JournalService{store: st, points: points, analyzer: an, now: now, log: log}
}

// normalizeTags trims tags and drops blanks and repeats, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Create stores a new entry for the session user and awards the entry points.
// Analysis is not part of creation; see Analyze and AnalyzeAsync.
func (j *JournalService) Create(ctx context.Context, sess Session, content string, mood models.Mood, tags []string) (models.JournalEntry, error) {
	if err := sess.requireUser(); err != nil {
		return models.JournalEntry{}, err
	}
	if _, ok := j.store.User(sess.UserID); !ok {
		return models.JournalEntry{}, ErrNotAuthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return models.JournalEntry{}, ErrEmptyContent
	}
	if !mood.Valid() {
		return models.JournalEntry{}, fmt.Errorf("%w %q", ErrInvalidMood, mood)
	}

	e := models.JournalEntry{
		ID:      uuid.New().String(),
		UserID:  sess.UserID,
		Content: content,
		Mood:    mood,
		Date:    j.now().UTC(),
		Tags:    normalizeTags(tags),
	}
	if err := j.store.InsertEntry(ctx, e); err != nil {
		return models.JournalEntry{}, err
	}
	if _, err := j.points.AddPoints(ctx, sess, EntryPoints); err != nil {
		j.log.Warn("entry points not awarded", zap.String("entry_id", e.ID), zap.Error(err))
	}
	return e, nil
}

// Analyze runs the analyzer over the entry and attaches the result. It never
// fails: an unavailable analysis, or an entry deleted while the call was in
// flight, leaves the entry without analysis. The bool reports attachment.
func (j *JournalService) Analyze(ctx context.Context, entryID string) (models.JournalEntry, bool) {
	e, ok := j.store.Entry(entryID)
	if !ok || e.Analysis != nil {
		return e, false
	}
	a, err := j.analyzer.Analyze(ctx, e.Content)
	if err != nil {
		j.log.Info("entry saved without analysis", zap.String("entry_id", entryID), zap.Error(err))
		return e, false
	}
	updated, err := j.store.AttachAnalysis(ctx, entryID, *a)
	switch {
	case errors.Is(err, store.ErrEntryNotFound):
		j.log.Debug("entry deleted before analysis returned", zap.String("entry_id", entryID))
		return e, false
	case errors.Is(err, store.ErrAnalysisAttached):
		return updated, false
	case err != nil:
		j.log.Warn("analysis not persisted", zap.String("entry_id", entryID), zap.Error(err))
		return e, false
	}
	return updated, true
}

// AnalyzeAsync runs Analyze in the background. The call outlives ctx's
// cancellation; Wait blocks until every pending analysis has finished.
func (j *JournalService) AnalyzeAsync(ctx context.Context, entryID string) {
	ctx = context.WithoutCancel(ctx)
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.Analyze(ctx, entryID)
	}()
}

func (j *JournalService) Wait() {
	j.wg.Wait()
}

// Get returns an entry owned by the session user.
func (j *JournalService) Get(sess Session, id string) (models.JournalEntry, error) {
	if err := sess.requireUser(); err != nil {
		return models.JournalEntry{}, err
	}
	e, ok := j.store.Entry(id)
	if !ok || e.UserID != sess.UserID {
		return models.JournalEntry{}, ErrEntryNotFound
	}
	return e, nil
}

func (j *JournalService) ListMine(sess Session) ([]models.JournalEntry, error) {
	if err := sess.requireUser(); err != nil {
		return nil, err
	}
	return j.store.EntriesByUser(sess.UserID), nil
}

// ListByDate returns the session user's entries whose UTC timestamp starts
// with date (YYYY-MM-DD, or a shorter prefix such as YYYY-MM).
func (j *JournalService) ListByDate(sess Session, date string) ([]models.JournalEntry, error) {
	if err := sess.requireUser(); err != nil {
		return nil, err
	}
	return j.store.EntriesByDate(sess.UserID, date), nil
}

func (j *JournalService) Delete(ctx context.Context, sess Session, id string) error {
	if _, err := j.Get(sess, id); err != nil {
		return err
	}
	return j.store.DeleteEntry(ctx, id)
}
