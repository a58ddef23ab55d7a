package services

import (
	"fmt"
	"math"
	"slices"
	"time"

	"mindjournal/internal/models"
	"mindjournal/internal/store"
)

type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeAll   Range = "all"
)

func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case "":
		return RangeWeek, nil
	case RangeWeek, RangeMonth, RangeAll:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown range %q", ErrInvalidInput, s)
}

// since is the earliest timestamp included in the range, zero for RangeAll.
func (r Range) since(now time.Time) time.Time {
	switch r {
	case RangeWeek:
		return now.AddDate(0, 0, -7)
	case RangeMonth:
		return now.AddDate(0, -1, 0)
	}
	return time.Time{}
}

// window caps how many of the most recent entries feed the trend and series.
func (r Range) window() int {
	switch r {
	case RangeWeek:
		return 7
	case RangeMonth:
		return 30
	}
	return 0
}

type Trend string

const (
	TrendImprovedSignificantly Trend = "improved_significantly"
	TrendImproved              Trend = "improved"
	TrendStable                Trend = "stable"
	TrendDeclined              Trend = "declined"
	TrendDeclinedSignificantly Trend = "declined_significantly"
)

// TrendFor classifies the change between two consecutive scores.
func TrendFor(previous, latest int) Trend {
	switch d := latest - previous; {
	case d > 10:
		return TrendImprovedSignificantly
	case d > 5:
		return TrendImproved
	case d < -10:
		return TrendDeclinedSignificantly
	case d < -5:
		return TrendDeclined
	}
	return TrendStable
}

func (t Trend) Message() string {
	switch t {
	case TrendImprovedSignificantly:
		return "Your wellbeing has improved significantly!"
	case TrendImproved:
		return "Your wellbeing has improved."
	case TrendDeclinedSignificantly:
		return "Your wellbeing has declined significantly."
	case TrendDeclined:
		return "Your wellbeing has slightly declined."
	}
	return "Your wellbeing is relatively stable."
}

// WellbeingLabel describes an average score in words.
func WellbeingLabel(score int) string {
	switch {
	case score >= 80:
		return "Excellent mental wellbeing"
	case score >= 60:
		return "Good mental wellbeing"
	case score >= 40:
		return "Moderate mental wellbeing"
	case score >= 20:
		return "Could use some self-care"
	}
	return "Needs attention and care"
}

type MoodShare struct {
	Mood       models.Mood
	Count      int
	Percentage int
}

type TrendPoint struct {
	Previous int
	Latest   int
	Trend    Trend
}

type ScorePoint struct {
	Date  time.Time
	Score int
}

type Insights struct {
	Range         Range
	EntryCount    int
	AnalyzedCount int
	AverageScore  int
	Distribution  []MoodShare
	Trend         *TrendPoint
	Scores        []ScorePoint
	Streak        int
	StreakMessage string
}

type InsightsService struct {
	store *store.Store
	now   Clock
}

func NewInsightsService(st *store.Store, now Clock) *InsightsService {
	return &InsightsService{store: st, now: now}
}

// entryScore prefers the analysis score and falls back to the selected mood.
func entryScore(e models.JournalEntry) int {
	if e.Analysis != nil {
		return e.Analysis.Score
	}
	return e.Mood.Score()
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

func lastN[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func (s *InsightsService) Insights(sess Session, r Range) (Insights, error) {
	if err := sess.requireUser(); err != nil {
		return Insights{}, err
	}
	u, ok := s.store.User(sess.UserID)
	if !ok {
		return Insights{}, ErrNotAuthenticated
	}

	since := r.since(s.now().UTC())
	entries := slices.DeleteFunc(s.store.EntriesByUser(u.ID), func(e models.JournalEntry) bool {
		return e.Date.Before(since)
	})
	slices.SortStableFunc(entries, func(a, b models.JournalEntry) int {
		return a.Date.Compare(b.Date)
	})

	var analyzed []models.JournalEntry
	for _, e := range entries {
		if e.Analysis != nil {
			analyzed = append(analyzed, e)
		}
	}

	out := Insights{
		Range:         r,
		EntryCount:    len(entries),
		AnalyzedCount: len(analyzed),
		Distribution:  distribution(entries, analyzed),
		Streak:        u.Streak,
		StreakMessage: StreakMessage(u.Streak),
	}
	if len(analyzed) > 0 {
		total := 0
		for _, e := range analyzed {
			total += e.Analysis.Score
		}
		out.AverageScore = int(math.Round(float64(total) / float64(len(analyzed))))
	}

	if recent := lastN(entries, r.window()); len(recent) >= 2 {
		prev, latest := entryScore(recent[len(recent)-2]), entryScore(recent[len(recent)-1])
		out.Trend = &TrendPoint{Previous: prev, Latest: latest, Trend: TrendFor(prev, latest)}
	}
	for _, e := range lastN(analyzed, r.window()) {
		out.Scores = append(out.Scores, ScorePoint{Date: e.Date, Score: e.Analysis.Score})
	}
	return out, nil
}

// distribution buckets analyzed entries by score band, all five bands
// included. Without any analysis it counts the selected moods that occur.
func distribution(entries, analyzed []models.JournalEntry) []MoodShare {
	counts := map[models.Mood]int{}
	if len(analyzed) > 0 {
		for _, e := range analyzed {
			counts[models.MoodForScore(e.Analysis.Score)]++
		}
		out := make([]MoodShare, 0, len(models.Moods))
		for _, m := range models.Moods {
			out = append(out, MoodShare{Mood: m, Count: counts[m], Percentage: percent(counts[m], len(analyzed))})
		}
		return out
	}

	for _, e := range entries {
		counts[e.Mood]++
	}
	var out []MoodShare
	for _, m := range models.Moods {
		if counts[m] > 0 {
			out = append(out, MoodShare{Mood: m, Count: counts[m], Percentage: percent(counts[m], len(entries))})
		}
	}
	return out
}
