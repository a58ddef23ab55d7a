package handlers

import (
	"net/http"
	"time"

	mw "mindjournal/internal/middleware"
	"mindjournal/internal/models"
	"mindjournal/internal/services"
)

type DashboardHandler struct {
	insights *services.InsightsService
}

func NewDashboardHandler(insights *services.InsightsService) *DashboardHandler {
	return &DashboardHandler{insights: insights}
}

type moodShare struct {
	Mood       models.Mood `json:"mood"`
	Count      int         `json:"count"`
	Percentage int         `json:"percentage"`
}

type trendResponse struct {
	Previous int            `json:"previous"`
	Latest   int            `json:"latest"`
	Trend    services.Trend `json:"trend"`
	Message  string         `json:"message"`
}

type scorePoint struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

type insightsResponse struct {
	Range          services.Range `json:"range"`
	EntryCount     int            `json:"entry_count"`
	AnalyzedCount  int            `json:"analyzed_count"`
	AverageScore   int            `json:"average_score"`
	WellbeingLabel string         `json:"wellbeing_label"`
	Distribution   []moodShare    `json:"distribution"`
	Trend          *trendResponse `json:"trend,omitempty"`
	Scores         []scorePoint   `json:"scores"`
	Streak         int            `json:"streak"`
	StreakMessage  string         `json:"streak_message"`
}

// Insights godoc
// @Summary Mood insights
// @Description Average score, mood distribution and trend for week, month or all time
// @Tags insights
// @Produce json
// @Security BearerAuth
// @Param range query string false "week (default), month or all"
// @Success 200 {object} insightsResponse
// @Router /insights [get]
func (h *DashboardHandler) Insights(w http.ResponseWriter, r *http.Request) {
	rng, err := services.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, err)
		return
	}
	in, err := h.insights.Insights(mw.SessionFrom(r.Context()), rng)
	if err != nil {
		writeError(w, err)
		return
	}

	out := insightsResponse{
		Range:          in.Range,
		EntryCount:     in.EntryCount,
		AnalyzedCount:  in.AnalyzedCount,
		AverageScore:   in.AverageScore,
		WellbeingLabel: services.WellbeingLabel(in.AverageScore),
		Distribution:   make([]moodShare, 0, len(in.Distribution)),
		Scores:         make([]scorePoint, 0, len(in.Scores)),
		Streak:         in.Streak,
		StreakMessage:  in.StreakMessage,
	}
	for _, d := range in.Distribution {
		out.Distribution = append(out.Distribution, moodShare{Mood: d.Mood, Count: d.Count, Percentage: d.Percentage})
	}
	for _, s := range in.Scores {
		out.Scores = append(out.Scores, scorePoint{Date: s.Date.UTC().Format(time.RFC3339), Score: s.Score})
	}
	if in.Trend != nil {
		out.Trend = &trendResponse{
			Previous: in.Trend.Previous,
			Latest:   in.Trend.Latest,
			Trend:    in.Trend.Trend,
			Message:  in.Trend.Trend.Message(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
