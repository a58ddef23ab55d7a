package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	mw "mindjournal/internal/middleware"
	"mindjournal/internal/services"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Auth        *services.AuthService
	Points      *services.PointsService
	Journal     *services.JournalService
	Rewards     *services.RewardsService
	Insights    *services.InsightsService
	Admin       *services.AdminService
	JWTSecret   []byte
	TokenTTL    time.Duration
	Now         services.Clock
	CORSOrigins []string
	Logger      *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.ZapRequestLogger(d.Logger))
	r.Use(mw.ZapRecoverer(d.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(d.Auth, d.JWTSecret, d.TokenTTL, d.Now)
	userHandler := NewUserHandler(d.Auth)
	progressHandler := NewProgressHandler(d.Points)
	journalHandler := NewJournalHandler(d.Journal)
	rewardsHandler := NewRewardsHandler(d.Rewards)
	dashboardHandler := NewDashboardHandler(d.Insights)
	analyzerHandler := NewAnalyzerHandler(d.Admin)
	adminHandler := NewAdminHandler(d.Admin)
	authMW := mw.NewAuthMiddleware(d.JWTSecret, d.Now)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Post("/auth/logout", authHandler.Logout)

			pr.Get("/me", userHandler.GetMe)
			pr.Patch("/me", userHandler.UpdateMe)
			pr.Post("/checkin", progressHandler.CheckIn)

			pr.Post("/journal", journalHandler.Create)
			pr.Get("/journal", journalHandler.List)
			pr.Get("/journal/{id}", journalHandler.Get)
			pr.Delete("/journal/{id}", journalHandler.Delete)

			pr.Get("/rewards", rewardsHandler.Catalog)
			pr.Get("/rewards/redeemed", rewardsHandler.Redeemed)
			pr.Post("/rewards/{id}/redeem", rewardsHandler.Redeem)

			pr.Get("/insights", dashboardHandler.Insights)

			pr.Group(func(ad chi.Router) {
				ad.Use(mw.RequireAdmin)
				ad.Get("/settings/api-key", analyzerHandler.GetAPIKey)
				ad.Put("/settings/api-key", analyzerHandler.SetAPIKey)
				ad.Get("/admin/overview", adminHandler.Overview)
				ad.Get("/admin/users", adminHandler.Users)
				ad.Get("/admin/users/{id}/redemptions", adminHandler.UserRedemptions)
				ad.Delete("/admin/users/{id}", adminHandler.DeleteUser)
			})
		})
	})
	return r
}
