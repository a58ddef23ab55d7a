package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mindjournal/internal/analyzer"
	"mindjournal/internal/config"
	"mindjournal/internal/crypto"
	"mindjournal/internal/db"
	"mindjournal/internal/handlers"
	"mindjournal/internal/logger"
	"mindjournal/internal/services"
	"mindjournal/internal/storage"
	"mindjournal/internal/store"
)

// openSlots builds the configured slot backend. The returned closer releases
// its connection, if any.
func openSlots(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (storage.Slots, func(), error) {
	var (
		slots  storage.Slots
		closer = func() {}
	)
	switch cfg.Backend {
	case "postgres":
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		slots, closer = db.NewSlots(conn), func() { conn.Close() }
	case "redis":
		r, err := storage.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, nil, err
		}
		slots, closer = r, func() { r.Close() }
	default:
		log.Warn("using in-memory storage; data is lost on restart")
		slots = storage.NewMemory()
	}

	if cfg.EncryptionKey != "" {
		sealer, err := crypto.NewSealer(cfg.EncryptionKey)
		if err != nil {
			closer()
			return nil, nil, err
		}
		slots = crypto.NewSealedSlots(slots, sealer)
	}
	log.Info("storage ready", zap.String("backend", cfg.Backend), zap.Bool("encrypted", cfg.EncryptionKey != ""))
	return slots, closer, nil
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.New(config.Default().Log).Fatal("failed to load configuration", zap.Error(err))
	}
	log := logger.New(cfg.Log)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()
	slots, closeSlots, err := openSlots(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeSlots()

	now := services.Clock(time.Now)
	st := store.Open(ctx, slots, log)
	client, err := analyzer.NewClient(cfg.Analysis, func() string { return st.Settings().OpenAIAPIKey }, log)
	if err != nil {
		log.Fatal("failed to build analyzer", zap.Error(err))
	}

	points := services.NewPointsService(st, now, log)
	journal := services.NewJournalService(st, points, client, now, log)
	router := handlers.NewRouter(handlers.Deps{
		Auth:        services.NewAuthService(st, cfg.Auth, now, log),
		Points:      points,
		Journal:     journal,
		Rewards:     services.NewRewardsService(st, now, log),
		Insights:    services.NewInsightsService(st, now),
		Admin:       services.NewAdminService(st, now, log),
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL:    cfg.Auth.TokenTTL,
		Now:         now,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      log,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: router}
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	journal.Wait()
	log.Info("server stopped")
}
