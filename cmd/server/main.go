// Package main is the entrypoint for the mockview API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/kiranshivaraju/mockview/internal/api"
	"github.com/kiranshivaraju/mockview/internal/api/handler"
	mw "github.com/kiranshivaraju/mockview/internal/api/middleware"
	"github.com/kiranshivaraju/mockview/internal/api/response"
	"github.com/kiranshivaraju/mockview/internal/cache"
	"github.com/kiranshivaraju/mockview/internal/config"
	"github.com/kiranshivaraju/mockview/internal/interview"
	"github.com/kiranshivaraju/mockview/internal/logger"
	"github.com/kiranshivaraju/mockview/internal/metrics"
	"github.com/kiranshivaraju/mockview/internal/store"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Server.Env, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("config loaded", zap.String("env", cfg.Server.Env), zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	log.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	log.Info("redis connected")

	// 5. Build services
	pgStore := store.NewPostgresStore(pool)
	m := metrics.New()
	svc := interview.NewService(pgStore,
		interview.WithCache(redisCache, cfg.Interview.CacheTTL),
		interview.WithMetrics(m),
		interview.WithLogger(log.Named("interview")),
		interview.WithMaxQuestions(cfg.Interview.MaxQuestions),
	)

	// 6. Build router with dependencies
	handlerLog := log.Named("handler")
	deps := api.Dependencies{
		Logger:    log.Named("http"),
		Metrics:   m,
		Auth:      mw.NewAuth(pgStore, log.Named("auth")),
		RateLimit: mw.NewRateLimit(redisCache, cfg.Redis.RateLimitPerMin, log.Named("ratelimit")),

		HealthHandler:  healthHandler(pgStore, redisCache),
		MetricsHandler: m.Handler(),

		RegisterHandler: handler.NewRegisterHandler(pgStore, mw.GenerateKey, handlerLog),
		MeHandler:       handler.NewMeHandler(pgStore, handlerLog),

		CreateInterview: handler.NewCreateInterviewHandler(svc, handlerLog),
		ListInterviews:  handler.NewListInterviewsHandler(svc, handlerLog),
		GetInterview:    handler.NewGetInterviewHandler(svc, handlerLog),
		UpdateStatus:    handler.NewUpdateStatusHandler(svc, handlerLog),
		SaveAnswer:      handler.NewSaveAnswerHandler(svc, handlerLog),
		Feedback:        handler.NewFeedbackHandler(svc, handlerLog),
		DeleteInterview: handler.NewDeleteInterviewHandler(svc, handlerLog),
		BulkDelete:      handler.NewBulkDeleteHandler(svc, handlerLog),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler checks database and cache connectivity.
func healthHandler(db, c pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := db.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		if checks["database"] != "ok" || checks["cache"] != "ok" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
