// Command server starts the internship matching HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/internx/internx/internal/adapter/ai/gemini"
	httpserver "github.com/internx/internx/internal/adapter/httpserver"
	"github.com/internx/internx/internal/adapter/observability"
	"github.com/internx/internx/internal/adapter/repo/postgres"
	"github.com/internx/internx/internal/app"
	"github.com/internx/internx/internal/config"
	"github.com/internx/internx/internal/service/ratelimiter"
	"github.com/internx/internx/internal/usecase"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL, cfg.DBConnectRetries)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		slog.Error("db migrate failed", slog.Any("error", err))
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid redis url", slog.Any("error", err))
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
	}

	// A nil *Limiter must not become a non-nil interface value.
	var limiter usecase.RateLimiter
	if rdb != nil {
		if l := ratelimiter.New(rdb, "analyze", cfg.AnalyzeRatePerMin, time.Minute); l != nil {
			limiter = l
		}
	}

	extractor, err := gemini.New(ctx, cfg, nil)
	if err != nil {
		slog.Error("gemini client init failed", slog.Any("error", err))
		os.Exit(1)
	}

	users := postgres.NewUserRepo(pool)
	prefs := postgres.NewPreferencesRepo(pool)
	analyses := postgres.NewAnalysisRepo(pool)
	internships := postgres.NewInternshipRepo(pool)
	analytics := postgres.NewAnalyticsRepo(pool)

	w := cfg.RecommendationWeights()
	policy := usecase.Policy{
		SkillWeight:        w.Skills,
		InterestWeight:     w.Interests,
		LocationWeight:     w.Location,
		ReadinessInfluence: w.ReadinessInfluence,
		TopN:               w.TopN,
	}

	svc := httpserver.Services{
		Users:       usecase.NewUserService(users),
		Preferences: usecase.NewPreferencesService(prefs),
		Analysis:    usecase.NewAnalysisService(users, analyses, extractor, limiter),
		Recommend:   usecase.NewRecommendationService(prefs, analyses, internships, policy),
		Internships: usecase.NewInternshipService(internships),
		Analytics:   usecase.NewAnalyticsService(analytics, internships),
	}

	var redisPinger app.RedisPinger
	if rdb != nil {
		redisPinger = rdb
	}
	dbCheck, redisCheck := app.BuildReadinessChecks(pool, redisPinger)

	srv := httpserver.NewServer(cfg, svc, dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.Bool("gemini_configured", cfg.GeminiConfigured()))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
