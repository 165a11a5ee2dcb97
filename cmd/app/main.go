package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"trafficdash/internal/api/v1/router"
	"trafficdash/internal/config"
	"trafficdash/internal/logger"
	"trafficdash/internal/middleware"
	"trafficdash/internal/repository"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := logger.New()

	// 1. Load configuration
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	limit, burst, err := config.ParseRateLimit(cfg.RateLimit)
	if err != nil {
		logger.Fatal().Msgf("Invalid RATE_LIMIT: %v", err)
	}

	proxies, err := config.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal().Msgf("Invalid TRUSTED_PROXIES: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Open the panel database
	db, err := repository.OpenDB(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal().Msgf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info().Str("driver", cfg.DBDriver).Msg("Database connection successful")

	// 3. Build router
	limiter := middleware.NewRateLimiter(limit, burst).TrustProxies(proxies...)
	r := router.New(cfg, router.Deps{DB: db, RateLimiter: limiter}, logger)

	// 4. Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.SpeedTestTimeout() + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Msgf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		limiter.Run(5*time.Minute, gctx.Done())
		return nil
	})

	// 5. Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutdown signal received, exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Msgf("Server stopped with error: %v", err)
	}
	logger.Info().Msg("Server shut down gracefully")
}
