package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trafficdash/internal/config"
	"trafficdash/internal/logger"
	"trafficdash/internal/model"
	"trafficdash/internal/render"
	"trafficdash/internal/service"
	"trafficdash/internal/simulate"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

func main() {
	username := flag.String("username", "", "Look up usage by username")
	uuid := flag.String("uuid", "", "Look up usage by client UUID")
	apiBase := flag.String("api", "", "Usage API base URL (overrides USAGE_API_BASE_URL)")
	ping := flag.Bool("ping", false, "Print a simulated ping result")
	seed := flag.Int64("seed", 0, "Seed for the simulated ping (default: current time)")
	speed := flag.Bool("speed", false, "Ask the API server to run a speed test")
	flag.Parse()

	logger := logger.New()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	if *apiBase != "" {
		cfg.UsageAPIBaseURL = *apiBase
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := os.Stdout
	ran := false

	if *username != "" || *uuid != "" {
		ran = true
		identifier, kind := *username, model.KindUsername
		if *uuid != "" {
			identifier, kind = *uuid, model.KindUUID
		}

		svc := service.NewUsageQueryService(service.UsageQueryOptions{
			BaseURL:      cfg.UsageAPIBaseURL,
			Timeout:      cfg.UsageRequestTimeout(),
			DemoFallback: cfg.UsageDemoFallback,
		}, validator.New(validator.WithRequiredStructEnabled()), logger)

		rec, err := svc.FetchUsage(ctx, identifier, kind)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "usage: %v\n", err)
			os.Exit(1)
		}
		var renderer render.Renderer = render.NewTextRenderer(out)
		if err := renderer.Render(rec); err != nil {
			logger.Fatal().Err(err).Msg("Failed to render usage")
		}
	}

	if *ping {
		ran = true
		s := *seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		if err := render.RenderPing(out, simulate.Ping(s)); err != nil {
			logger.Fatal().Err(err).Msg("Failed to render ping result")
		}
	}

	if *speed {
		ran = true
		client := service.NewSpeedTestClient(cfg.UsageAPIBaseURL, cfg.SpeedTestTimeout()+10*time.Second, logger)
		if err := render.RenderSpeedTest(out, client.Measure(ctx)); err != nil {
			logger.Fatal().Err(err).Msg("Failed to render speed test")
		}
	}

	if !ran {
		fmt.Fprintln(os.Stderr, "usage: pass -username or -uuid to look up usage, -ping or -speed for network checks")
		flag.PrintDefaults()
		os.Exit(2)
	}
}
