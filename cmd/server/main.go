package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/techsaints/landing/internal/metrics"
	"github.com/techsaints/landing/internal/server"
	"github.com/techsaints/landing/internal/subscription"
	"github.com/techsaints/landing/pkg/brevo"
	"github.com/techsaints/landing/pkg/config"
	"github.com/techsaints/landing/pkg/enum"
	"github.com/techsaints/landing/pkg/env"
	"github.com/techsaints/landing/pkg/rate_limiter"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

var (
	envFilePath        string
	disableRateLimiter bool
)

func init() {
	flag.StringVar(&envFilePath, "env", "", "Enter the env file path you want to load if any")
	flag.BoolVar(&disableRateLimiter, "disableRateLimiter", false, "Disable the subscription rate limiter")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupLogger(envObj *env.Specification) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(envObj.LogLevel)}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if envObj.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
		gin.SetMode(gin.ReleaseMode)
	}

	slog.SetDefault(slog.New(handler).With("service", "techsaints-landing"))
}

func newRateLimiterStorage(ctx context.Context, rlCfg config.RateLimiterConfig) (rate_limiter.Storer, func(), error) {
	switch rlCfg.Storage {
	case enum.RedisStorage:
		client := rate_limiter.NewRedisClient()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("could not reach redis: %w", err)
		}
		return rate_limiter.NewRedisStorage(client), func() { _ = client.Close() }, nil
	default:
		storage := rate_limiter.NewMemoryStorage()
		storage.StartSweeper(ctx, rlCfg.SweepInterval)
		return storage, func() {}, nil
	}
}

func main() {
	flag.Parse()

	if envFilePath != "" {
		slog.Info(fmt.Sprintf("loading env file %s", envFilePath))
		if err := godotenv.Load(envFilePath); err != nil {
			panic(fmt.Errorf("could not be able to load the env file: %v", err))
		}
	}

	envObj := env.GetEnv()
	setupLogger(envObj)
	slog.Info("Tech Saints subscription service", "version", envObj.Version, "env", envObj.Env)

	if disableRateLimiter {
		slog.Warn("rate limiter is disabled")
	}
	if envObj.BrevoApiKey == "" {
		slog.Warn("APP_BREVO_API_KEY is empty, every subscription will fail")
	}

	cfg := config.GetConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rlCfg := cfg.SubscriptionRateLimiter()
	storage, closeStorage, err := newRateLimiterStorage(ctx, rlCfg)
	if err != nil {
		slog.Error("could not create the rate limiter storage", "storage", rlCfg.Storage.String(), "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	appMetrics := metrics.New()

	brevoClient := brevo.NewClient(envObj.BrevoApiUrl, envObj.BrevoApiKey)
	brevoClient.Timeout = envObj.BrevoTimeout
	brevoClient.Observer = appMetrics

	subscriber, err := subscription.NewService(brevoClient, cfg, envObj.BrevoListId)
	if err != nil {
		slog.Error("could not create the subscription service", "error", err)
		os.Exit(1)
	}

	opts := []server.Option{server.WithDisableRateLimiter(disableRateLimiter)}
	if cfg.Metrics.Enabled {
		opts = append(opts, server.WithMetrics(appMetrics, cfg.Metrics.Path))
	}

	limiter := rate_limiter.New(config.SubscriptionRateLimiterKey, rlCfg, storage)
	srv := server.NewServer(limiter, subscriber, opts...)
	if err := srv.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
