package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Tandemrecruit/ReplyStack-sub002/internal/app"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/config"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/crypto"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/database"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/domain"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/gbp"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/logging"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/redis"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/server"
)

const (
	publishRateLimit  = 30
	publishRateWindow = time.Minute
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *goredis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupCipher(cfg *config.Config) crypto.Service {
	if cfg.TokenEncryptionKey == "" {
		if cfg.AppEnv == "production" {
			slog.Error("TOKEN_ENCRYPTION_KEY is required in production")
			os.Exit(1)
		}
		slog.Warn("No encryption key configured, storing credentials in plaintext (dev mode)")
		return crypto.NoopService{}
	}

	cipher, err := crypto.NewTokenCipher(cfg.TokenEncryptionKey, cfg.TokenEncryptionKeyFallback)
	if err != nil {
		slog.Error("Failed to create token cipher", "error", err)
		os.Exit(1)
	}
	return cipher
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	cipher := setupCipher(cfg)

	client := gbp.NewClient(gbp.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURI:  cfg.GoogleRedirectURI,
		Timeout:      cfg.GoogleAPITimeout,
	})

	userRepo := database.NewUserRepo(pool)
	orgRepo := database.NewOrganizationRepo(pool)
	locationRepo := database.NewLocationRepo(pool)
	reviewRepo := database.NewReviewRepo(pool)

	var limiter domain.PublishRateLimiter
	if redisClient != nil {
		limiter = redis.NewPublishRateLimiter(redisClient, clock, publishRateLimit, publishRateWindow)
	}

	appSvc := app.NewService(userRepo, orgRepo, locationRepo, reviewRepo, client, cipher, limiter, clock)

	srv := server.NewServer(cfg, appSvc, pool, redisClient)

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
