package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"
)

type Config struct {
	AppEnv                     string
	Port                       string
	DatabaseURL                string
	RedisURL                   string
	GoogleClientID             string
	GoogleClientSecret         string
	GoogleRedirectURI          string
	SessionSecret              string
	TokenEncryptionKey         string
	TokenEncryptionKeyFallback string
	GoogleAPITimeout           time.Duration
	LogLevel                   string
	LogFormat                  string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:                     getEnv("APP_ENV", "development"),
		Port:                       getEnv("PORT", "8080"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		RedisURL:                   getEnv("REDIS_URL", ""),
		GoogleClientID:             getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:         getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:          getEnv("GOOGLE_REDIRECT_URI", ""),
		SessionSecret:              getEnv("SESSION_SECRET", ""),
		TokenEncryptionKey:         getEnv("TOKEN_ENCRYPTION_KEY", ""),
		TokenEncryptionKeyFallback: getEnv("TOKEN_ENCRYPTION_KEY_FALLBACK", ""),
		GoogleAPITimeout:           30 * time.Second,
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "text"),
	}

	if raw := os.Getenv("GOOGLE_API_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("GOOGLE_API_TIMEOUT must be a valid duration: %w", err)
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("GOOGLE_API_TIMEOUT must be positive")
		}
		cfg.GoogleAPITimeout = timeout
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GoogleClientID == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	if cfg.GoogleClientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
	}
	if cfg.GoogleRedirectURI == "" {
		return nil, fmt.Errorf("GOOGLE_REDIRECT_URI is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	// Primary key is validated strictly at startup. The fallback key is only
	// checked downstream where a malformed value is skipped with a warning.
	if cfg.TokenEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(cfg.TokenEncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY must be valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
