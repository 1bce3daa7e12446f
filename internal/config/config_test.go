package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/replystack")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URI", "https://app.example.com/auth/google/callback")
	t.Setenv("SESSION_SECRET", "session-secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "development", cfg.AppEnv)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 30*time.Second, cfg.GoogleAPITimeout)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Empty(t, cfg.TokenEncryptionKey)
		assert.Empty(t, cfg.RedisURL)
	})

	t.Run("required variables", func(t *testing.T) {
		required := []string{
			"DATABASE_URL",
			"GOOGLE_CLIENT_ID",
			"GOOGLE_CLIENT_SECRET",
			"GOOGLE_REDIRECT_URI",
			"SESSION_SECRET",
		}

		for _, missing := range required {
			t.Run("missing "+missing, func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv(missing, "")

				_, err := Load()
				require.Error(t, err)
				assert.Contains(t, err.Error(), missing)
			})
		}
	})

	t.Run("custom timeout", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GOOGLE_API_TIMEOUT", "5s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.GoogleAPITimeout)
	})

	t.Run("invalid timeout", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GOOGLE_API_TIMEOUT", "not-a-duration")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GOOGLE_API_TIMEOUT")
	})

	t.Run("negative timeout", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GOOGLE_API_TIMEOUT", "-5s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("valid encryption key", func(t *testing.T) {
		setRequiredEnv(t)
		key := strings.Repeat("ab", 32)
		t.Setenv("TOKEN_ENCRYPTION_KEY", key)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, key, cfg.TokenEncryptionKey)
	})

	t.Run("malformed encryption key", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TOKEN_ENCRYPTION_KEY", "not-hex")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be valid hex")
	})

	t.Run("wrong-size encryption key", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TOKEN_ENCRYPTION_KEY", "abcd")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "64 hex characters")
	})

	t.Run("malformed fallback key passes startup validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TOKEN_ENCRYPTION_KEY", strings.Repeat("ab", 32))
		t.Setenv("TOKEN_ENCRYPTION_KEY_FALLBACK", "not-hex")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "not-hex", cfg.TokenEncryptionKeyFallback)
	})
}
