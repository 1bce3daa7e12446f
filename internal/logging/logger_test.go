package logging

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug text", "debug", "text"},
		{"info json", "info", "json"},
		{"warn text", "warn", "text"},
		{"error json", "error", "json"},
		{"unknown level defaults to info", "verbose", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level, tt.format)
			assert.NotNil(t, Logger)
			assert.Equal(t, Logger, slog.Default())
		})
	}
}

func TestContextHelpers(t *testing.T) {
	InitLogger("info", "text")

	assert.NotNil(t, WithUser("user-1"))
	assert.NotNil(t, WithOrganization("org-1"))
	assert.NotNil(t, WithReview("rev-1"))
	assert.NotNil(t, WithError(errors.New("boom")))
}
