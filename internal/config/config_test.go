package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/hearth")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 30*time.Second, cfg.NotifyInterval)
		assert.False(t, cfg.GoogleCalendarEnabled())
		assert.Equal(t, time.UTC, cfg.Location())
	})

	t.Run("database url is required", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		os.Unsetenv("DATABASE_URL")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("worker url needs a secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/hearth")
		t.Setenv("AI_WORKER_URL", "https://worker.example")
		t.Setenv("AI_WORKER_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AI_WORKER_SECRET")
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/hearth")
		t.Setenv("NOTIFY_INTERVAL", "2m")
		t.Setenv("TIMEZONE", "America/Chicago")
		t.Setenv("GOOGLE_CREDENTIALS_FILE", "/etc/hearth/sa.json")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Minute, cfg.NotifyInterval)
		assert.Equal(t, "America/Chicago", cfg.Location().String())
		assert.True(t, cfg.GoogleCalendarEnabled())
	})
}
