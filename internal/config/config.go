package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	TelegramToken  string        `envconfig:"TELEGRAM_TOKEN"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string        `envconfig:"LOG_FORMAT" default:"text"`
	PrometheusPort string        `envconfig:"PROMETHEUS_PORT" default:"9090"`
	Port           string        `envconfig:"PORT" default:"8080"`
	Timezone       string        `envconfig:"TIMEZONE" default:"UTC"`
	NotifyInterval time.Duration `envconfig:"NOTIFY_INTERVAL" default:"30s"`
	DBConnectWait  time.Duration `envconfig:"DB_CONNECT_WAIT" default:"30s"`
	WebhookURL     string        `envconfig:"WEBHOOK_URL"`

	// Recipe links are fetched only when CLIP_TIMEOUT is positive.
	ClipTimeout time.Duration `envconfig:"CLIP_TIMEOUT" default:"15s"`

	// AI parsing: the household worker takes precedence over direct Gemini.
	AIWorkerURL    string        `envconfig:"AI_WORKER_URL"`
	AIWorkerSecret string        `envconfig:"AI_WORKER_SECRET"`
	AITimeout      time.Duration `envconfig:"AI_TIMEOUT" default:"20s"`
	GeminiAPIKey   string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel    string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`

	GoogleCredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE"`
	GoogleCalendarID      string `envconfig:"GOOGLE_CALENDAR_ID"`
}

// Load loads configuration from a .env file, when present, and the
// environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.AIWorkerURL != "" && cfg.AIWorkerSecret == "" {
		return nil, fmt.Errorf("AI_WORKER_SECRET is required when AI_WORKER_URL is set")
	}

	return &cfg, nil
}

// Location returns the configured default time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GoogleCalendarEnabled reports whether events should go to Google Calendar
// instead of the local calendar table.
func (c *Config) GoogleCalendarEnabled() bool {
	return c.GoogleCredentialsFile != ""
}
