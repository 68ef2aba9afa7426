package config

import (
	"fmt"
	"os"
	"time"
)

// Config carries deployment-provided settings for the API process.
type Config struct {
	Port           string
	StorageBackend string
	DatabaseURL    string

	// RabbitURL, when set, enables AMQP publishing of booking events.
	RabbitURL string

	// CalendarBaseURL, when set, points at the external busy-calendar feed.
	CalendarBaseURL string

	// DefaultTenant is a local/dev fallback for requests without a tenant header.
	DefaultTenant string

	// IdempotencyTTL and CheckoutKeyWindow are product knobs; zero means
	// "use the service defaults" (24h and 10s respectively).
	IdempotencyTTL    time.Duration
	CheckoutKeyWindow time.Duration
}

// LoadFromEnv reads the process configuration from environment variables,
// applying predictable defaults for local development.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Port:            getenv("PORT", "8080"),
		StorageBackend:  getenv("STORAGE_BACKEND", "memory"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RabbitURL:       os.Getenv("RABBITMQ_URL"),
		CalendarBaseURL: os.Getenv("CALENDAR_BASE_URL"),
		DefaultTenant:   os.Getenv("DEFAULT_TENANT"),
	}

	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("IDEMPOTENCY_TTL must be a duration (e.g. 24h): %w", err)
		}
		cfg.IdempotencyTTL = d
	}
	if v := os.Getenv("CHECKOUT_KEY_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("CHECKOUT_KEY_WINDOW must be a duration (e.g. 10s): %w", err)
		}
		cfg.CheckoutKeyWindow = d
	}

	if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
