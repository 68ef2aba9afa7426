package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port=%s, want 8080", cfg.Port)
	}
	if cfg.StorageBackend != "memory" {
		t.Fatalf("StorageBackend=%s, want memory", cfg.StorageBackend)
	}
	if cfg.IdempotencyTTL != 0 || cfg.CheckoutKeyWindow != 0 {
		t.Fatalf("expected zero durations, got ttl=%v window=%v", cfg.IdempotencyTTL, cfg.CheckoutKeyWindow)
	}
}

func TestLoadFromEnv_ParsesDurations(t *testing.T) {
	t.Setenv("IDEMPOTENCY_TTL", "48h")
	t.Setenv("CHECKOUT_KEY_WINDOW", "5s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("IdempotencyTTL=%v", cfg.IdempotencyTTL)
	}
	if cfg.CheckoutKeyWindow != 5*time.Second {
		t.Fatalf("CheckoutKeyWindow=%v", cfg.CheckoutKeyWindow)
	}
}

func TestLoadFromEnv_RejectsBadDuration(t *testing.T) {
	t.Setenv("IDEMPOTENCY_TTL", "one-day")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadFromEnv_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is missing")
	}
}
