package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryBaseDelay != time.Second {
		t.Errorf("RetryBaseDelay = %v, want 1s", cfg.RetryBaseDelay)
	}
	if cfg.ModelTimeout != 0 {
		t.Errorf("ModelTimeout = %v, want 0 (no deadline)", cfg.ModelTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_MAX_RETRIES", "5")
	t.Setenv("MODEL_RETRY_BASE_DELAY", "250ms")
	t.Setenv("MODEL_TIMEOUT", "30s")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.RetryBaseDelay != 250*time.Millisecond {
		t.Errorf("RetryBaseDelay = %v, want 250ms", cfg.RetryBaseDelay)
	}
	if cfg.ModelTimeout != 30*time.Second {
		t.Errorf("ModelTimeout = %v, want 30s", cfg.ModelTimeout)
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{
		DBUser:     "app",
		DBPassword: "secret",
		DBHost:     "db.internal",
		DBPort:     "3306",
		DBName:     "spendlens",
	}
	want := "app:secret@tcp(db.internal:3306)/spendlens?parseTime=true"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestIntFromEnvInvalid(t *testing.T) {
	t.Setenv("MODEL_MAX_RETRIES", "not-a-number")
	cfg := Load()
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3 on invalid value", cfg.MaxRetries)
	}
}
