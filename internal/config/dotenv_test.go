package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ADDR", "DRAW_INTERVAL_MS", "FIRST_DRAW_DELAY_MS", "ALLOWED_ORIGINS", "DATABASE_URL"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.DrawInterval() != 3*time.Second {
		t.Fatalf("expected 3s draw interval, got %s", cfg.DrawInterval())
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("PORT", "9000")
	t.Setenv("DRAW_INTERVAL_MS", "250")
	t.Setenv("FIRST_DRAW_DELAY_MS", "0")
	t.Setenv("SESSION_TTL_MINUTES", "5")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("DATABASE_URL", "postgres://example")
	cfg := Load()
	if cfg.Addr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.Addr)
	}
	if cfg.DrawInterval() != 250*time.Millisecond {
		t.Fatalf("unexpected draw interval %s", cfg.DrawInterval())
	}
	if cfg.FirstDrawDelay() != 0 {
		t.Fatalf("expected zero first draw delay, got %s", cfg.FirstDrawDelay())
	}
	if cfg.SessionTTL() != 5*time.Minute {
		t.Fatalf("unexpected ttl %s", cfg.SessionTTL())
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("DRAW_INTERVAL_MS", "soon")
	t.Setenv("DB_MAX_OPEN_CONNS", "-1")
	cfg := Load()
	if cfg.DrawIntervalMillis != Default().DrawIntervalMillis {
		t.Fatalf("expected default interval, got %d", cfg.DrawIntervalMillis)
	}
	if cfg.DBMaxOpenConns != Default().DBMaxOpenConns {
		t.Fatalf("expected default pool size, got %d", cfg.DBMaxOpenConns)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LOG_LEVEL=debug\nLOG_FORMAT=json\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "")
	os.Unsetenv("LOG_FORMAT")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got := os.Getenv("LOG_LEVEL"); got != "warn" {
		t.Fatalf("expected existing LOG_LEVEL kept, got %q", got)
	}
	if got := os.Getenv("LOG_FORMAT"); got != "json" {
		t.Fatalf("expected LOG_FORMAT from file, got %q", got)
	}
}
