package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_URL", "LOCAL_DB_PATH", "NATS_URL", "NATS_SUBJECT",
		"DEFAULT_POOL_SIZE", "DRAW_INTERVAL_MS", "ALLOWED_ORIGINS",
	} {
		// t.Setenv registers the restore; Unsetenv makes the variable
		// truly absent so the tag defaults apply.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "4000" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "4000")
	}
	if cfg.LocalDBPath != "bingo.db" {
		t.Fatalf("LocalDBPath = %q, want %q", cfg.LocalDBPath, "bingo.db")
	}
	if cfg.NATSSubject != "bingo.state" {
		t.Fatalf("NATSSubject = %q, want %q", cfg.NATSSubject, "bingo.state")
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("expected SQLite fallback, got DATABASE_URL %q", cfg.DatabaseURL)
	}
	if cfg.DefaultPoolSize != 90 {
		t.Fatalf("DefaultPoolSize = %d, want 90", cfg.DefaultPoolSize)
	}
	if cfg.DrawIntervalMS != 1000 {
		t.Fatalf("DrawIntervalMS = %d, want 1000", cfg.DrawIntervalMS)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DEFAULT_POOL_SIZE", "-5")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative pool size")
	}

	t.Setenv("DEFAULT_POOL_SIZE", "90")
	t.Setenv("DRAW_INTERVAL_MS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero draw interval")
	}
}
