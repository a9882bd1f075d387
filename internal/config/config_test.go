package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GIN_MODE", "SESSION_SECRET", "DATABASE_PATH",
		"SEED_USERNAME", "SEED_PASSWORD", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "30083" {
		t.Errorf("unexpected default port: %s", cfg.Port)
	}
	if cfg.GinMode != "debug" {
		t.Errorf("unexpected default mode: %s", cfg.GinMode)
	}
	if cfg.DatabasePath != "booksaui.db" {
		t.Errorf("unexpected default database path: %s", cfg.DatabasePath)
	}
	if cfg.SeedUsername != "studentaui" {
		t.Errorf("unexpected default seed username: %s", cfg.SeedUsername)
	}
	if cfg.SeedPassword != "welcome" {
		t.Errorf("unexpected default seed password: %s", cfg.SeedPassword)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_PATH", "/tmp/catalog.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("unexpected port: %s", cfg.Port)
	}
	if cfg.DatabasePath != "/tmp/catalog.db" {
		t.Errorf("unexpected database path: %s", cfg.DatabasePath)
	}
}

func TestValidateReleaseRequiresSecret(t *testing.T) {
	cfg := &Config{
		GinMode:      "release",
		DatabasePath: "booksaui.db",
		SeedUsername: "studentaui",
		SeedPassword: "welcome",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing SESSION_SECRET")
	}

	cfg.SessionSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
