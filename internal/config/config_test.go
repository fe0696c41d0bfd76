package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected default port 8090, got %q", cfg.Port)
	}
	if cfg.PerPageCap != 100 {
		t.Errorf("expected per_page cap 100, got %d", cfg.PerPageCap)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.RetryBackoff != 500*time.Millisecond {
		t.Errorf("expected 500ms backoff, got %v", cfg.RetryBackoff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WORDPRESS_URL", "https://books.example.com")
	t.Setenv("MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_BACKOFF", "2s")
	t.Setenv("CATALOG_LOCALE", "de")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WordPressURL != "https://books.example.com" {
		t.Errorf("unexpected url %q", cfg.WordPressURL)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.RetryBackoff != 2*time.Second {
		t.Errorf("expected 2s backoff, got %v", cfg.RetryBackoff)
	}
	if cfg.CatalogLocale != "de" {
		t.Errorf("expected locale de, got %q", cfg.CatalogLocale)
	}
}

func TestLoad_YAMLFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `wordpress_url: https://file.example.com
max_attempts: 7
retry_backoff: 1s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOOKBIND_CONFIG", path)
	t.Setenv("MAX_ATTEMPTS", "9") // env wins over file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WordPressURL != "https://file.example.com" {
		t.Errorf("expected file value, got %q", cfg.WordPressURL)
	}
	if cfg.MaxAttempts != 9 {
		t.Errorf("expected env to win (9), got %d", cfg.MaxAttempts)
	}
	if cfg.RetryBackoff != time.Second {
		t.Errorf("expected 1s backoff from file, got %v", cfg.RetryBackoff)
	}
}

func TestLoad_BadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOOKBIND_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when WORDPRESS_URL is missing")
	}
	cfg.WordPressURL = "https://example.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
