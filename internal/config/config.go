package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// WordPress origin
	WordPressURL string
	PerPageCap   int

	// Auth: empty disables bearer auth on /api routes.
	APIKey string

	// Catalog
	CatalogLocale string
	CatalogTTL    time.Duration

	// Tiered fetch retry
	MaxAttempts  int
	RetryBackoff time.Duration

	// Generation jobs
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Rate limit on the generate endpoint (requests per minute per IP).
	GenerateRPM int
}

// fileConfig mirrors Config for the optional YAML file. Env vars win over
// file values, file values win over defaults.
type fileConfig struct {
	Port          string `yaml:"port"`
	WordPressURL  string `yaml:"wordpress_url"`
	PerPageCap    int    `yaml:"per_page_cap"`
	APIKey        string `yaml:"api_key"`
	CatalogLocale string `yaml:"catalog_locale"`
	CatalogTTL    string `yaml:"catalog_ttl"`
	MaxAttempts   int    `yaml:"max_attempts"`
	RetryBackoff  string `yaml:"retry_backoff"`
	WorkerCount   int    `yaml:"worker_count"`
	MaxQueueSize  int    `yaml:"max_queue_size"`
	JobTTL        string `yaml:"job_ttl"`
	GenerateRPM   int    `yaml:"generate_rpm"`
}

func Load() (Config, error) {
	cfg := Config{
		Port:          "8090",
		PerPageCap:    100,
		CatalogLocale: "en",
		CatalogTTL:    5 * time.Minute,
		MaxAttempts:   3,
		RetryBackoff:  500 * time.Millisecond,
		WorkerCount:   2,
		MaxQueueSize:  50,
		JobTTL:        1 * time.Hour,
		GenerateRPM:   10,
	}

	if path := os.Getenv("BOOKBIND_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.WordPressURL = envOr("WORDPRESS_URL", cfg.WordPressURL)
	cfg.PerPageCap = envInt("PER_PAGE_CAP", cfg.PerPageCap)
	cfg.APIKey = envOr("BOOKBIND_API_KEY", cfg.APIKey)
	cfg.CatalogLocale = envOr("CATALOG_LOCALE", cfg.CatalogLocale)
	cfg.CatalogTTL = envDuration("CATALOG_TTL", cfg.CatalogTTL)
	cfg.MaxAttempts = envInt("MAX_ATTEMPTS", cfg.MaxAttempts)
	cfg.RetryBackoff = envDuration("RETRY_BACKOFF", cfg.RetryBackoff)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.GenerateRPM = envInt("GENERATE_RPM", cfg.GenerateRPM)

	if cfg.PerPageCap <= 0 {
		cfg.PerPageCap = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.GenerateRPM <= 0 {
		cfg.GenerateRPM = 10
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.WordPressURL != "" {
		c.WordPressURL = fc.WordPressURL
	}
	if fc.PerPageCap > 0 {
		c.PerPageCap = fc.PerPageCap
	}
	if fc.APIKey != "" {
		c.APIKey = fc.APIKey
	}
	if fc.CatalogLocale != "" {
		c.CatalogLocale = fc.CatalogLocale
	}
	if fc.MaxAttempts > 0 {
		c.MaxAttempts = fc.MaxAttempts
	}
	if fc.WorkerCount > 0 {
		c.WorkerCount = fc.WorkerCount
	}
	if fc.MaxQueueSize > 0 {
		c.MaxQueueSize = fc.MaxQueueSize
	}
	if fc.GenerateRPM > 0 {
		c.GenerateRPM = fc.GenerateRPM
	}
	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{fc.CatalogTTL, &c.CatalogTTL},
		{fc.RetryBackoff, &c.RetryBackoff},
		{fc.JobTTL, &c.JobTTL},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", d.raw, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c Config) Validate() error {
	if c.WordPressURL == "" {
		return fmt.Errorf("WORDPRESS_URL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
