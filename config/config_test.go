package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Fetch.PageSize != 100 {
		t.Errorf("Expected default page size 100, got %d", cfg.Fetch.PageSize)
	}
	if cfg.Cache.Backend != "fs" {
		t.Errorf("Expected fs cache backend, got %s", cfg.Cache.Backend)
	}
	if cfg.UpdateInterval() != 5*time.Minute {
		t.Errorf("Expected 5m update interval, got %v", cfg.UpdateInterval())
	}
	if cfg.DeadLetterInterval() != 24*time.Hour {
		t.Errorf("Expected 24h dead letter interval, got %v", cfg.DeadLetterInterval())
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
fetch:
  base_url: "https://example.com"
  max_retries: 5
  rate_limit:
    max_requests: 2
    window_seconds: 1
schedule:
  update_minutes: 15
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Fetch.BaseURL != "https://example.com" {
		t.Errorf("Expected configured base URL, got %s", cfg.Fetch.BaseURL)
	}
	if cfg.Fetch.MaxRetries != 5 {
		t.Errorf("Expected 5 retries, got %d", cfg.Fetch.MaxRetries)
	}
	if cfg.Fetch.RateLimit.MaxRequests != 2 {
		t.Errorf("Expected 2 rate limit requests, got %d", cfg.Fetch.RateLimit.MaxRequests)
	}
	if cfg.UpdateInterval() != 15*time.Minute {
		t.Errorf("Expected 15m update interval, got %v", cfg.UpdateInterval())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("FETCH_BASE_URL", "https://mirror.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Expected env override for DB host, got %s", cfg.Database.Host)
	}
	if cfg.Fetch.BaseURL != "https://mirror.example.com" {
		t.Errorf("Expected env override for base URL, got %s", cfg.Fetch.BaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug log level, got %s", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
cache:
  backend: "memcached"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for unknown cache backend")
	}
}
