package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Session.WriteBatchLimit != 8 {
		t.Errorf("expected write_batch_limit 8, got %d", cfg.Session.WriteBatchLimit)
	}
	if cfg.Session.MaxParseAttempts != 5 {
		t.Errorf("expected max_parse_attempts 5, got %d", cfg.Session.MaxParseAttempts)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("expected cache ttl 5m, got %v", cfg.Cache.TTL)
	}
	if cfg.NATS.Enabled {
		t.Error("expected NATS disabled by default")
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
logging:
  level: "debug"
session:
  write_batch_limit: 16
cache:
  ttl: 30s
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Session.WriteBatchLimit != 16 {
		t.Errorf("expected write_batch_limit 16, got %d", cfg.Session.WriteBatchLimit)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("expected cache ttl 30s, got %v", cfg.Cache.TTL)
	}
	// Unchanged fields keep defaults
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("expected default NATS URL, got %s", cfg.NATS.URL)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("APPLOOM_LOG_LEVEL", "warn")
	t.Setenv("APPLOOM_WRITE_BATCH_LIMIT", "4")
	t.Setenv("APPLOOM_CACHE_TTL", "1m")
	t.Setenv("APPLOOM_NATS_ENABLED", "true")
	t.Setenv("NATS_URL", "nats://queue:4222")

	loadEnv(&cfg)

	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Session.WriteBatchLimit != 4 {
		t.Errorf("expected write_batch_limit 4, got %d", cfg.Session.WriteBatchLimit)
	}
	if cfg.Cache.TTL != time.Minute {
		t.Errorf("expected cache ttl 1m, got %v", cfg.Cache.TTL)
	}
	if !cfg.NATS.Enabled {
		t.Error("expected NATS enabled")
	}
	if cfg.NATS.URL != "nats://queue:4222" {
		t.Errorf("expected env NATS URL, got %s", cfg.NATS.URL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(_ *Config) {}, false},
		{"zero batch limit", func(c *Config) { c.Session.WriteBatchLimit = 0 }, true},
		{"zero parse attempts", func(c *Config) { c.Session.MaxParseAttempts = 0 }, true},
		{"nats enabled without url", func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "" }, true},
		{"cache enabled without size", func(c *Config) { c.Cache.MaxBytes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := validate(&cfg)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
