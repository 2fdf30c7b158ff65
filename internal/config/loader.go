package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "apploom.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Logging.Level, "APPLOOM_LOG_LEVEL")
	setString(&cfg.Logging.Service, "APPLOOM_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "APPLOOM_LOG_ASYNC")
	setString(&cfg.NATS.URL, "NATS_URL")
	setBool(&cfg.NATS.Enabled, "APPLOOM_NATS_ENABLED")
	setInt64(&cfg.Cache.MaxBytes, "APPLOOM_CACHE_MAX_BYTES")
	setDuration(&cfg.Cache.TTL, "APPLOOM_CACHE_TTL")
	setBool(&cfg.Cache.Enabled, "APPLOOM_CACHE_ENABLED")
	setInt(&cfg.Session.WriteBatchLimit, "APPLOOM_WRITE_BATCH_LIMIT")
	setInt(&cfg.Session.MaxParseAttempts, "APPLOOM_MAX_PARSE_ATTEMPTS")
	setString(&cfg.Telemetry.Endpoint, "APPLOOM_OTLP_ENDPOINT")
	setBool(&cfg.Telemetry.Enabled, "APPLOOM_OTEL_ENABLED")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.NATS.Enabled && cfg.NATS.URL == "" {
		return errors.New("nats.url is required when nats.enabled is set")
	}
	if cfg.Cache.Enabled && cfg.Cache.MaxBytes < 1 {
		return errors.New("cache.max_bytes must be >= 1")
	}
	if cfg.Session.WriteBatchLimit < 1 {
		return errors.New("session.write_batch_limit must be >= 1")
	}
	if cfg.Session.MaxParseAttempts < 1 {
		return errors.New("session.max_parse_attempts must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
