// Package config provides hierarchical configuration loading for AppLoom.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the AppLoom generation core.
type Config struct {
	Logging   Logging   `yaml:"logging"`
	NATS      NATS      `yaml:"nats"`
	Cache     Cache     `yaml:"cache"`
	Session   Session   `yaml:"session"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// NATS holds NATS JetStream configuration for the tool event sink.
type NATS struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// Cache holds the in-process search result cache configuration.
type Cache struct {
	MaxBytes int64         `yaml:"max_bytes"`
	TTL      time.Duration `yaml:"ttl"`
	Enabled  bool          `yaml:"enabled"`
}

// Session holds per-generation-session limits.
type Session struct {
	// WriteBatchLimit caps file records per write_files call. This is a
	// throughput/context-window guard, not a store limitation.
	WriteBatchLimit int `yaml:"write_batch_limit"`
	// MaxParseAttempts bounds the repeated-parse loop for stringified
	// tool arguments so pathological input always terminates.
	MaxParseAttempts int `yaml:"max_parse_attempts"`
}

// Telemetry holds OpenTelemetry exporter configuration.
type Telemetry struct {
	Endpoint string `yaml:"endpoint"`
	Enabled  bool   `yaml:"enabled"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Logging: Logging{
			Level:   "info",
			Service: "apploom-core",
		},
		NATS: NATS{
			URL:     "nats://localhost:4222",
			Enabled: false,
		},
		Cache: Cache{
			MaxBytes: 16 << 20,
			TTL:      5 * time.Minute,
			Enabled:  true,
		},
		Session: Session{
			WriteBatchLimit:  8,
			MaxParseAttempts: 5,
		},
		Telemetry: Telemetry{
			Endpoint: "localhost:4317",
			Enabled:  false,
		},
	}
}
