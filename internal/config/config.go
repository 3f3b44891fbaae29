// Package config handles application configuration loading from environment
// variables, plus an optional YAML file for curation tunables (list caps,
// feed cache TTL). It provides a centralized Config struct used across the
// application.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Curation tunables, overridable via the YAML file.
	Curation Curation
}

// Curation holds the slot/list engine tunables. FeaturedCap is fixed by
// product at 3; EditorsPickCap is an editorial decision per deployment.
type Curation struct {
	FeaturedCap    int
	EditorsPickCap int
	FeedCacheTTL   time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. If CURATION_CONFIG names a YAML file,
// curation tunables are loaded from it on top of the defaults. Returns an
// error if critical values are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "newsdesk"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "newsdesk"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		Curation: Curation{
			FeaturedCap:    3,
			EditorsPickCap: 6,
			FeedCacheTTL:   2 * time.Minute,
		},
	}

	if path := os.Getenv("CURATION_CONFIG"); path != "" {
		if err := loadCurationFile(path, &cfg.Curation); err != nil {
			return nil, err
		}
	}

	if cfg.Curation.FeaturedCap < 1 || cfg.Curation.EditorsPickCap < 1 {
		return nil, fmt.Errorf("curation list caps must be at least 1")
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// loadCurationFile merges YAML curation settings over dst. Zero values in
// the file leave the defaults untouched.
func loadCurationFile(path string, dst *Curation) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read curation config: %w", err)
	}

	var file struct {
		FeaturedCap    int    `yaml:"featured_cap"`
		EditorsPickCap int    `yaml:"editors_pick_cap"`
		FeedCacheTTL   string `yaml:"feed_cache_ttl"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse curation config: %w", err)
	}

	if file.FeaturedCap != 0 {
		dst.FeaturedCap = file.FeaturedCap
	}
	if file.EditorsPickCap != 0 {
		dst.EditorsPickCap = file.EditorsPickCap
	}
	if file.FeedCacheTTL != "" {
		ttl, err := time.ParseDuration(file.FeedCacheTTL)
		if err != nil {
			return fmt.Errorf("parse feed_cache_ttl: %w", err)
		}
		dst.FeedCacheTTL = ttl
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
