// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"WEBLAB_DB_PATH" envDefault:"./data/weblab.db"`
	SessionSecret string `env:"WEBLAB_SESSION_SECRET,required"`
	ServerHost    string `env:"WEBLAB_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"WEBLAB_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"WEBLAB_ENV" envDefault:"development"`
	LogLevel      string `env:"WEBLAB_LOG_LEVEL" envDefault:"info"`

	// Stats cache configuration
	RedisURL      string `env:"WEBLAB_REDIS_URL"`                      // Optional Redis URL for the stats cache
	CachePrefix   string `env:"WEBLAB_CACHE_PREFIX" envDefault:"weblab:"` // Redis key prefix
	StatsCacheTTL int    `env:"WEBLAB_STATS_CACHE_TTL" envDefault:"60"`   // Stats cache TTL in seconds

	// GeoIP configuration
	GeoIPDBPath string `env:"WEBLAB_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Visit log retention; 0 keeps logs forever
	VisitRetentionDays int `env:"WEBLAB_VISIT_RETENTION_DAYS" envDefault:"0"`

	// Seeding configuration
	SeedDemoUsers bool `env:"WEBLAB_SEED_DEMO_USERS" envDefault:"false"` // Create admin/user demo accounts
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("WEBLAB_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	return cfg, nil
}
