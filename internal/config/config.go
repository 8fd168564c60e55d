// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads Marquee configuration.
//
// Settings are layered with Koanf: built-in defaults first, then an optional
// YAML file, then environment variables. See LoadWithKoanf.
package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/space"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Store     StoreConfig     `koanf:"store"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds request limiting and credential settings.
type SecurityConfig struct {
	RateLimitReqs      int           `koanf:"rate_limit_reqs"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled  bool          `koanf:"rate_limit_disabled"`
	LoginRateLimitReqs int           `koanf:"login_rate_limit_reqs"`
	CORSOrigins        []string      `koanf:"cors_origins"`
	BcryptCost         int           `koanf:"bcrypt_cost"`
	MaxBodyBytes       int64         `koanf:"max_body_bytes"`
}

// CatalogConfig locates the movie catalog.
type CatalogConfig struct {
	Path     string        `koanf:"path"`
	Watch    bool          `koanf:"watch"`
	Debounce time.Duration `koanf:"debounce"`
}

// StoreConfig selects the user store backend.
type StoreConfig struct {
	// Backend is "file" (single JSON document) or "badger".
	Backend string `koanf:"backend"`
	// Path is the JSON file for "file" or the directory for "badger".
	Path string `koanf:"path"`
	// GCInterval is how often badger value log GC runs. Zero disables it.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// RecommendConfig holds engine settings.
type RecommendConfig struct {
	Accumulation        string   `koanf:"accumulation"`
	DefaultSpace        string   `koanf:"default_space"`
	DefaultTopN         int      `koanf:"default_top_n"`
	MaxTopN             int      `koanf:"max_top_n"`
	MaxFeatures         int      `koanf:"max_features"`
	CategoricalFields   []string `koanf:"categorical_fields"`
	HighRatingThreshold int      `koanf:"high_rating_threshold"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Store backends.
const (
	StoreBackendFile   = "file"
	StoreBackendBadger = "badger"
)

// Load is the entry point used by main.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EngineConfig converts the recommend section into an engine config.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Accumulation = recommend.Accumulation(r.Accumulation)
	cfg.DefaultSpace = space.Mode(r.DefaultSpace)
	cfg.MaxFeatures = r.MaxFeatures
	cfg.HighRatingThreshold = r.HighRatingThreshold
	if len(r.CategoricalFields) > 0 {
		cfg.CategoricalFields = append([]string(nil), r.CategoricalFields...)
	}
	return cfg
}

// LoggingOptions converts the logging section for logging.Init.
func (l *LoggingConfig) LoggingOptions() logging.Config {
	opts := logging.DefaultConfig()
	opts.Level = l.Level
	opts.Format = l.Format
	opts.Caller = l.Caller
	return opts
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.LoginRateLimitReqs < 1 {
			return fmt.Errorf("security.login_rate_limit_reqs must be positive, got %d", c.Security.LoginRateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %v", c.Security.RateLimitWindow)
		}
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("security.bcrypt_cost must be in [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Security.BcryptCost)
	}
	if c.Security.MaxBodyBytes < 1 {
		return fmt.Errorf("security.max_body_bytes must be positive, got %d", c.Security.MaxBodyBytes)
	}

	if strings.TrimSpace(c.Catalog.Path) == "" {
		return fmt.Errorf("catalog.path is required")
	}

	switch c.Store.Backend {
	case StoreBackendFile, StoreBackendBadger:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", StoreBackendFile, StoreBackendBadger, c.Store.Backend)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Store.GCInterval < 0 {
		return fmt.Errorf("store.gc_interval must not be negative, got %v", c.Store.GCInterval)
	}

	if c.Recommend.DefaultTopN < 1 {
		return fmt.Errorf("recommend.default_top_n must be positive, got %d", c.Recommend.DefaultTopN)
	}
	if c.Recommend.MaxTopN < c.Recommend.DefaultTopN {
		return fmt.Errorf("recommend.max_top_n must be >= recommend.default_top_n, got %d < %d",
			c.Recommend.MaxTopN, c.Recommend.DefaultTopN)
	}
	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
