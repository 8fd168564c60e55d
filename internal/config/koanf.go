// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"golang.org/x/crypto/bcrypt"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:      100,
			RateLimitWindow:    time.Minute,
			RateLimitDisabled:  false,
			LoginRateLimitReqs: 10,
			CORSOrigins:        []string{"*"},
			BcryptCost:         bcrypt.DefaultCost,
			MaxBodyBytes:       1 << 20,
		},
		Catalog: CatalogConfig{
			Path:     "data/movies.csv",
			Watch:    true,
			Debounce: 500 * time.Millisecond,
		},
		Store: StoreConfig{
			Backend:    StoreBackendFile,
			Path:       "data/users.json",
			GCInterval: 10 * time.Minute,
		},
		Recommend: RecommendConfig{
			Accumulation:        "recompute",
			DefaultSpace:        "categorical",
			DefaultTopN:         10,
			MaxTopN:             100,
			MaxFeatures:         1000,
			CategoricalFields:   []string{"genre", "director", "collection"},
			HighRatingThreshold: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration from three layers, later layers
// overriding earlier ones:
//  1. Built-in defaults
//  2. Optional YAML file (CONFIG_PATH or the first of DefaultConfigPaths)
//  3. Environment variables listed in envMappings
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via
// environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"recommend.categorical_fields",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"server_timeout":        "server.timeout",
	"server_shutdown_grace": "server.shutdown_timeout",

	"rate_limit_requests":     "security.rate_limit_reqs",
	"rate_limit_window":       "security.rate_limit_window",
	"disable_rate_limit":      "security.rate_limit_disabled",
	"login_rate_limit":        "security.login_rate_limit_reqs",
	"cors_origins":            "security.cors_origins",
	"bcrypt_cost":             "security.bcrypt_cost",
	"max_request_body_bytes":  "security.max_body_bytes",
	"catalog_path":            "catalog.path",
	"catalog_watch":           "catalog.watch",
	"catalog_reload_debounce": "catalog.debounce",
	"store_backend":           "store.backend",
	"store_path":              "store.path",
	"store_gc_interval":       "store.gc_interval",

	"recommend_accumulation":          "recommend.accumulation",
	"recommend_default_space":         "recommend.default_space",
	"recommend_default_top_n":         "recommend.default_top_n",
	"recommend_max_top_n":             "recommend.max_top_n",
	"recommend_max_features":          "recommend.max_features",
	"recommend_categorical_fields":    "recommend.categorical_fields",
	"recommend_high_rating_threshold": "recommend.high_rating_threshold",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are skipped.
//
//   - HTTP_PORT -> server.port
//   - CATALOG_PATH -> catalog.path
//   - RECOMMEND_ACCUMULATION -> recommend.accumulation
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
