// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package config loads and validates Marquee configuration.

# Sources

Configuration is layered with Koanf, later sources overriding earlier ones:

 1. Built-in defaults
 2. YAML file (CONFIG_PATH, default ./config.yaml; optional)
 3. Environment variables

# Environment Variables

	HTTP_HOST, HTTP_PORT, SERVER_TIMEOUT, SERVER_SHUTDOWN_GRACE
	CATALOG_PATH, CATALOG_WATCH, CATALOG_RELOAD_DEBOUNCE
	STORE_BACKEND (file|badger), STORE_PATH, STORE_GC_INTERVAL
	RECOMMEND_ACCUMULATION (recompute|incremental)
	RECOMMEND_DEFAULT_SPACE (categorical|lexical)
	RECOMMEND_DEFAULT_TOP_N, RECOMMEND_MAX_TOP_N
	RECOMMEND_MAX_FEATURES, RECOMMEND_CATEGORICAL_FIELDS
	RECOMMEND_HIGH_RATING_THRESHOLD
	RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
	LOGIN_RATE_LIMIT, CORS_ORIGINS, BCRYPT_COST, MAX_REQUEST_BODY_BYTES
	LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Comma-separated values are accepted for list settings.

# Validation

Load returns an error rather than starting with a configuration the engine
or the store cannot honour. See Config.Validate.
*/
package config
