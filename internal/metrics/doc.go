// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package metrics provides Prometheus metrics for the recommendation service.

Collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Recommendations:
  - recommendations_total{mode, space, outcome}
  - recommendation_duration_seconds{mode}
  - recommendation_result_size

Users:
  - ratings_total{outcome}
  - user_registrations_total{outcome}
  - auth_attempts_total{outcome}
  - user_store_operation_duration_seconds{backend, operation}
  - user_store_errors_total{backend, operation}

Catalog:
  - catalog_items
  - catalog_reloads_total{outcome}
  - catalog_last_reload_timestamp_seconds
  - catalog_build_duration_seconds

Endpoint labels use the chi route pattern (e.g. /api/v1/users/{email}/ratings)
so label cardinality stays bounded by the number of routes.
*/
package metrics
