// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides HTTP middleware shared by the API router.

Every middleware has the chi signature func(http.Handler) http.Handler:

  - RequestID: X-Request-ID propagation into the logging context
  - AccessLog: one zerolog line per request
  - PrometheusMetrics: request count, latency and in-flight gauge,
    labelled by chi route pattern
  - MaxBodyBytes: request body size cap

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.MaxBodyBytes(1 << 20))
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics reads the route pattern after the handler returns, so it
must be installed on a chi router rather than wrapped around one.
*/
package middleware
