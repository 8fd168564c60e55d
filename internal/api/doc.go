// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api provides the HTTP interface built on the chi router.

# Endpoints

	POST /api/v1/users                               register
	POST /api/v1/auth/login                          authenticate
	GET  /api/v1/users/{email}                       profile (no password hash)
	POST /api/v1/users/{email}/ratings               {"title": "...", "rating": 1-5}
	POST /api/v1/users/{email}/favorite-genres       {"genres": ["..."]}
	GET  /api/v1/users/{email}/recommendations       ?mode=&title=&space=&top_n=
	GET  /api/v1/catalog/genres                      genre list
	GET  /api/v1/catalog/items/{title}/similar       ?space=&top_n=
	POST /api/v1/catalog/reload                      re-read the catalog file
	GET  /api/v1/health                              liveness and store check
	GET  /metrics                                    Prometheus

# Response Envelope

Every endpoint except /metrics returns models.APIResponse:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "request_id": "..."}}
	{"status": "error", "data": null, "error": {"code": "NOT_FOUND", "message": "..."}}

# Error Mapping

	VALIDATION_ERROR      400
	AUTHENTICATION_ERROR  401
	NOT_FOUND             404
	ALREADY_EXISTS        409
	RATE_LIMIT_EXCEEDED   429
	INTERNAL_ERROR        500

Login is rate limited per IP more strictly than the rest of the API.
*/
package api
