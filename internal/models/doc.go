// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package models defines the types shared across Marquee's layers.

  - UserProfile: persisted user with ratings, genre preferences and favorites
  - PublicProfile: the profile as returned by the API, without the password hash
  - APIResponse, APIError: the JSON envelope for every API response
  - ValidationError, NotFoundError, AuthError, AlreadyExistsError: the error
    taxonomy, each matching its sentinel through errors.Is

The API layer maps the taxonomy to HTTP status codes; stores and the service
return these types so callers never need to inspect error strings.
*/
package models
