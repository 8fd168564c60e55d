// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	})
}

// respondError sends an error response. err is logged, never returned to
// the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}
	respondAPIError(w, r, status, &models.APIError{Code: code, Message: message})
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: apiErr,
	})
}

// respondServiceError maps the error taxonomy to HTTP statuses:
// validation 400, auth 401, not found 404, already exists 409,
// everything else 500 with a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr   *validation.RequestValidationError
		valErr   *models.ValidationError
		notFound *models.NotFoundError
	)
	switch {
	case errors.As(err, &reqErr):
		respondAPIError(w, r, http.StatusBadRequest, reqErr.ToAPIError())
	case errors.As(err, &valErr):
		apiErr := &models.APIError{Code: models.CodeValidation, Message: valErr.Error()}
		if valErr.Field != "" {
			apiErr.Details = map[string]interface{}{"field": valErr.Field}
		}
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
	case errors.Is(err, models.ErrAuth):
		respondError(w, r, http.StatusUnauthorized, models.CodeAuth, "Invalid email or password", nil)
	case errors.As(err, &notFound):
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, notFound.Error(), nil)
	case errors.Is(err, models.ErrNotFound):
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Not found", nil)
	case errors.Is(err, models.ErrAlreadyExists):
		respondError(w, r, http.StatusConflict, models.CodeAlreadyExists, err.Error(), nil)
	default:
		respondError(w, r, http.StatusInternalServerError, models.CodeInternal, "Internal server error", err)
	}
}

// decodeJSON reads a single JSON object from the request body into v.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			respondError(w, r, http.StatusRequestEntityTooLarge, models.CodeBadRequest, "Request body too large", nil)
			return false
		}
		respondError(w, r, http.StatusBadRequest, models.CodeBadRequest, "Failed to read request body", err)
		return false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		respondError(w, r, http.StatusBadRequest, models.CodeBadRequest, "Request body is required", nil)
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, models.CodeBadRequest, "Invalid JSON body", err)
		return false
	}
	return true
}

// getIntParam parses an integer query parameter. A missing parameter
// yields defaultValue; a malformed one is reported as a validation error.
func getIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, models.NewValidationError(key, value, "must be an integer")
	}
	return n, nil
}
