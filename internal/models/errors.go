// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching. The typed errors below match them.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrAuth          = errors.New("authentication failed")
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationError reports input that is malformed or out of range.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a lookup of an unknown user or catalog item.
type NotFoundError struct {
	Kind string // "user" or "movie"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AuthError reports failed credentials. It never says whether the
// identifier or the secret was wrong.
type AuthError struct{}

func (e *AuthError) Error() string { return "invalid credentials" }

// Is reports whether target is ErrAuth.
func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// AlreadyExistsError reports a duplicate registration.
type AlreadyExistsError struct {
	Kind string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Key)
}

// Is reports whether target is ErrAlreadyExists.
func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// NewValidationError builds a ValidationError.
func NewValidationError(field string, value interface{}, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(kind, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: key}
}

// NewAlreadyExistsError builds an AlreadyExistsError.
func NewAlreadyExistsError(kind, key string) *AlreadyExistsError {
	return &AlreadyExistsError{Kind: kind, Key: key}
}

// IsExpected reports whether err belongs to the client-facing taxonomy
// (validation, not found, auth, already exists) rather than an
// infrastructure failure.
func IsExpected(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAuth) ||
		errors.Is(err, ErrAlreadyExists)
}
