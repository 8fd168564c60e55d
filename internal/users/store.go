// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package users persists user profiles keyed by email.
//
// Two backends implement Store: FileStore keeps every profile in a single
// JSON document and BadgerStore keeps one key per user in BadgerDB. Stores
// return deep copies, so callers may mutate a returned profile freely and
// persist it with Update. Read-modify-write cycles must be serialized by
// the caller with a Locker.
package users

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

const userKind = "user"

// Store is a keyed profile store.
type Store interface {
	// Get returns the profile for email or a NotFoundError.
	Get(ctx context.Context, email string) (*models.UserProfile, error)

	// Create inserts a new profile. An existing email yields an
	// AlreadyExistsError and the stored record is left untouched.
	Create(ctx context.Context, p *models.UserProfile) error

	// Update replaces an existing profile or returns a NotFoundError.
	Update(ctx context.Context, p *models.UserProfile) error

	// List returns every profile ordered by email.
	List(ctx context.Context) ([]*models.UserProfile, error)

	Close() error
}

// Open returns the store for backend rooted at path.
func Open(backend, path string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch backend {
	case BackendFile, "":
		s, err = NewFileStore(path)
	case BackendBadger:
		s, err = OpenBadgerStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	if backend == "" {
		backend = BackendFile
	}
	return &instrumented{next: s, backend: backend}, nil
}

// key validates and normalizes an email for use as a store key.
func key(email string) (string, error) {
	k := models.NormalizeEmail(email)
	if k == "" {
		return "", models.NewValidationError("email", email, "email is required")
	}
	return k, nil
}

// prepare returns a normalized copy of p ready to be persisted.
func prepare(p *models.UserProfile) (*models.UserProfile, error) {
	if p == nil {
		return nil, models.NewValidationError("profile", nil, "profile is required")
	}
	k, err := key(p.Email)
	if err != nil {
		return nil, err
	}
	c := p.Clone()
	c.Email = k
	c.EnsureMaps()
	return c, nil
}

// instrumented records per-operation metrics around a Store.
type instrumented struct {
	next    Store
	backend string
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	// Lookups of unknown users are expected traffic, not store failures.
	if models.IsExpected(err) {
		err = nil
	}
	metrics.RecordStoreOperation(s.backend, op, time.Since(start), err)
}

func (s *instrumented) Get(ctx context.Context, email string) (p *models.UserProfile, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, email)
}

func (s *instrumented) Create(ctx context.Context, p *models.UserProfile) (err error) {
	defer func(start time.Time) { s.observe("create", start, err) }(time.Now())
	return s.next.Create(ctx, p)
}

func (s *instrumented) Update(ctx context.Context, p *models.UserProfile) (err error) {
	defer func(start time.Time) { s.observe("update", start, err) }(time.Now())
	return s.next.Update(ctx, p)
}

func (s *instrumented) List(ctx context.Context) (ps []*models.UserProfile, err error) {
	defer func(start time.Time) { s.observe("list", start, err) }(time.Now())
	return s.next.List(ctx)
}

func (s *instrumented) Close() error {
	return s.next.Close()
}

// Collector is implemented by backends that need periodic garbage collection.
type Collector interface {
	RunGC(ctx context.Context) error
}

// AsCollector returns the garbage-collecting backend behind s, if any.
func AsCollector(s Store) (Collector, bool) {
	if in, ok := s.(*instrumented); ok {
		if _, ok := in.next.(Collector); !ok {
			return nil, false
		}
		return in, true
	}
	c, ok := s.(Collector)
	return c, ok
}

func (s *instrumented) RunGC(ctx context.Context) (err error) {
	c, ok := s.next.(Collector)
	if !ok {
		return nil
	}
	defer func(start time.Time) { s.observe("gc", start, err) }(time.Now())
	return c.RunGC(ctx)
}
