// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package service combines the user store and the recommendation engine
// into the operations exposed to clients: registration, login, rating,
// favorite genres, recommendations and catalog reloads.
//
// User mutations run under a per-email lock so concurrent requests for
// the same user cannot lose updates. The engine is swapped atomically on
// reload; in-flight requests finish against the engine they started with.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/users"
)

// Config controls service behaviour.
type Config struct {
	// CatalogPath is re-read by ReloadCatalog.
	CatalogPath string

	// BcryptCost is the work factor for new password hashes.
	BcryptCost int

	// DefaultTopN applies when a request leaves TopN at zero.
	DefaultTopN int

	// MaxTopN caps TopN.
	MaxTopN int

	// Engine configures engines built on reload.
	Engine *recommend.Config
}

// Service is safe for concurrent use.
type Service struct {
	cfg     Config
	store   users.Store
	locks   *users.Locker
	engine  atomic.Pointer[recommend.Engine]
	reloads singleflight.Group
	logger  zerolog.Logger
	now     func() time.Time

	// dummyHash is compared against on unknown-user logins so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// New returns a Service serving engine and persisting through store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, store users.Store, engine *recommend.Engine, logger zerolog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("user store is nil")
	}
	if engine == nil {
		return nil, errors.New("engine is nil")
	}
	if cfg.DefaultTopN < 1 {
		cfg.DefaultTopN = 10
	}
	if cfg.MaxTopN < cfg.DefaultTopN {
		cfg.MaxTopN = cfg.DefaultTopN
	}
	if cfg.Engine == nil {
		cfg.Engine = engine.Config()
	}

	dummy, err := users.HashPassword("marquee-dummy-password", cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	s := &Service{
		cfg:       cfg,
		store:     store,
		locks:     users.NewLocker(),
		logger:    logger.With().Str("component", "service").Logger(),
		now:       time.Now,
		dummyHash: dummy,
	}
	s.engine.Store(engine)
	return s, nil
}

// Engine returns the engine currently serving requests.
func (s *Service) Engine() *recommend.Engine {
	return s.engine.Load()
}

// Genres lists the catalog's genres in first-seen order.
func (s *Service) Genres() []string {
	return s.Engine().Catalog().Genres()
}

// Ping checks the user store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	_, err := s.store.List(ctx)
	return err
}
