// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

// ReloadResult describes the engine installed by ReloadCatalog.
type ReloadResult struct {
	Items      int       `json:"items"`
	Genres     int       `json:"genres"`
	Duplicates int       `json:"duplicates"`
	BuiltAt    time.Time `json:"built_at"`
}

// ReloadCatalog re-reads the catalog file and swaps in a new engine.
// Concurrent calls share one reload. On failure the current engine keeps
// serving.
func (s *Service) ReloadCatalog(ctx context.Context) (*ReloadResult, error) {
	if s.cfg.CatalogPath == "" {
		return nil, errors.New("catalog path is not configured")
	}

	ch := s.reloads.DoChan("catalog", func() (interface{}, error) {
		return s.reload()
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ReloadResult), nil
	}
}

// Reload adapts ReloadCatalog to catalog.ReloadFunc.
func (s *Service) Reload(ctx context.Context) error {
	_, err := s.ReloadCatalog(ctx)
	return err
}

func (s *Service) reload() (*ReloadResult, error) {
	start := time.Now()

	c, err := catalog.LoadFile(s.cfg.CatalogPath, s.logger)
	if err != nil {
		metrics.RecordCatalogLoad(0, time.Since(start), err)
		s.logger.Error().Err(err).Str("path", s.cfg.CatalogPath).Msg("catalog reload failed, keeping current catalog")
		return nil, err
	}
	engine, err := recommend.NewEngine(c, s.cfg.Engine, s.logger)
	if err != nil {
		metrics.RecordCatalogLoad(0, time.Since(start), err)
		return nil, fmt.Errorf("build engine: %w", err)
	}

	s.engine.Store(engine)
	metrics.RecordCatalogLoad(c.Len(), time.Since(start), nil)
	s.logger.Info().
		Int("items", c.Len()).
		Dur("duration", time.Since(start)).
		Msg("catalog reloaded")

	return &ReloadResult{
		Items:      c.Len(),
		Genres:     len(c.Genres()),
		Duplicates: c.Duplicates(),
		BuiltAt:    engine.BuiltAt(),
	}, nil
}
