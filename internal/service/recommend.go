// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package service

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
)

// GetRecommendations ranks movies for the user identified by email.
// A zero TopN selects the configured default; larger values are capped.
func (s *Service) GetRecommendations(ctx context.Context, email string, req recommend.Request) (*recommend.Response, error) {
	p, err := s.store.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.recommend(ctx, p, req)
}

// SimilarItems ranks movies similar to title without a user.
func (s *Service) SimilarItems(ctx context.Context, req recommend.Request) (*recommend.Response, error) {
	req.Mode = recommend.ModeByItem
	return s.recommend(ctx, nil, req)
}

func (s *Service) recommend(ctx context.Context, p *models.UserProfile, req recommend.Request) (*recommend.Response, error) {
	topN, err := s.topN(req.TopN)
	if err != nil {
		return nil, err
	}
	req.TopN = topN
	if req.RequestID == "" {
		req.RequestID = logging.RequestIDFromContext(ctx)
	}

	start := time.Now()
	resp, err := s.Engine().Recommend(ctx, p, req)

	spaceLabel := string(req.Space)
	results := 0
	if resp != nil {
		spaceLabel = resp.Metadata.Space
		results = len(resp.Items)
	}
	if spaceLabel == "" {
		spaceLabel = "default"
	}
	metrics.RecordRecommendation(req.Mode.String(), spaceLabel, results, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) topN(n int) (int, error) {
	switch {
	case n < 0:
		return 0, models.NewValidationError("top_n", n, "must be positive")
	case n == 0:
		return s.cfg.DefaultTopN, nil
	case n > s.cfg.MaxTopN:
		return s.cfg.MaxTopN, nil
	default:
		return n, nil
	}
}
