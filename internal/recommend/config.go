// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"

	"github.com/tomtom215/marquee/internal/recommend/space"
)

// Accumulation controls how genre weights react to a rating.
type Accumulation string

const (
	// AccumulationRecompute rebuilds genre weights from the full rating
	// history and favorite picks on every change. Re-rating a movie
	// replaces its contribution.
	AccumulationRecompute Accumulation = "recompute"

	// AccumulationIncremental adds the rating to each genre's weight and
	// never subtracts. Re-rating a movie adds its genres again.
	AccumulationIncremental Accumulation = "incremental"
)

// Config contains engine configuration.
type Config struct {
	// Accumulation selects the genre weight update policy.
	Accumulation Accumulation `json:"accumulation"`

	// DefaultSpace is used when a request leaves Space empty.
	DefaultSpace space.Mode `json:"default_space"`

	// CategoricalFields lists the fields concatenated into the
	// categorical space, in column order.
	CategoricalFields []string `json:"categorical_fields"`

	// MaxFeatures caps the lexical vocabulary.
	MaxFeatures int `json:"max_features"`

	// HighRatingThreshold is the minimum rating that seeds
	// ModeByHighRatings.
	HighRatingThreshold int `json:"high_rating_threshold"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Accumulation:        AccumulationRecompute,
		DefaultSpace:        space.ModeCategorical,
		CategoricalFields:   append([]string(nil), space.DefaultFields...),
		MaxFeatures:         space.DefaultMaxFeatures,
		HighRatingThreshold: 4,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Accumulation {
	case AccumulationRecompute, AccumulationIncremental:
	default:
		return fmt.Errorf("accumulation must be %q or %q, got %q",
			AccumulationRecompute, AccumulationIncremental, c.Accumulation)
	}
	if _, err := space.ParseMode(string(c.DefaultSpace)); err != nil {
		return fmt.Errorf("default_space: %w", err)
	}
	for _, f := range c.CategoricalFields {
		if !space.ValidField(f) {
			return fmt.Errorf("categorical_fields: unknown field %q", f)
		}
	}
	if c.MaxFeatures < 1 {
		return fmt.Errorf("max_features must be positive, got %d", c.MaxFeatures)
	}
	if c.HighRatingThreshold < MinRating || c.HighRatingThreshold > MaxRating {
		return fmt.Errorf("high_rating_threshold must be in [%d, %d], got %d",
			MinRating, MaxRating, c.HighRatingThreshold)
	}
	return nil
}
