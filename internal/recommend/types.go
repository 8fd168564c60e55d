// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/recommend/space"
)

// Mode selects the recommendation strategy.
type Mode int

const (
	// ModeByItem ranks movies similar to one given movie.
	ModeByItem Mode = iota
	// ModeByProfile ranks unrated movies against the user's genre weights.
	ModeByProfile
	// ModeByHighRatings merges ModeByItem results for every movie the
	// user rated at or above the high-rating threshold.
	ModeByHighRatings
	// ModeGenreScore ranks unrated movies by the sum of the user's
	// weights for their genres.
	ModeGenreScore
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeByItem:
		return "by-item"
	case ModeByProfile:
		return "by-profile"
	case ModeByHighRatings:
		return "by-high-ratings"
	case ModeGenreScore:
		return "genre-score"
	default:
		return "unknown"
	}
}

// ParseMode converts a wire name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "by-item":
		return ModeByItem, nil
	case "by-profile":
		return ModeByProfile, nil
	case "by-high-ratings":
		return ModeByHighRatings, nil
	case "genre-score":
		return ModeGenreScore, nil
	default:
		return 0, fmt.Errorf("unknown recommendation mode %q", s)
	}
}

// Request describes one recommendation query.
type Request struct {
	// Mode selects the strategy.
	Mode Mode `json:"mode"`

	// Title is the reference movie for ModeByItem.
	Title string `json:"title,omitempty"`

	// Space selects the similarity space for ModeByItem and
	// ModeByHighRatings. Empty means Config.DefaultSpace. ModeByProfile
	// always uses the categorical space.
	Space space.Mode `json:"space,omitempty"`

	// TopN bounds the result length. Zero or negative yields no results.
	TopN int `json:"top_n"`

	// RequestID is echoed in the response metadata.
	RequestID string `json:"request_id,omitempty"`
}

// ScoredItem is a movie with its similarity score.
type ScoredItem struct {
	Item  catalog.Item `json:"item"`
	Score float64      `json:"score"`

	// Source is the rated movie that produced this result in
	// ModeByHighRatings.
	Source string `json:"source,omitempty"`
}

// Response is an ordered recommendation list.
type Response struct {
	Items    []ScoredItem     `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a Response was produced.
type ResponseMetadata struct {
	RequestID string `json:"request_id,omitempty"`
	Mode      string `json:"mode"`
	Space     string `json:"space,omitempty"`

	// InsufficientData is set when the profile carried nothing to rank
	// against, e.g. no ratings and no favorite genres.
	InsufficientData bool `json:"insufficient_data,omitempty"`

	CatalogSize int       `json:"catalog_size"`
	LatencyMS   int64     `json:"latency_ms"`
	Timestamp   time.Time `json:"timestamp"`
}
