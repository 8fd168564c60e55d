// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend/space"
)

// Engine ranks catalog items for a profile. It holds one catalog and the
// categorical and lexical spaces built from it. An Engine is immutable
// after NewEngine and safe for concurrent use; a catalog reload builds a
// new Engine.
type Engine struct {
	config      *Config
	logger      zerolog.Logger
	catalog     *catalog.Catalog
	categorical *space.Space
	lexical     *space.Space
	builtAt     time.Time
}

// NewEngine validates cfg and builds both similarity spaces over c.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(c *catalog.Catalog, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	categorical, err := space.Build(c, space.Options{Mode: space.ModeCategorical, Fields: cfg.CategoricalFields})
	if err != nil {
		return nil, fmt.Errorf("build categorical space: %w", err)
	}
	lexical, err := space.Build(c, space.Options{Mode: space.ModeLexical, MaxFeatures: cfg.MaxFeatures})
	if err != nil {
		return nil, fmt.Errorf("build lexical space: %w", err)
	}

	e := &Engine{
		config:      cfg,
		logger:      logger.With().Str("component", "recommend").Logger(),
		catalog:     c,
		categorical: categorical,
		lexical:     lexical,
		builtAt:     time.Now(),
	}
	e.logger.Info().
		Int("items", c.Len()).
		Int("categorical_dims", categorical.Dims()).
		Int("lexical_dims", lexical.Dims()).
		Msg("similarity spaces built")
	return e, nil
}

// Catalog returns the catalog the engine ranks over.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Config returns the engine configuration.
func (e *Engine) Config() *Config { return e.config }

// BuiltAt returns when the spaces were built.
func (e *Engine) BuiltAt() time.Time { return e.builtAt }

// Space returns the space for mode; empty selects the default.
func (e *Engine) Space(mode space.Mode) (*space.Space, error) {
	if mode == "" {
		mode = e.config.DefaultSpace
	}
	switch mode {
	case space.ModeCategorical:
		return e.categorical, nil
	case space.ModeLexical:
		return e.lexical, nil
	default:
		return nil, models.NewValidationError("space", string(mode), "must be %q or %q", space.ModeCategorical, space.ModeLexical)
	}
}

// ApplyRating records a rating on p using the engine's catalog and
// accumulation policy.
func (e *Engine) ApplyRating(p *models.UserProfile, title string, rating int) error {
	return ApplyRating(p, e.catalog, title, rating, e.config.Accumulation)
}

// AddFavoriteGenres records favorite genre picks on p.
func (e *Engine) AddFavoriteGenres(p *models.UserProfile, genres []string) error {
	return AddFavoriteGenres(p, e.catalog, genres, e.config.Accumulation)
}

// Recommend produces a ranked list for req. p may be nil for ModeByItem.
// The same inputs always produce the same ordered output.
func (e *Engine) Recommend(ctx context.Context, p *models.UserProfile, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("mode", req.Mode.String()).
		Int("top_n", req.TopN).
		Logger()

	if req.Mode != ModeByItem && p == nil {
		return nil, models.NewValidationError("profile", nil, "mode %s requires a user profile", req.Mode)
	}

	var (
		items        []ScoredItem
		spaceUsed    space.Mode
		insufficient bool
		err          error
	)

	switch req.Mode {
	case ModeByItem:
		spaceUsed, items, err = e.byItem(req.Title, req.Space, req.TopN)
	case ModeByProfile:
		spaceUsed = space.ModeCategorical
		items, insufficient = e.byProfile(p, req.TopN)
	case ModeByHighRatings:
		spaceUsed, items, insufficient, err = e.byHighRatings(p, req.Space, req.TopN)
	case ModeGenreScore:
		insufficient = len(p.GenrePreference) == 0
		items = rankByGenreScore(e.catalog, p.GenrePreference, ratedSet(p), req.TopN)
	default:
		err = models.NewValidationError("mode", int(req.Mode), "unknown recommendation mode")
	}
	if err != nil {
		logger.Debug().Err(err).Msg("recommendation failed")
		return nil, err
	}

	resp := &Response{
		Items: items,
		Metadata: ResponseMetadata{
			RequestID:        req.RequestID,
			Mode:             req.Mode.String(),
			Space:            string(spaceUsed),
			InsufficientData: insufficient,
			CatalogSize:      e.catalog.Len(),
			LatencyMS:        time.Since(start).Milliseconds(),
			Timestamp:        time.Now(),
		},
	}

	logger.Debug().
		Int("returned", len(items)).
		Bool("insufficient_data", insufficient).
		Msg("recommendation complete")
	return resp, nil
}

func (e *Engine) byItem(title string, mode space.Mode, topN int) (space.Mode, []ScoredItem, error) {
	s, err := e.Space(mode)
	if err != nil {
		return "", nil, err
	}
	item, idx, ok := e.catalog.Lookup(title)
	if !ok {
		return s.Mode(), nil, models.NewNotFoundError("movie", title)
	}
	if s.Empty() {
		return s.Mode(), []ScoredItem{}, nil
	}
	exclude := map[string]struct{}{item.Key(): {}}
	return s.Mode(), RankBySimilarity(s, s.Row(idx), exclude, topN), nil
}

// byProfile places the genre weights on the genre columns of the
// categorical space and excludes every rated title. A reference with no
// weight on any column (no preferences, genre not among the categorical
// fields, or only genres the catalog no longer has) is insufficient data.
func (e *Engine) byProfile(p *models.UserProfile, topN int) ([]ScoredItem, bool) {
	if len(p.GenrePreference) == 0 {
		return []ScoredItem{}, true
	}
	ref := e.categorical.WeightedVector(space.FieldGenre, p.GenrePreference)
	if space.Norm(ref) == 0 {
		return []ScoredItem{}, true
	}
	return RankBySimilarity(e.categorical, ref, ratedSet(p), topN), false
}

// byHighRatings walks the catalog in load order, runs byItem for each
// movie rated at or above the threshold and merges the results, keeping
// the first occurrence of each title.
func (e *Engine) byHighRatings(p *models.UserProfile, mode space.Mode, topN int) (space.Mode, []ScoredItem, bool, error) {
	s, err := e.Space(mode)
	if err != nil {
		return "", nil, false, err
	}

	merged := []ScoredItem{}
	seen := make(map[string]struct{})
	seeds := 0
	for i := 0; i < e.catalog.Len(); i++ {
		it := e.catalog.At(i)
		key := it.Key()
		if _, idx, _ := e.catalog.Lookup(key); idx != i {
			continue
		}
		if r, ok := p.Ratings[key]; !ok || r < e.config.HighRatingThreshold {
			continue
		}
		seeds++

		_, similar, err := e.byItem(it.Title, s.Mode(), topN)
		if err != nil {
			return "", nil, false, err
		}
		for _, si := range similar {
			k := si.Item.Key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			si.Source = it.Title
			merged = append(merged, si)
		}
	}

	if topN <= 0 {
		merged = merged[:0]
	} else if len(merged) > topN {
		merged = merged[:topN]
	}
	return s.Mode(), merged, seeds == 0, nil
}

func ratedSet(p *models.UserProfile) map[string]struct{} {
	set := make(map[string]struct{}, len(p.Ratings))
	for k := range p.Ratings {
		set[catalog.NormalizeTitle(k)] = struct{}{}
	}
	return set
}
