// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/models"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRating returns a ValidationError unless rating is in [1, 5].
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return models.NewValidationError("rating", rating, "must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}

// ApplyRating records rating for title on p and updates p's genre weights
// according to acc. The profile is left untouched when it returns an error.
func ApplyRating(p *models.UserProfile, c *catalog.Catalog, title string, rating int, acc Accumulation) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	item, _, ok := c.Lookup(title)
	if !ok {
		return models.NewNotFoundError("movie", title)
	}

	p.EnsureMaps()
	p.Ratings[item.Key()] = rating

	if acc == AccumulationIncremental {
		for _, g := range item.Genres {
			p.GenrePreference[g] += float64(rating)
		}
		return nil
	}
	RebuildGenrePreference(p, c)
	return nil
}

// AddFavoriteGenres adds one to the weight of each selected genre.
// Every genre must appear in the catalog; otherwise nothing changes and a
// ValidationError is returned.
func AddFavoriteGenres(p *models.UserProfile, c *catalog.Catalog, genres []string, acc Accumulation) error {
	if len(genres) == 0 {
		return models.NewValidationError("genres", genres, "at least one genre is required")
	}
	for _, g := range genres {
		if !c.HasGenre(g) {
			return models.NewValidationError("genres", g, "unknown genre %q", g)
		}
	}

	p.EnsureMaps()
	for _, g := range genres {
		p.FavoriteGenres[g]++
	}

	if acc == AccumulationIncremental {
		for _, g := range genres {
			p.GenrePreference[g]++
		}
		return nil
	}
	RebuildGenrePreference(p, c)
	return nil
}

// RebuildGenrePreference recomputes p.GenrePreference from scratch: each
// rated movie contributes its rating to each of its genres, and each
// favorite pick contributes one. Ratings for titles no longer in the
// catalog contribute nothing.
func RebuildGenrePreference(p *models.UserProfile, c *catalog.Catalog) {
	pref := make(map[string]float64)
	for key, rating := range p.Ratings {
		item, _, ok := c.Lookup(key)
		if !ok {
			continue
		}
		for _, g := range item.Genres {
			pref[g] += float64(rating)
		}
	}
	for g, n := range p.FavoriteGenres {
		pref[g] += float64(n)
	}
	p.GenrePreference = pref
}
