// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"sort"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/recommend/space"
)

// RankBySimilarity scores every catalog item against ref by cosine
// similarity and returns at most topN items ordered by descending score.
// Items whose normalized title is in exclude are dropped before
// truncation. Equal scores keep catalog order.
func RankBySimilarity(s *space.Space, ref []float64, exclude map[string]struct{}, topN int) []ScoredItem {
	if topN <= 0 || s == nil || s.Empty() {
		return []ScoredItem{}
	}

	c := s.Catalog()
	scored := make([]ScoredItem, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		it := c.At(i)
		if _, skip := exclude[it.Key()]; skip {
			continue
		}
		scored = append(scored, ScoredItem{
			Item:  *it,
			Score: space.Cosine(ref, s.Row(i)),
		})
	}
	return topScored(scored, topN)
}

// rankByGenreScore scores each catalog item by the sum of weights over
// its genres.
func rankByGenreScore(c *catalog.Catalog, weights map[string]float64, exclude map[string]struct{}, topN int) []ScoredItem {
	if topN <= 0 || len(weights) == 0 {
		return []ScoredItem{}
	}

	scored := make([]ScoredItem, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		it := c.At(i)
		if _, skip := exclude[it.Key()]; skip {
			continue
		}
		var score float64
		for _, g := range it.Genres {
			score += weights[g]
		}
		scored = append(scored, ScoredItem{Item: *it, Score: score})
	}
	return topScored(scored, topN)
}

func topScored(scored []ScoredItem, topN int) []ScoredItem {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}
