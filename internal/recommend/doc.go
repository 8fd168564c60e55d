// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend implements the scoring engine behind Marquee.
//
// # Strategies
//
//   - by-item: movies closest to one given movie in the categorical or
//     lexical space, excluding the movie itself.
//   - by-profile: unrated movies closest to the user's genre weights,
//     placed on the genre columns of the categorical space.
//   - by-high-ratings: by-item results for every movie the user rated at
//     or above the threshold, merged in catalog order with the first
//     occurrence of each title kept.
//   - genre-score: unrated movies ranked by the plain sum of the user's
//     weights over each movie's genres.
//
// Scores are cosine similarities in [0, 1] (genre-score excepted). Ties
// keep catalog load order, so identical inputs always produce identical
// output.
//
// # Genre weights
//
// A rating of r adds r to the weight of every genre of the rated movie; a
// favorite-genre pick adds one. Under AccumulationRecompute the weights
// are rebuilt from the stored history on each change, so re-rating a
// movie replaces its earlier contribution. AccumulationIncremental keeps
// the running sum and never subtracts.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cat, recommend.DefaultConfig(), logger)
//	if err := engine.ApplyRating(profile, "Heat", 5); err != nil { ... }
//	resp, err := engine.Recommend(ctx, profile, recommend.Request{
//	    Mode: recommend.ModeByProfile,
//	    TopN: 10,
//	})
//
// # Thread Safety
//
// An Engine never changes after NewEngine returns. Profiles passed to
// ApplyRating and AddFavoriteGenres are mutated in place; callers
// serialize access to a given profile.
package recommend
