// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend/space"
)

const eps = 1e-9

// fourMovies returns A(Action,Drama), B(Action), C(Comedy), D(Comedy,Drama).
func fourMovies() *catalog.Catalog {
	return catalog.New([]catalog.Item{
		{Title: "A", Genres: []string{"Action", "Drama"}, Synopsis: "rival gangs fight over the harbor"},
		{Title: "B", Genres: []string{"Action"}, Synopsis: "gangs fight for control of the harbor"},
		{Title: "C", Genres: []string{"Comedy"}, Synopsis: "a wedding planner loses the rings"},
		{Title: "D", Genres: []string{"Comedy", "Drama"}, Synopsis: "a family wedding falls apart"},
	})
}

func newTestEngine(t *testing.T, c *catalog.Catalog, modify func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if modify != nil {
		modify(cfg)
	}
	e, err := NewEngine(c, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func newProfile() *models.UserProfile {
	p := &models.UserProfile{Email: "ana@example.com"}
	p.EnsureMaps()
	return p
}

func titles(items []ScoredItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Item.Title
	}
	return out
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(fourMovies(), &Config{}, zerolog.Nop()); err == nil {
		t.Error("expected error for zero config")
	}
	if _, err := NewEngine(nil, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for nil catalog")
	}
	if _, err := NewEngine(fourMovies(), nil, zerolog.Nop()); err != nil {
		t.Errorf("nil config should use defaults: %v", err)
	}
}

func TestProfileScenario(t *testing.T) {
	t.Parallel()

	c := catalog.New([]catalog.Item{
		{Title: "A", Genres: []string{"Action", "Drama"}},
		{Title: "B", Genres: []string{"Action"}},
		{Title: "C", Genres: []string{"Comedy"}},
	})
	e := newTestEngine(t, c, nil)
	p := newProfile()

	if err := e.ApplyRating(p, "A", 5); err != nil {
		t.Fatalf("ApplyRating: %v", err)
	}
	if p.GenrePreference["Action"] != 5 || p.GenrePreference["Drama"] != 5 {
		t.Fatalf("unexpected preference %v", p.GenrePreference)
	}

	resp, err := e.Recommend(context.Background(), p, Request{Mode: ModeByProfile, TopN: 2})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got := titles(resp.Items); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Fatalf("got %v, want [B C]", got)
	}
	if math.Abs(resp.Items[0].Score-1/math.Sqrt2) > 1e-6 {
		t.Errorf("B score = %f, want ~0.707", resp.Items[0].Score)
	}
	if resp.Items[1].Score != 0 {
		t.Errorf("C score = %f, want 0", resp.Items[1].Score)
	}
	if resp.Metadata.Space != string(space.ModeCategorical) || resp.Metadata.Mode != "by-profile" {
		t.Errorf("unexpected metadata %+v", resp.Metadata)
	}
}

func TestApplyRatingRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	p := newProfile()
	if err := e.ApplyRating(p, "B", 3); err != nil {
		t.Fatal(err)
	}
	before := p.Clone()

	for _, r := range []int{0, 6, -1} {
		err := e.ApplyRating(p, "A", r)
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("rating %d: expected validation error, got %v", r, err)
		}
		if !reflect.DeepEqual(p, before) {
			t.Errorf("rating %d mutated the profile", r)
		}
	}
}

func TestApplyRatingUnknownTitle(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	p := newProfile()
	before := p.Clone()

	err := e.ApplyRating(p, "Nope", 4)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !reflect.DeepEqual(p, before) {
		t.Error("unknown title mutated the profile")
	}
}

func TestApplyRatingNormalizesTitle(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	p := newProfile()
	if err := e.ApplyRating(p, "  d ", 4); err != nil {
		t.Fatal(err)
	}
	if p.Ratings["d"] != 4 {
		t.Errorf("expected rating under normalized key, got %v", p.Ratings)
	}
}

func TestReRatingAccumulation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		acc    Accumulation
		action float64
	}{
		{"recompute replaces", AccumulationRecompute, 3},
		{"incremental adds", AccumulationIncremental, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t, fourMovies(), func(c *Config) { c.Accumulation = tt.acc })
			p := newProfile()
			if err := e.ApplyRating(p, "A", 5); err != nil {
				t.Fatal(err)
			}
			if err := e.ApplyRating(p, "A", 3); err != nil {
				t.Fatal(err)
			}
			if p.Ratings["a"] != 3 {
				t.Errorf("last write should win, got %d", p.Ratings["a"])
			}
			if p.GenrePreference["Action"] != tt.action || p.GenrePreference["Drama"] != tt.action {
				t.Errorf("preference = %v, want %v on both genres", p.GenrePreference, tt.action)
			}
		})
	}
}

func TestAddFavoriteGenres(t *testing.T) {
	t.Parallel()

	for _, acc := range []Accumulation{AccumulationRecompute, AccumulationIncremental} {
		e := newTestEngine(t, fourMovies(), func(c *Config) { c.Accumulation = acc })
		p := newProfile()
		if err := e.ApplyRating(p, "B", 2); err != nil {
			t.Fatal(err)
		}
		if err := e.AddFavoriteGenres(p, []string{"Action", "Comedy"}); err != nil {
			t.Fatalf("%s: AddFavoriteGenres: %v", acc, err)
		}
		if p.GenrePreference["Action"] != 3 || p.GenrePreference["Comedy"] != 1 {
			t.Errorf("%s: preference = %v", acc, p.GenrePreference)
		}
		if p.FavoriteGenres["Action"] != 1 {
			t.Errorf("%s: favorites = %v", acc, p.FavoriteGenres)
		}

		before := p.Clone()
		if err := e.AddFavoriteGenres(p, []string{"Drama", "Western"}); !errors.Is(err, models.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", acc, err)
		}
		if !reflect.DeepEqual(p, before) {
			t.Errorf("%s: failed favorite pick mutated profile", acc)
		}
		if err := e.AddFavoriteGenres(p, nil); !errors.Is(err, models.ErrValidation) {
			t.Errorf("%s: expected validation error for empty list, got %v", acc, err)
		}
	}
}

func TestRebuildGenrePreferenceSkipsMissingTitles(t *testing.T) {
	t.Parallel()

	p := newProfile()
	p.Ratings["a"] = 4
	p.Ratings["gone"] = 5
	p.FavoriteGenres["Comedy"] = 2
	RebuildGenrePreference(p, fourMovies())

	want := map[string]float64{"Action": 4, "Drama": 4, "Comedy": 2}
	if !reflect.DeepEqual(p.GenrePreference, want) {
		t.Errorf("preference = %v, want %v", p.GenrePreference, want)
	}
}

func TestRankBySimilarity(t *testing.T) {
	t.Parallel()

	s, err := space.Build(fourMovies(), space.Options{Mode: space.ModeCategorical})
	if err != nil {
		t.Fatal(err)
	}

	self := RankBySimilarity(s, s.Row(0), nil, 1)
	if len(self) != 1 || self[0].Item.Title != "A" || math.Abs(self[0].Score-1) > eps {
		t.Errorf("expected A to be most similar to itself with score 1, got %+v", self)
	}

	if got := RankBySimilarity(s, s.Row(0), nil, 0); len(got) != 0 {
		t.Errorf("topN 0 returned %d items", len(got))
	}
	if got := RankBySimilarity(s, s.Row(0), nil, -3); len(got) != 0 {
		t.Errorf("negative topN returned %d items", len(got))
	}

	exclude := map[string]struct{}{"a": {}, "c": {}}
	all := RankBySimilarity(s, s.Row(0), exclude, 100)
	if got := titles(all); !reflect.DeepEqual(got, []string{"B", "D"}) {
		t.Errorf("got %v, want [B D]", got)
	}

	for n := 1; n <= 4; n++ {
		got := RankBySimilarity(s, s.Row(0), exclude, n)
		if len(got) > n {
			t.Errorf("topN %d returned %d", n, len(got))
		}
		for _, it := range got {
			if _, bad := exclude[it.Item.Key()]; bad {
				t.Errorf("excluded %s returned", it.Item.Title)
			}
		}
	}
}

func TestRankTiesKeepCatalogOrder(t *testing.T) {
	t.Parallel()

	c := catalog.New([]catalog.Item{
		{Title: "Z", Genres: []string{"Drama"}},
		{Title: "M", Genres: []string{"Drama"}},
		{Title: "A", Genres: []string{"Drama"}},
	})
	s, err := space.Build(c, space.Options{Mode: space.ModeCategorical})
	if err != nil {
		t.Fatal(err)
	}
	got := titles(RankBySimilarity(s, s.Row(0), nil, 3))
	if !reflect.DeepEqual(got, []string{"Z", "M", "A"}) {
		t.Errorf("got %v, want catalog order", got)
	}
}

func TestRankZeroReference(t *testing.T) {
	t.Parallel()

	s, err := space.Build(fourMovies(), space.Options{Mode: space.ModeCategorical})
	if err != nil {
		t.Fatal(err)
	}
	got := RankBySimilarity(s, make([]float64, s.Dims()), nil, 4)
	if len(got) != 4 {
		t.Fatalf("expected 4 items, got %d", len(got))
	}
	for _, it := range got {
		if it.Score != 0 {
			t.Errorf("zero reference should score 0, got %f", it.Score)
		}
	}
}

func TestRecommendByItem(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	ctx := context.Background()

	resp, err := e.Recommend(ctx, nil, Request{Mode: ModeByItem, Title: "a", TopN: 3})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got := titles(resp.Items); !reflect.DeepEqual(got, []string{"B", "D", "C"}) {
		t.Errorf("got %v, want [B D C]", got)
	}

	lex, err := e.Recommend(ctx, nil, Request{Mode: ModeByItem, Title: "A", Space: space.ModeLexical, TopN: 1})
	if err != nil {
		t.Fatalf("Recommend lexical: %v", err)
	}
	if got := titles(lex.Items); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("lexical got %v, want [B]", got)
	}
	if lex.Metadata.Space != string(space.ModeLexical) {
		t.Errorf("expected lexical metadata, got %q", lex.Metadata.Space)
	}

	if _, err := e.Recommend(ctx, nil, Request{Mode: ModeByItem, Title: "Missing", TopN: 3}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := e.Recommend(ctx, nil, Request{Mode: ModeByItem, Title: "A", Space: "graph", TopN: 3}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error for unknown space, got %v", err)
	}
}

func TestRecommendByProfileExcludesRated(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	p := newProfile()
	for title, r := range map[string]int{"A": 5, "C": 1} {
		if err := e.ApplyRating(p, title, r); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := e.Recommend(context.Background(), p, Request{Mode: ModeByProfile, TopN: 10})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range resp.Items {
		if _, rated := p.Ratings[it.Item.Key()]; rated {
			t.Errorf("rated title %s recommended", it.Item.Title)
		}
	}
	if len(resp.Items) != 2 {
		t.Errorf("expected 2 unrated items, got %d", len(resp.Items))
	}
}

func TestRecommendByProfileEmptyPreference(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	resp, err := e.Recommend(context.Background(), newProfile(), Request{Mode: ModeByProfile, TopN: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 0 || !resp.Metadata.InsufficientData {
		t.Errorf("expected empty insufficient response, got %+v", resp)
	}
}

func TestRecommendByProfileZeroReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		prefs  map[string]float64
	}{
		{"genre not a categorical field", func(c *Config) { c.CategoricalFields = []string{space.FieldDirector} }, map[string]float64{"Action": 5}},
		{"genres missing from catalog", nil, map[string]float64{"Western": 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := catalog.New([]catalog.Item{
				{Title: "A", Genres: []string{"Action"}, Directors: []string{"Mann"}},
				{Title: "B", Genres: []string{"Comedy"}, Directors: []string{"Reiner"}},
			})
			e := newTestEngine(t, c, tt.modify)
			p := newProfile()
			p.GenrePreference = tt.prefs

			resp, err := e.Recommend(context.Background(), p, Request{Mode: ModeByProfile, TopN: 5})
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Items) != 0 {
				t.Errorf("expected no items, got %v", titles(resp.Items))
			}
			if !resp.Metadata.InsufficientData {
				t.Error("expected insufficient_data for a zero reference vector")
			}
		})
	}
}

func TestRecommendByHighRatings(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	p := newProfile()
	for title, r := range map[string]int{"D": 5, "A": 4, "B": 2} {
		if err := e.ApplyRating(p, title, r); err != nil {
			t.Fatal(err)
		}
	}
	ctx := context.Background()

	resp, err := e.Recommend(ctx, p, Request{Mode: ModeByHighRatings, TopN: 4})
	if err != nil {
		t.Fatal(err)
	}
	// Seeds are visited in catalog order: A first, then D.
	if got := titles(resp.Items); !reflect.DeepEqual(got, []string{"B", "D", "C", "A"}) {
		t.Fatalf("got %v, want [B D C A]", got)
	}
	wantSources := []string{"A", "A", "A", "D"}
	for i, it := range resp.Items {
		if it.Source != wantSources[i] {
			t.Errorf("item %d source = %q, want %q", i, it.Source, wantSources[i])
		}
	}

	short, err := e.Recommend(ctx, p, Request{Mode: ModeByHighRatings, TopN: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := titles(short.Items); !reflect.DeepEqual(got, []string{"B", "D"}) {
		t.Errorf("got %v, want [B D]", got)
	}

	none, err := e.Recommend(ctx, newProfile(), Request{Mode: ModeByHighRatings, TopN: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(none.Items) != 0 || !none.Metadata.InsufficientData {
		t.Errorf("expected empty insufficient response, got %+v", none)
	}
}

func TestRecommendGenreScore(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	p := newProfile()
	if err := e.ApplyRating(p, "A", 5); err != nil {
		t.Fatal(err)
	}

	resp, err := e.Recommend(context.Background(), p, Request{Mode: ModeGenreScore, TopN: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got := titles(resp.Items); !reflect.DeepEqual(got, []string{"B", "D", "C"}) {
		t.Errorf("got %v, want [B D C]", got)
	}
	if resp.Items[0].Score != 5 || resp.Items[2].Score != 0 {
		t.Errorf("unexpected scores %+v", resp.Items)
	}
}

func TestRecommendIsIdempotent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	p := newProfile()
	if err := e.ApplyRating(p, "A", 5); err != nil {
		t.Fatal(err)
	}
	if err := e.ApplyRating(p, "D", 4); err != nil {
		t.Fatal(err)
	}

	for _, mode := range []Mode{ModeByProfile, ModeByHighRatings, ModeGenreScore} {
		req := Request{Mode: mode, TopN: 3}
		first, err := e.Recommend(context.Background(), p, req)
		if err != nil {
			t.Fatal(err)
		}
		second, err := e.Recommend(context.Background(), p, req)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first.Items, second.Items) {
			t.Errorf("%s: outputs differ between calls", mode)
		}
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, catalog.New(nil), nil)
	p := newProfile()
	p.GenrePreference["Drama"] = 3

	resp, err := e.Recommend(context.Background(), p, Request{Mode: ModeByProfile, TopN: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("expected empty ranking, got %d", len(resp.Items))
	}
	if _, err := e.Recommend(context.Background(), p, Request{Mode: ModeByItem, Title: "A", TopN: 5}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRecommendRequiresProfile(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	if _, err := e.Recommend(context.Background(), nil, Request{Mode: ModeByProfile, TopN: 5}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := e.Recommend(context.Background(), newProfile(), Request{Mode: Mode(9), TopN: 5}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error for unknown mode, got %v", err)
	}
}

func TestRecommendCancelledContext(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, fourMovies(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Recommend(ctx, nil, Request{Mode: ModeByItem, Title: "A", TopN: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
