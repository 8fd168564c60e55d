// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package space builds the vector spaces that movies are compared in.
//
// Two kinds of space exist:
//
//   - Categorical: one 0/1 column per distinct (field, value) pair across
//     the configured list fields (genre, director, collection). Columns are
//     numbered in first-seen order while walking the catalog, so the layout
//     is deterministic for a given catalog.
//   - Lexical: TF-IDF weights over the synopsis text with English stop
//     words removed and the vocabulary capped at the most frequent terms.
//     Rows are L2-normalised; a movie with no synopsis gets a zero row.
//
// Row i of a Space always describes item i of the catalog it was built
// from. A Space is read-only after Build returns.
package space

import (
	"fmt"

	"github.com/tomtom215/marquee/internal/catalog"
)

// Mode selects how a space is built.
type Mode string

const (
	// ModeCategorical is the multi-hot genre/director/collection space.
	ModeCategorical Mode = "categorical"

	// ModeLexical is the TF-IDF synopsis space.
	ModeLexical Mode = "lexical"
)

// Field names accepted in Options.Fields.
const (
	FieldGenre      = "genre"
	FieldDirector   = "director"
	FieldCollection = "collection"
)

// DefaultFields is the combined signature used when Options.Fields is empty.
var DefaultFields = []string{FieldGenre, FieldDirector, FieldCollection}

// DefaultMaxFeatures caps the lexical vocabulary when Options.MaxFeatures is zero.
const DefaultMaxFeatures = 1000

// Options configures Build.
type Options struct {
	Mode        Mode
	Fields      []string // categorical only
	MaxFeatures int      // lexical only
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCategorical, ModeLexical:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown space mode %q", s)
	}
}

// Column identifies one categorical dimension.
type Column struct {
	Field string
	Value string
}

// Space is a dense matrix with one row per catalog item.
type Space struct {
	mode    Mode
	catalog *catalog.Catalog
	rows    [][]float64
	dims    int

	columns  []Column       // categorical
	colIndex map[Column]int // categorical
	terms    []string       // lexical
}

// Build constructs a space over every item of c.
func Build(c *catalog.Catalog, opts Options) (*Space, error) {
	switch opts.Mode {
	case ModeCategorical:
		fields := opts.Fields
		if len(fields) == 0 {
			fields = DefaultFields
		}
		for _, f := range fields {
			if !ValidField(f) {
				return nil, fmt.Errorf("unknown categorical field %q", f)
			}
		}
		return buildCategorical(c, fields), nil
	case ModeLexical:
		maxFeatures := opts.MaxFeatures
		if maxFeatures < 0 {
			return nil, fmt.Errorf("max features must not be negative, got %d", maxFeatures)
		}
		if maxFeatures == 0 {
			maxFeatures = DefaultMaxFeatures
		}
		return buildLexical(c, maxFeatures), nil
	default:
		return nil, fmt.Errorf("unknown space mode %q", opts.Mode)
	}
}

// ValidField reports whether f names a categorical field.
func ValidField(f string) bool {
	return f == FieldGenre || f == FieldDirector || f == FieldCollection
}

func fieldValues(it *catalog.Item, field string) []string {
	switch field {
	case FieldGenre:
		return it.Genres
	case FieldDirector:
		return it.Directors
	case FieldCollection:
		return it.Collections
	}
	return nil
}

func buildCategorical(c *catalog.Catalog, fields []string) *Space {
	s := &Space{
		mode:     ModeCategorical,
		catalog:  c,
		colIndex: make(map[Column]int),
	}

	for i := 0; i < c.Len(); i++ {
		it := c.At(i)
		for _, f := range fields {
			for _, v := range fieldValues(it, f) {
				col := Column{Field: f, Value: v}
				if _, ok := s.colIndex[col]; !ok {
					s.colIndex[col] = len(s.columns)
					s.columns = append(s.columns, col)
				}
			}
		}
	}
	s.dims = len(s.columns)

	s.rows = make([][]float64, c.Len())
	for i := 0; i < c.Len(); i++ {
		row := make([]float64, s.dims)
		it := c.At(i)
		for _, f := range fields {
			for _, v := range fieldValues(it, f) {
				row[s.colIndex[Column{Field: f, Value: v}]] = 1
			}
		}
		s.rows[i] = row
	}
	return s
}

// Mode returns how the space was built.
func (s *Space) Mode() Mode { return s.mode }

// Catalog returns the catalog the rows are aligned with.
func (s *Space) Catalog() *catalog.Catalog { return s.catalog }

// Len returns the number of rows.
func (s *Space) Len() int { return len(s.rows) }

// Dims returns the number of columns.
func (s *Space) Dims() int { return s.dims }

// Empty reports whether the space has no rows or no columns. Every
// ranking against an empty space is empty.
func (s *Space) Empty() bool { return len(s.rows) == 0 || s.dims == 0 }

// Row returns the vector for catalog item i. Callers must not modify it.
func (s *Space) Row(i int) []float64 { return s.rows[i] }

// Columns returns the categorical column layout.
func (s *Space) Columns() []Column { return s.columns }

// Terms returns the lexical vocabulary in column order.
func (s *Space) Terms() []string { return s.terms }

// ColumnOf returns the column index of a categorical (field, value) pair.
func (s *Space) ColumnOf(field, value string) (int, bool) {
	i, ok := s.colIndex[Column{Field: field, Value: value}]
	return i, ok
}

// WeightedVector builds a reference vector carrying weights on the
// columns of one categorical field and zero elsewhere. Values that have
// no column in this space are ignored.
func (s *Space) WeightedVector(field string, weights map[string]float64) []float64 {
	v := make([]float64, s.dims)
	for value, w := range weights {
		if i, ok := s.ColumnOf(field, value); ok {
			v[i] = w
		}
	}
	return v
}
