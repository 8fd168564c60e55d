// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/models"
)

// Column names recognised in the catalog file header.
const (
	ColumnTitle      = "title"
	ColumnGenre      = "genre"
	ColumnDirector   = "director"
	ColumnCollection = "view_the_collection"
	ColumnSynopsis   = "synopsis"
)

var requiredColumns = []string{ColumnTitle, ColumnGenre, ColumnDirector}

// LoadFile reads a catalog from a CSV file.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func LoadFile(path string, logger zerolog.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f, logger)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// Load reads a catalog from CSV. The first record is the header; column
// names are matched case-insensitively. title, genre and director are
// required. view_the_collection and synopsis are optional.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Load(r io.Reader, logger zerolog.Logger) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, models.NewValidationError("header", nil, "catalog is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			return nil, models.NewValidationError(req, nil, "required column %q missing", req)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var items []Item
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		title := field(rec, ColumnTitle)
		if title == "" {
			return nil, models.NewValidationError(ColumnTitle, nil, "row %d has an empty title", line)
		}
		items = append(items, Item{
			Title:       title,
			Genres:      SplitList(field(rec, ColumnGenre)),
			Directors:   SplitList(field(rec, ColumnDirector)),
			Collections: SplitList(field(rec, ColumnCollection)),
			Synopsis:    field(rec, ColumnSynopsis),
		})
	}

	c := New(items)
	if c.Duplicates() > 0 {
		logger.Warn().Int("duplicates", c.Duplicates()).Msg("Catalog contains duplicate titles; first occurrence wins")
	}
	logger.Debug().Int("items", c.Len()).Int("genres", len(c.genres)).Msg("Catalog parsed")
	return c, nil
}
