// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package catalog holds the immutable movie catalog.
//
// A Catalog is an ordered list of Items plus an index keyed by normalized
// title. Order is the order rows appeared in the source file; every ranking
// built on top of the catalog uses it to break ties. A Catalog is never
// mutated after construction, so it is safe for concurrent readers. A
// reload builds a new Catalog.
package catalog

import (
	"strings"
)

// Item is one movie in the catalog.
type Item struct {
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Directors   []string `json:"directors,omitempty"`
	Collections []string `json:"collections,omitempty"`
	Synopsis    string   `json:"synopsis,omitempty"`
}

// Key returns the normalized title used for lookups and rating keys.
func (it *Item) Key() string {
	return NormalizeTitle(it.Title)
}

// Catalog is an ordered, title-indexed set of items.
type Catalog struct {
	items  []Item
	index  map[string]int
	genres []string
	dups   int
}

// NormalizeTitle lowercases and trims a title.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// SplitList splits a comma-separated field, trims each token and drops
// empty tokens.
func SplitList(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// New builds a catalog from items in order. When two items share a
// normalized title the first one is indexed; later ones remain in the
// ordered list but cannot be looked up by title.
func New(items []Item) *Catalog {
	c := &Catalog{
		items: make([]Item, len(items)),
		index: make(map[string]int, len(items)),
	}
	copy(c.items, items)

	seenGenre := make(map[string]struct{})
	for i := range c.items {
		key := c.items[i].Key()
		if _, ok := c.index[key]; ok {
			c.dups++
		} else {
			c.index[key] = i
		}
		for _, g := range c.items[i].Genres {
			if _, ok := seenGenre[g]; !ok {
				seenGenre[g] = struct{}{}
				c.genres = append(c.genres, g)
			}
		}
	}
	return c
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// At returns the item at position i.
func (c *Catalog) At(i int) *Item { return &c.items[i] }

// Lookup finds an item by title, ignoring case and surrounding whitespace.
// It returns the item's position in load order.
func (c *Catalog) Lookup(title string) (*Item, int, bool) {
	i, ok := c.index[NormalizeTitle(title)]
	if !ok {
		return nil, -1, false
	}
	return &c.items[i], i, true
}

// Genres returns the distinct genres in first-seen order.
func (c *Catalog) Genres() []string {
	out := make([]string, len(c.genres))
	copy(out, c.genres)
	return out
}

// HasGenre reports whether any item carries genre g (exact match).
func (c *Catalog) HasGenre(g string) bool {
	for _, known := range c.genres {
		if known == g {
			return true
		}
	}
	return false
}

// Duplicates returns how many items were shadowed by an earlier item
// with the same normalized title.
func (c *Catalog) Duplicates() int { return c.dups }
