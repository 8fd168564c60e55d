// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"strings"
	"time"
)

// UserProfile is a registered user together with their rating history.
//
// Ratings is keyed by normalized movie title and holds values 1..5.
// GenrePreference is derived from Ratings and FavoriteGenres; it can always
// be rebuilt from those two maps. FavoriteGenres counts how many times each
// genre was picked as a favorite.
type UserProfile struct {
	ID              string             `json:"id"`
	Email           string             `json:"email"`
	Name            string             `json:"name"`
	PasswordHash    string             `json:"password_hash"`
	Ratings         map[string]int     `json:"ratings"`
	GenrePreference map[string]float64 `json:"genre_preference"`
	FavoriteGenres  map[string]int     `json:"favorite_genres,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// PublicProfile is the view of a profile returned to API clients.
type PublicProfile struct {
	ID              string             `json:"id"`
	Email           string             `json:"email"`
	Name            string             `json:"name"`
	Ratings         map[string]int     `json:"ratings"`
	GenrePreference map[string]float64 `json:"genre_preference"`
	FavoriteGenres  map[string]int     `json:"favorite_genres,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email so it can be used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EnsureMaps allocates any nil maps.
func (p *UserProfile) EnsureMaps() {
	if p.Ratings == nil {
		p.Ratings = make(map[string]int)
	}
	if p.GenrePreference == nil {
		p.GenrePreference = make(map[string]float64)
	}
	if p.FavoriteGenres == nil {
		p.FavoriteGenres = make(map[string]int)
	}
}

// Clone returns a deep copy of p.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Ratings = make(map[string]int, len(p.Ratings))
	for k, v := range p.Ratings {
		c.Ratings[k] = v
	}
	c.GenrePreference = make(map[string]float64, len(p.GenrePreference))
	for k, v := range p.GenrePreference {
		c.GenrePreference[k] = v
	}
	c.FavoriteGenres = make(map[string]int, len(p.FavoriteGenres))
	for k, v := range p.FavoriteGenres {
		c.FavoriteGenres[k] = v
	}
	return &c
}

// Public strips credentials from the profile.
func (p *UserProfile) Public() PublicProfile {
	c := p.Clone()
	return PublicProfile{
		ID:              c.ID,
		Email:           c.Email,
		Name:            c.Name,
		Ratings:         c.Ratings,
		GenrePreference: c.GenrePreference,
		FavoriteGenres:  c.FavoriteGenres,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
