// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/users"
	"github.com/tomtom215/marquee/internal/validation"
)

// RegisterInput is a new account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,notblank,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// LoginInput is a credential pair.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RatingInput is one rating submission.
type RatingInput struct {
	Title  string `json:"title" validate:"required,notblank"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
}

// FavoriteGenresInput is a favorite genre selection.
type FavoriteGenresInput struct {
	Genres []string `json:"genres" validate:"min=1,max=50,dive,notblank"`
}

// RegisterUser creates an account. A second registration for the same
// email returns an AlreadyExistsError and the first record is kept.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*models.UserProfile, error) {
	in.Email = models.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if verr := validation.ValidateStruct(&in); verr != nil {
		metrics.RecordRegistration("invalid")
		return nil, verr
	}
	email := in.Email

	unlock := s.locks.Lock(email)
	defer unlock()

	hash, err := users.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			metrics.RecordRegistration("invalid")
		} else {
			metrics.RecordRegistration("error")
		}
		return nil, err
	}

	now := s.now().UTC()
	p := &models.UserProfile{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         in.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.EnsureMaps()

	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			metrics.RecordRegistration("duplicate")
			return nil, err
		}
		metrics.RecordRegistration("error")
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.RecordRegistration("ok")
	logging.Ctx(ctx).Info().Str("user", email).Msg("user registered")
	return p, nil
}

// Authenticate returns the profile for valid credentials. Unknown users
// and wrong passwords both yield an AuthError.
func (s *Service) Authenticate(ctx context.Context, in LoginInput) (*models.UserProfile, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		metrics.RecordAuthAttempt("failed")
		return nil, &models.AuthError{}
	}

	p, err := s.store.Get(ctx, in.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrValidation) {
			users.CheckPassword(s.dummyHash, in.Password)
			metrics.RecordAuthAttempt("failed")
			return nil, &models.AuthError{}
		}
		metrics.RecordAuthAttempt("error")
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !users.CheckPassword(p.PasswordHash, in.Password) {
		metrics.RecordAuthAttempt("failed")
		logging.Ctx(ctx).Warn().Str("user", p.Email).Msg("login failed")
		return nil, &models.AuthError{}
	}

	metrics.RecordAuthAttempt("ok")
	return p, nil
}

// GetUser returns the stored profile for email.
func (s *Service) GetUser(ctx context.Context, email string) (*models.UserProfile, error) {
	return s.store.Get(ctx, email)
}

// RateMovie records a rating and persists the updated profile. Invalid
// ratings, unknown users and unknown titles leave the store unchanged.
func (s *Service) RateMovie(ctx context.Context, email string, in RatingInput) (*models.UserProfile, error) {
	if err := recommend.ValidateRating(in.Rating); err != nil {
		metrics.RecordRating("invalid")
		return nil, err
	}
	if verr := validation.ValidateStruct(&in); verr != nil {
		metrics.RecordRating("invalid")
		return nil, verr
	}

	p, err := s.mutate(ctx, email, func(e *recommend.Engine, p *models.UserProfile) error {
		return e.ApplyRating(p, in.Title, in.Rating)
	})
	switch {
	case err == nil:
		metrics.RecordRating("ok")
		logging.Ctx(ctx).Debug().Str("user", p.Email).Str("title", in.Title).Int("rating", in.Rating).Msg("rating recorded")
	case errors.Is(err, models.ErrNotFound):
		metrics.RecordRating("not_found")
	case errors.Is(err, models.ErrValidation):
		metrics.RecordRating("invalid")
	default:
		metrics.RecordRating("error")
	}
	return p, err
}

// AddFavoriteGenres adds one to the weight of each selected genre.
func (s *Service) AddFavoriteGenres(ctx context.Context, email string, in FavoriteGenresInput) (*models.UserProfile, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, verr
	}
	return s.mutate(ctx, email, func(e *recommend.Engine, p *models.UserProfile) error {
		return e.AddFavoriteGenres(p, in.Genres)
	})
}

// mutate runs fn on a copy of the stored profile under the user's lock
// and persists the result only when fn succeeds.
func (s *Service) mutate(ctx context.Context, email string, fn func(*recommend.Engine, *models.UserProfile) error) (*models.UserProfile, error) {
	unlock := s.locks.Lock(email)
	defer unlock()

	p, err := s.store.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := fn(s.Engine(), p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return p, nil
}
