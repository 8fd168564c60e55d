// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/models"
)

// Key prefix for BadgerDB storage
const userKeyPrefix = "user:"

// BadgerStore implements Store using BadgerDB, one key per user.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a BadgerDB at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for users: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(email string) []byte {
	return []byte(userKeyPrefix + email)
}

func (s *BadgerStore) Get(ctx context.Context, email string) (*models.UserProfile, error) {
	k, err := key(email)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p models.UserProfile
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(k))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return models.NewNotFoundError(userKind, k)
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return nil, err
	}
	p.EnsureMaps()
	return &p, nil
}

func (s *BadgerStore) Create(ctx context.Context, p *models.UserProfile) error {
	c, err := prepare(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(c.Email))
		if err == nil {
			return models.NewAlreadyExistsError(userKind, c.Email)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check user: %w", err)
		}
		if err := txn.Set(badgerKey(c.Email), data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		return nil
	})
}

func (s *BadgerStore) Update(ctx context.Context, p *models.UserProfile) error {
	c, err := prepare(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(c.Email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return models.NewNotFoundError(userKind, c.Email)
		}
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if err := txn.Set(badgerKey(c.Email), data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		return nil
	})
}

// List iterates the user prefix; Badger yields keys in sorted order.
func (s *BadgerStore) List(ctx context.Context) ([]*models.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*models.UserProfile
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p models.UserProfile
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return fmt.Errorf("decode user %s: %w", it.Item().Key(), err)
			}
			p.EnsureMaps()
			out = append(out, &p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// DefaultGCDiscardRatio is the value log discard ratio used by RunGC.
const DefaultGCDiscardRatio = 0.5

// RunGC rewrites value log files until badger reports nothing left to
// reclaim. Updates to profiles leave stale versions behind, so long-running
// servers should call this periodically.
func (s *BadgerStore) RunGC(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.RunValueLogGC(DefaultGCDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}
