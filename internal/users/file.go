// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package users

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/models"
)

// FileStore keeps all profiles in one JSON object keyed by email.
// Every operation reads the whole document and every mutation rewrites
// it through a temp file and rename, so a crash never leaves a torn file.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore returns a store backed by the document at path. The file
// is created on the first write; its parent directory is created now.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Get(ctx context.Context, email string) (*models.UserProfile, error) {
	k, err := key(email)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	p, ok := doc[k]
	if !ok {
		return nil, models.NewNotFoundError(userKind, k)
	}
	p.EnsureMaps()
	return p, nil
}

func (s *FileStore) Create(ctx context.Context, p *models.UserProfile) error {
	c, err := prepare(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, exists := doc[c.Email]; exists {
		return models.NewAlreadyExistsError(userKind, c.Email)
	}
	doc[c.Email] = c
	return s.save(doc)
}

func (s *FileStore) Update(ctx context.Context, p *models.UserProfile) error {
	c, err := prepare(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, exists := doc[c.Email]; !exists {
		return models.NewNotFoundError(userKind, c.Email)
	}
	doc[c.Email] = c
	return s.save(doc)
}

func (s *FileStore) List(ctx context.Context) ([]*models.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*models.UserProfile, 0, len(doc))
	for _, p := range doc {
		p.EnsureMaps()
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// Close is a no-op; the file is not held open between operations.
func (s *FileStore) Close() error { return nil }

// load reads the document. A missing or empty file is an empty store.
// Keys are normalized on read so hand-edited documents still resolve.
func (s *FileStore) load() (map[string]*models.UserProfile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]*models.UserProfile), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user store: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]*models.UserProfile), nil
	}

	var raw map[string]*models.UserProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode user store %s: %w", s.path, err)
	}
	doc := make(map[string]*models.UserProfile, len(raw))
	for email, p := range raw {
		if p == nil {
			continue
		}
		k := models.NormalizeEmail(email)
		if k == "" {
			continue
		}
		p.Email = k
		doc[k] = p
	}
	return doc, nil
}

func (s *FileStore) save(doc map[string]*models.UserProfile) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace user store: %w", err)
	}
	return nil
}
