// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ReloadFunc is invoked after the catalog file changes.
type ReloadFunc func(ctx context.Context) error

// Watcher triggers a reload when the catalog file is written, created or
// renamed into place. Bursts of events within the debounce window collapse
// into one reload.
//
// The parent directory is watched rather than the file, so editors and
// deploy tools that replace the file by rename are still observed.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   ReloadFunc
	logger   zerolog.Logger
}

// NewWatcher creates a watcher for path.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatcher(path string, debounce time.Duration, reload ReloadFunc, logger zerolog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		reload:   reload,
		logger:   logger.With().Str("component", "catalog-watcher").Logger(),
	}, nil
}

// Serve watches until ctx is cancelled. It implements suture.Service.
func (w *Watcher) Serve(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info().Str("path", w.path).Msg("Watching catalog file")

	// Idle until the first relevant event arms the debounce.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("fsnotify event channel closed")
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug().Str("op", ev.Op.String()).Msg("Catalog file changed")
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("fsnotify error channel closed")
			}
			w.logger.Warn().Err(err).Msg("Catalog watcher error")

		case <-timer.C:
			if err := w.reload(ctx); err != nil {
				w.logger.Error().Err(err).Msg("Catalog reload failed; keeping previous catalog")
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// String names the service in supervisor logs.
func (w *Watcher) String() string {
	return "catalog-watcher"
}
