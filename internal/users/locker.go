// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package users

import (
	"sync"

	"github.com/tomtom215/marquee/internal/models"
)

// Locker hands out one mutex per normalized email. Entries are reference
// counted and dropped once no goroutine holds or waits on them.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewLocker returns an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// Lock blocks until the caller holds email's lock and returns the
// function that releases it.
func (l *Locker) Lock(email string) (unlock func()) {
	k := models.NormalizeEmail(email)

	l.mu.Lock()
	e, ok := l.locks[k]
	if !ok {
		e = &lockEntry{}
		l.locks[k] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.locks, k)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of emails currently locked or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
