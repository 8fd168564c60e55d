// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package services adapts Marquee components to suture.Service.
//
//   - HTTPServerService: net/http server with graceful shutdown
//   - PeriodicService: interval task such as badger value log GC
//
// The catalog watcher implements suture.Service directly and needs no adapter.
package services
