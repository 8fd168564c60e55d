// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

// PeriodicService calls a function on a fixed interval until its context is
// canceled. A failing run is logged and retried on the next tick rather than
// restarting the service.
//
//	gc := services.NewPeriodicService("store-gc", 10*time.Minute, collector.RunGC)
//	tree.AddDataService(gc)
type PeriodicService struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// NewPeriodicService returns a service that calls run every interval.
// A non-positive interval means one minute.
func NewPeriodicService(name string, interval time.Duration, run func(ctx context.Context) error) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{name: name, interval: interval, run: run}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log := logging.WithComponent(p.name)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := p.run(ctx); err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn().Err(err).Msg("Periodic task failed")
				continue
			}
			log.Debug().Dur("duration", time.Since(start)).Msg("Periodic task completed")
		}
	}
}

func (p *PeriodicService) String() string {
	return p.name
}
