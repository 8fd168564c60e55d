// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package supervisor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

// countingService records how often it was started. When failFirst is set
// the first run returns an error so the supervisor restarts it.
type countingService struct {
	name      string
	starts    atomic.Int32
	failFirst bool
	running   chan struct{}
}

func newCountingService(name string, failFirst bool) *countingService {
	return &countingService{name: name, failFirst: failFirst, running: make(chan struct{}, 8)}
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if s.failFirst && n == 1 {
		return errors.New("boom")
	}
	s.running <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitRunning(t *testing.T, s *countingService) {
	t.Helper()
	select {
	case <-s.running:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not start", s.name)
	}
}

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5 || cfg.FailureDecay != 30 {
		t.Errorf("unexpected failure settings: %+v", cfg)
	}
	if cfg.FailureBackoff != 15*time.Second || cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("unexpected durations: %+v", cfg)
	}
}

func TestNewSupervisorTreeAppliesDefaults(t *testing.T) {
	tree := NewSupervisorTree(nil, TreeConfig{FailureBackoff: time.Second})

	if tree.config.FailureThreshold != 5 {
		t.Errorf("FailureThreshold = %v", tree.config.FailureThreshold)
	}
	if tree.config.FailureBackoff != time.Second {
		t.Errorf("explicit FailureBackoff overwritten: %v", tree.config.FailureBackoff)
	}
	if tree.logger == nil {
		t.Error("nil logger should fall back to slog.Default")
	}
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	tree := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	watcher := newCountingService("catalog-watcher", false)
	server := newCountingService("http-server", false)
	tree.AddDataService(watcher)
	tree.AddAPIService(server)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitRunning(t, watcher)
	waitRunning(t, server)
	cancel()

	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport: %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTreeRestartsFailedService(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(logging.NewTestLogger(&buf))
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	tree := NewSupervisorTree(logging.NewSlogLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	flaky := newCountingService("flaky", true)
	healthy := newCountingService("http-server", false)
	tree.AddDataService(flaky)
	tree.AddAPIService(healthy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitRunning(t, healthy)
	waitRunning(t, flaky)
	if got := flaky.starts.Load(); got != 2 {
		t.Errorf("flaky started %d times, want 2", got)
	}
	if got := healthy.starts.Load(); got != 1 {
		t.Errorf("a data-layer failure restarted the API layer (%d starts)", got)
	}

	cancel()
	<-errCh
}
