// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package main is the entry point for the Marquee server.
//
// Marquee serves content-based movie recommendations over a JSON API. Users
// register, rate titles and pick favourite genres; recommendations are scored
// by cosine similarity between catalog items and the user's history.
//
// # Startup
//
//  1. Configuration: defaults, config.yaml, environment (Koanf v2)
//  2. Catalog: parse the movie CSV; the server refuses to start without it
//  3. User store: JSON file or BadgerDB
//  4. Engine: build the categorical and lexical similarity spaces
//  5. Supervisor tree: HTTP server, catalog watcher, store GC
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the tree. The HTTP server drains in-flight
// requests for SERVER_SHUTDOWN_GRACE, then the user store is closed.
//
// # Example Usage
//
//	export CATALOG_PATH=/data/movies.csv
//	export STORE_BACKEND=badger STORE_PATH=/data/users
//	./marquee
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/service"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
	"github.com/tomtom215/marquee/internal/users"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.LoggingOptions())

	logging.Info().
		Str("version", version).
		Str("catalog", cfg.Catalog.Path).
		Str("store_backend", cfg.Store.Backend).
		Str("store_path", cfg.Store.Path).
		Msg("Starting Marquee")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Marquee stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config) error {
	engineCfg := cfg.Recommend.EngineConfig()

	start := time.Now()
	cat, err := catalog.LoadFile(cfg.Catalog.Path, logging.WithComponent("catalog"))
	if err != nil {
		metrics.RecordCatalogLoad(0, time.Since(start), err)
		return err
	}
	engine, err := recommend.NewEngine(cat, engineCfg, logging.WithComponent("recommend"))
	if err != nil {
		metrics.RecordCatalogLoad(0, time.Since(start), err)
		return err
	}
	metrics.RecordCatalogLoad(cat.Len(), time.Since(start), nil)

	store, err := users.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing user store")
		}
	}()

	svc, err := service.New(service.Config{
		CatalogPath: cfg.Catalog.Path,
		BcryptCost:  cfg.Security.BcryptCost,
		DefaultTopN: cfg.Recommend.DefaultTopN,
		MaxTopN:     cfg.Recommend.MaxTopN,
		Engine:      engineCfg,
	}, store, engine, logging.WithComponent("service"))
	if err != nil {
		return err
	}

	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mw.RateLimitRequests = cfg.Security.RateLimitReqs
	mw.RateLimitWindow = cfg.Security.RateLimitWindow
	mw.RateLimitDisabled = cfg.Security.RateLimitDisabled
	mw.LoginRateLimitRequests = cfg.Security.LoginRateLimitReqs

	router := api.NewRouter(api.NewHandler(svc, version), api.RouterConfig{
		Middleware:   mw,
		MaxBodyBytes: cfg.Security.MaxBodyBytes,
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if cfg.Catalog.Watch {
		watcher, err := catalog.NewWatcher(cfg.Catalog.Path, cfg.Catalog.Debounce, svc.Reload, logging.WithComponent("catalog-watcher"))
		if err != nil {
			return err
		}
		tree.AddDataService(watcher)
	} else {
		logging.Info().Msg("Catalog watching disabled (CATALOG_WATCH=false)")
	}

	if gc, ok := users.AsCollector(store); ok && cfg.Store.GCInterval > 0 {
		tree.AddDataService(services.NewPeriodicService("store-gc", cfg.Store.GCInterval, gc.RunGC))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Serve returns once every service has stopped.
	serveErr := <-tree.ServeBackground(ctx)
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, u := range unstopped {
			logging.Warn().Str("service", u.Name).Msg("Service failed to stop within timeout")
		}
	}

	if ctx.Err() == nil {
		return errors.New("supervisor tree exited unexpectedly")
	}
	return nil
}
