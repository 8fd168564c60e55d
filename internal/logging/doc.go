// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package logging provides structured logging for Marquee using zerolog.

A single global logger is configured once at startup with Init and read
everywhere else through the package-level helpers:

	logging.Init(logging.Config{Level: "info", Format: "json"})
	logging.Info().Str("path", path).Int("items", n).Msg("Catalog loaded")

Request-scoped logging goes through Ctx, which attaches the request ID and
the acting user when the HTTP middleware has stored them on the context:

	logging.Ctx(r.Context()).Warn().Err(err).Msg("Rating rejected")

# slog bridge

Libraries that log through log/slog (the suture supervisor) are bridged with
NewSlogHandler and NewSlogLogger so every line lands in the same zerolog
stream with the same level filtering.

# Testing

NewTestLogger writes to any io.Writer, which lets tests assert on output:

	var buf bytes.Buffer
	logging.SetLogger(logging.NewTestLogger(&buf))
*/
package logging
