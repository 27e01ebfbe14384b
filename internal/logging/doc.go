// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package logging provides centralized zerolog-based structured logging
// for Callscope.
//
// All components log through this package so that output format, level
// and field naming stay consistent across the ingest pipeline, the query
// API and the supervision tree.
//
// # Quick Start
//
//	import "github.com/tomtom215/callscope/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("call_id", id).Msg("session assembled")
//	logging.Error().Err(err).Msg("query failed")
//
//	// Context-aware logging propagates correlation and request IDs
//	logging.Ctx(ctx).Info().Int("legs", n).Msg("media session built")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// chain is silently dropped by zerolog.
//
// The package also carries an slog adapter so that libraries which take
// a *slog.Logger (the supervision tree's log hook) write through the
// same zerolog backend.
package logging
