// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package api provides the HTTP surface of Callscope.
//
// Handlers are grouped by concern: session reconstruction, host
// inventory, report ingestion, authentication, health probes, and the
// WebSocket feed. Every JSON endpoint responds with the models.APIResponse
// envelope, and routing is assembled in router.go on top of chi with
// per-group rate limits and role-based authorization.
package api
