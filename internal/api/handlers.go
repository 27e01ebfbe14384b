// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package api

import (
	"sync"
	"time"

	"github.com/tomtom215/callscope/internal/auth"
	"github.com/tomtom215/callscope/internal/config"
	"github.com/tomtom215/callscope/internal/database"
	"github.com/tomtom215/callscope/internal/hostimport"
	"github.com/tomtom215/callscope/internal/middleware"
	"github.com/tomtom215/callscope/internal/session"
	ws "github.com/tomtom215/callscope/internal/websocket"
)

// Handler carries the dependencies shared by all HTTP handlers.
//
// The event publisher is optional: when set, ingested reports flow
// through the event pipeline; when nil, they are appended to the
// database directly. The JWT manager is only present in jwt auth mode.
type Handler struct {
	db       *database.DB
	sessions *session.Service
	importer *hostimport.Importer
	config   *config.Config

	jwtManager *auth.JWTManager
	wsHub      *ws.Hub

	mu        sync.RWMutex
	publisher EventPublisher

	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
}

// NewHandler creates the handler set. The session service and database
// are required; the WebSocket hub may be nil when the realtime feed is
// disabled.
func NewHandler(db *database.DB, sessions *session.Service, wsHub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		db:        db,
		sessions:  sessions,
		importer:  hostimport.NewImporter(db),
		config:    cfg,
		wsHub:     wsHub,
		perfMon:   middleware.NewPerformanceMonitor(1000),
		startTime: time.Now(),
	}
}

// SetJWTManager attaches the token issuer used by the login endpoint.
func (h *Handler) SetJWTManager(m *auth.JWTManager) {
	h.jwtManager = m
}

// PerformanceMonitor exposes the rolling latency monitor for router wiring.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}
