// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package api

import (
	"context"

	"github.com/tomtom215/callscope/internal/eventprocessor"
)

// EventPublisher publishes accepted reports into the event pipeline.
// Satisfied by eventprocessor.Publisher and eventprocessor.DurablePublisher.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *eventprocessor.ReportEvent) error
}

// SetEventPublisher routes subsequent ingest requests through the event
// pipeline instead of direct database appends. Safe to call while the
// server is running.
func (h *Handler) SetEventPublisher(p EventPublisher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publisher = p
}

func (h *Handler) eventPublisher() EventPublisher {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.publisher
}
