// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package main

import (
	"fmt"

	"github.com/tomtom215/callscope/internal/api"
	"github.com/tomtom215/callscope/internal/config"
	"github.com/tomtom215/callscope/internal/eventprocessor"
	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/wal"
)

// WALComponents holds the write-ahead log components for lifecycle
// management. The WAL journals every accepted report before the broker
// publish; the retry loop republishes entries whose publish failed, and
// the compactor reclaims confirmed entries.
type WALComponents struct {
	wal       *wal.BadgerWAL
	retryLoop *wal.RetryLoop
	compactor *wal.Compactor
	publisher *eventprocessor.DurablePublisher
}

// InitWAL opens the Badger write-ahead log and wires it in front of the
// pipeline publisher. Returns (nil, nil) when the WAL is disabled or no
// pipeline exists to publish into; ingest then uses the plain broker
// publisher (or direct appends) and accepts the durability gap.
//
// The retry loop and compactor are constructed but not started: the
// supervisor tree owns their lifecycle through the data layer.
func InitWAL(cfg *config.Config, pipeline *Pipeline) (*WALComponents, error) {
	if !cfg.WAL.Enabled {
		logging.Warn().Msg("WAL disabled (WAL_ENABLED=false), reports may be lost if the broker fails")
		return nil, nil
	}
	if pipeline == nil {
		logging.Warn().Msg("WAL enabled but ingest pipeline is not, skipping WAL")
		return nil, nil
	}

	wcfg := wal.FromAppConfig(&cfg.WAL)
	if err := wcfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid WAL config: %w", err)
	}

	logging.Info().Str("path", wcfg.Path).Msg("Initializing WAL")

	w, err := wal.Open(&wcfg)
	if err != nil {
		return nil, fmt.Errorf("open WAL: %w", err)
	}

	c := &WALComponents{wal: w}

	durable, err := eventprocessor.NewDurablePublisher(w, pipeline.Publisher())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create durable publisher: %w", err)
	}
	c.publisher = durable

	retryLoop, err := wal.NewRetryLoop(w, eventprocessor.NewEntryPublisher(pipeline.Publisher()))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create retry loop: %w", err)
	}
	c.retryLoop = retryLoop

	compactor, err := wal.NewCompactor(w)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create compactor: %w", err)
	}
	c.compactor = compactor

	stats := w.Stats()
	logging.Info().
		Int64("pending", stats.PendingCount).
		Msg("WAL initialized")

	return c, nil
}

// Publisher returns the WAL-backed publisher the ingest handler should
// use instead of the plain broker publisher.
func (c *WALComponents) Publisher() api.EventPublisher {
	if c == nil || c.publisher == nil {
		return nil
	}
	return c.publisher
}

// RetryLoop returns the retry loop for supervisor wiring.
func (c *WALComponents) RetryLoop() *wal.RetryLoop {
	if c == nil {
		return nil
	}
	return c.retryLoop
}

// Compactor returns the compactor for supervisor wiring.
func (c *WALComponents) Compactor() *wal.Compactor {
	if c == nil {
		return nil
	}
	return c.compactor
}

// Stats returns current WAL statistics.
func (c *WALComponents) Stats() wal.Stats {
	if c == nil || c.wal == nil {
		return wal.Stats{}
	}
	return c.wal.Stats()
}

// Close closes the underlying log. The retry loop and compactor must
// already be stopped (the supervisor stops them before this runs).
func (c *WALComponents) Close() {
	if c == nil || c.wal == nil {
		return
	}
	if err := c.wal.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing WAL")
	}
	c.wal = nil
}
