// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables. All timestamps on report
// rows are epoch milliseconds (BIGINT) matching the wire format; only
// bookkeeping columns use TIMESTAMP.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS media_reports (
			-- Identity and stream discrimination
			id UUID PRIMARY KEY,
			stream TEXT NOT NULL,
			call_id TEXT NOT NULL,

			-- Endpoint pair; src/dst order encodes flow direction
			src_addr TEXT NOT NULL,
			src_port INTEGER NOT NULL,
			dst_addr TEXT NOT NULL,
			dst_port INTEGER NOT NULL,

			-- Timing, epoch milliseconds
			created_at BIGINT NOT NULL,
			terminated_at BIGINT,
			duration BIGINT NOT NULL DEFAULT 0,

			-- Packet counters
			packets_expected BIGINT NOT NULL DEFAULT 0,
			packets_received BIGINT NOT NULL DEFAULT 0,
			packets_lost BIGINT NOT NULL DEFAULT 0,
			packets_rejected BIGINT NOT NULL DEFAULT 0,

			-- Interarrival jitter, milliseconds
			jitter_last DOUBLE NOT NULL DEFAULT 0,
			jitter_avg DOUBLE NOT NULL DEFAULT 0,
			jitter_min DOUBLE NOT NULL DEFAULT 0,
			jitter_max DOUBLE NOT NULL DEFAULT 0,

			-- Quality estimates
			mos DOUBLE,
			r_factor DOUBLE,
			fraction_lost DOUBLE,

			-- RTP stream details
			ssrc BIGINT,
			payload_type INTEGER,
			codec TEXT,

			ingested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS sip_reports (
			id UUID PRIMARY KEY,
			call_id TEXT NOT NULL,
			method TEXT,
			state TEXT,
			src_addr TEXT NOT NULL,
			src_port INTEGER NOT NULL,
			dst_addr TEXT NOT NULL,
			dst_port INTEGER NOT NULL,
			caller TEXT,
			callee TEXT,
			created_at BIGINT NOT NULL,
			terminated_at BIGINT,
			duration BIGINT NOT NULL DEFAULT 0,
			error_code INTEGER,
			ingested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

		// Address lists are stored as JSON text; resolution happens in Go
		// against parsed models.Host values.
		`CREATE TABLE IF NOT EXISTS hosts (
			name TEXT PRIMARY KEY,
			addresses TEXT NOT NULL,
			networks TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
}

// createIndexes builds indexes for the session query path: Call-ID set
// membership plus created_at range scan, with stream discrimination.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_media_reports_call_created ON media_reports(call_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_media_reports_stream ON media_reports(stream);`,
		`CREATE INDEX IF NOT EXISTS idx_media_reports_created_at ON media_reports(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sip_reports_call ON sip_reports(call_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sip_reports_created_at ON sip_reports(created_at);`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
