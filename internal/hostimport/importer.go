// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package hostimport

import (
	"context"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/models"
)

const (
	// defaultBatchSize is the number of hosts upserted per transaction.
	defaultBatchSize = 500

	// maxReportedErrors caps the per-record error list in the result so a
	// garbage file cannot inflate the response body.
	maxReportedErrors = 20
)

// HostStore is the subset of the database layer the importer needs.
type HostStore interface {
	UpsertHostsBatch(ctx context.Context, hosts []models.Host) (created, updated int, err error)
}

// Importer streams host records from a JSON array into the host table.
type Importer struct {
	store     HostStore
	batchSize int
}

// NewImporter creates an importer backed by the given store.
func NewImporter(store HostStore) *Importer {
	return &Importer{
		store:     store,
		batchSize: defaultBatchSize,
	}
}

// Import decodes a JSON array of hosts from r and upserts them by name.
// Records that fail validation are counted as skipped and described in the
// returned stats; they do not abort the import. A malformed document or a
// store failure aborts with an error, returning the stats accumulated so
// far.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*models.ImportStats, error) {
	start := time.Now()
	stats := &models.ImportStats{}

	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return stats, fmt.Errorf("reading document start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return stats, fmt.Errorf("expected JSON array of hosts, got %v", tok)
	}

	batch := make([]models.Host, 0, i.batchSize)
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var host models.Host
		if err := dec.Decode(&host); err != nil {
			return stats, fmt.Errorf("decoding host record %d: %w", stats.Total+1, err)
		}
		stats.Total++

		host.Normalize()
		if !host.Valid() {
			stats.Skipped++
			i.recordError(stats, host)
			continue
		}

		batch = append(batch, host)
		if len(batch) >= i.batchSize {
			if err := i.flush(ctx, stats, batch); err != nil {
				return stats, err
			}
			batch = batch[:0]
		}
	}

	if _, err := dec.Token(); err != nil {
		return stats, fmt.Errorf("reading document end: %w", err)
	}

	if len(batch) > 0 {
		if err := i.flush(ctx, stats, batch); err != nil {
			return stats, err
		}
	}

	logging.Info().
		Int("total", stats.Total).
		Int("inserted", stats.Inserted).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Dur("duration", time.Since(start)).
		Msg("Host import completed")

	return stats, nil
}

func (i *Importer) flush(ctx context.Context, stats *models.ImportStats, batch []models.Host) error {
	created, updated, err := i.store.UpsertHostsBatch(ctx, batch)
	if err != nil {
		return fmt.Errorf("upserting host batch: %w", err)
	}
	stats.Inserted += created
	stats.Updated += updated
	return nil
}

func (i *Importer) recordError(stats *models.ImportStats, host models.Host) {
	if len(stats.Errors) >= maxReportedErrors {
		return
	}
	name := host.Name
	if name == "" {
		name = fmt.Sprintf("record %d", stats.Total)
	}
	stats.Errors = append(stats.Errors, fmt.Sprintf("%s: invalid host definition", name))
}
