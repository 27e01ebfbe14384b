// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package eventprocessor

import (
	"context"
	"fmt"

	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/wal"
)

// EventSink is the downstream half of the durable publish path. Both the
// broker-backed Publisher and test doubles satisfy it.
type EventSink interface {
	PublishEvent(ctx context.Context, event *ReportEvent) error
}

// DurablePublisher writes events to the WAL before publishing so accepted
// reports survive broker outages. The contract: once the WAL write
// succeeds the event is accepted, and a publish failure leaves the entry
// pending for the retry loop rather than failing the caller.
type DurablePublisher struct {
	wal  *wal.BadgerWAL
	sink EventSink
}

// NewDurablePublisher wires a WAL in front of an event sink.
func NewDurablePublisher(w *wal.BadgerWAL, sink EventSink) (*DurablePublisher, error) {
	if w == nil {
		return nil, fmt.Errorf("wal cannot be nil")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink cannot be nil")
	}
	return &DurablePublisher{wal: w, sink: sink}, nil
}

// PublishEvent persists the event, forwards it to the sink, and confirms
// the WAL entry on success. Publish and confirm failures are absorbed:
// the pending entry is republished by the retry loop, and because the
// event keeps its original ID the broker's msg-id window deduplicates
// any double delivery.
func (d *DurablePublisher) PublishEvent(ctx context.Context, event *ReportEvent) error {
	entryID, err := d.wal.Write(ctx, event)
	if err != nil {
		return fmt.Errorf("writing WAL entry: %w", err)
	}

	if err := d.sink.PublishEvent(ctx, event); err != nil {
		logging.Warn().
			Err(err).
			Str("entry_id", entryID).
			Str("event_id", event.EventID).
			Msg("Publish failed, entry queued for retry")
		return nil
	}

	if err := d.wal.Confirm(ctx, entryID); err != nil {
		logging.Warn().
			Err(err).
			Str("entry_id", entryID).
			Msg("WAL confirm failed, entry will be republished")
	}
	return nil
}

// EntryPublisher adapts an event sink to the WAL retry loop by decoding
// stored entries back into report events.
type EntryPublisher struct {
	sink EventSink
}

// NewEntryPublisher creates the retry-loop adapter.
func NewEntryPublisher(sink EventSink) *EntryPublisher {
	return &EntryPublisher{sink: sink}
}

// PublishEntry decodes the entry payload and republishes it. The decoded
// event keeps its original event ID so redeliveries deduplicate at the
// broker.
func (e *EntryPublisher) PublishEntry(ctx context.Context, entry *wal.Entry) error {
	var event ReportEvent
	if err := entry.UnmarshalPayload(&event); err != nil {
		return fmt.Errorf("decoding WAL entry %s: %w", entry.ID, err)
	}
	event.EnsureSchemaVersion()
	return e.sink.PublishEvent(ctx, &event)
}
