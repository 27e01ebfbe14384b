// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package wal provides a durable write-ahead log backed by BadgerDB.
//
// Ingested reports are journaled here before they are published to the
// broker, so a broker outage or a process crash between accept and
// publish loses nothing. The flow is:
//
//	entryID, _ := w.Write(ctx, event)   // fsync'd to Badger
//	err := publisher.PublishEvent(ctx, event)
//	if err == nil {
//	    w.Confirm(ctx, entryID)         // moved out of the pending set
//	}
//	// on error the entry stays pending and the RetryLoop republishes it
//
// The RetryLoop periodically republishes pending entries with
// exponential backoff, dropping entries that exceed the retry budget
// or their TTL. The Compactor removes confirmed entries and expired
// pending entries, then runs Badger value-log GC.
//
// Entries store their payload as raw JSON, so the log is agnostic to
// the event schema it carries.
package wal
