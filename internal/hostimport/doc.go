// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package hostimport bulk-loads host definitions from JSON documents into
// the host table.
//
// The input is a JSON array of host objects, typically exported from an
// inventory system or maintained by hand. Records are decoded one at a
// time so large files never load fully into memory, validated, and
// upserted in batches keyed by host name. Invalid records are skipped and
// reported rather than failing the whole import.
package hostimport
