// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

/*
Package database provides the DuckDB-backed report store.

Tables:

  - media_reports: immutable RTP/RTCP measurement documents from upstream
    capture, discriminated by the stream column (rtp_index, rtp_raw,
    rtcp_index, rtcp_raw). Index rows summarize whole legs; raw rows carry
    one reporting interval each.
  - sip_reports: SIP dialog summaries keyed by Call-ID.
  - hosts: symbolic name to address/CIDR mappings for endpoint resolution.
  - schema_migrations: versioned migration bookkeeping.

Query model:

Reports are looked up by stream prefix, time window, and Call-ID set via
FindMediaReports. The session layer issues one query per stream and sorts
ascending by created_at so leg assembly sees reports in capture order.
Writes arrive through the single-report path (HTTP ingest) and the batch
path (event consumer flush); both deduplicate on the report id with
ON CONFLICT DO NOTHING so replays after restart are idempotent.

Concurrency:

The *sql.DB pool fronts a single DuckDB file. Connection tuning (threads,
max_memory, preserve_insertion_order) comes from config.DatabaseConfig.
Close checkpoints the WAL before shutting the pool down so the next start
does not replay it.
*/
package database
