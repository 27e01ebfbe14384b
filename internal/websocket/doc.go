// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

/*
Package websocket provides real-time push of ingest activity to connected
clients.

The package implements a hub-and-spoke pattern on gorilla/websocket: a Hub
broadcasts typed messages to every registered Client, and each Client runs a
read pump and a write pump goroutine against its connection.

Message Types:

  - report_ingested: a media or SIP quality report was accepted
  - import_completed: a bulk host import finished (counts, duration)
  - ping / pong: application-level keepalive

Usage:

	hub := websocket.NewHub()
	go hub.Run()

	// or, under supervision:
	//   err := hub.RunWithContext(ctx)

	hub.BroadcastReportIngested(report)
	hub.BroadcastImportCompleted(stats, durationMs)

Broadcast order across clients is deterministic: clients are sorted by a
monotonically increasing ID before each fan-out, so message delivery order
is reproducible in tests and under race detection.

Connection Lifecycle:

 1. Client connects via HTTP upgrade (internal/api /ws handler)
 2. Hub registers the client
 3. Client starts read/write pumps
 4. Hub broadcasts messages; slow clients with a full send buffer are dropped
 5. Hub unregisters the client on disconnect and closes its send channel

Timeouts follow gorilla conventions: 10s write deadline, 60s pong wait with
pings at 90% of that interval, 512KB read limit.
*/
package websocket
