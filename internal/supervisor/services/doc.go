// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

/*
Package services provides suture.Service wrappers for Callscope components.

This package adapts application components to the suture v4 supervision
model, translating their lifecycle patterns (Start/Stop, RunWithContext,
ListenAndServe) into suture's context-aware Serve pattern.

# Available Services

HTTP server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the blocking ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

WebSocket hub (WebSocketHubService):
  - Wraps websocket.Hub, whose RunWithContext already matches Serve
  - Closes all clients on shutdown

Ingest pipeline (PipelineService):
  - Wraps the NATS JetStream report pipeline (consumer + appender)
  - Adapts Start/Shutdown to Serve

WAL services (WALRetryLoopService, WALCompactorService):
  - Wrap wal.RetryLoop and wal.Compactor
  - Adapt Start/Stop to Serve; Stop blocks until goroutines exit

# Error Handling

Return values determine supervisor behavior:

	nil       -> service stopped cleanly, not restarted
	error     -> service crashed, supervisor restarts it
	ctx.Err() -> shutdown requested, normal termination

All wrappers implement fmt.Stringer so suture log messages carry a
stable service name.
*/
package services
