// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

/*
Package supervisor provides process supervision for Callscope using suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of all long-running services in the application. It provides
Erlang/OTP-style supervision with automatic restart, failure isolation,
and graceful shutdown.

# Overview

The supervisor tree organizes services into three layers for failure
isolation:

	RootSupervisor ("callscope")
	├── DataSupervisor ("data-layer")
	│   ├── WALRetryLoopService (if WAL_ENABLED)
	│   └── WALCompactorService (if WAL_ENABLED)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   └── PipelineService (if NATS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

This hierarchy ensures that:
  - A crash in the ingest pipeline doesn't drop WebSocket connections
  - WAL failures don't impact API availability
  - Each layer restarts independently under its own failure budget

# Failure Handling

The supervisor uses a failure counter with exponential decay:

 1. Each service failure increments the counter
 2. The counter decays exponentially over FailureDecay seconds
 3. When the counter exceeds FailureThreshold the layer enters backoff
 4. During backoff, restarts are delayed by FailureBackoff

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - nil: service stopped cleanly, not restarted
  - error: service crashed, restarted per backoff policy
  - context canceled: shutdown requested, return promptly

# What Is NOT Supervised

DuckDB is intentionally not supervised: it is an embedded library, not a
long-running service, and its connections are managed by the database
package. A crash inside DuckDB would require a process restart anyway.

# Debugging Shutdown Issues

If services don't stop within the configured timeout:

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
	    log.Printf("service didn't stop: %v", svc)
	}

# See Also

  - internal/supervisor/services: service wrappers
  - github.com/thejerf/suture/v4: underlying library
*/
package supervisor
