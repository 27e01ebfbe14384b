// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

/*
Package main is the entry point for the Callscope server application.

Callscope is a self-hosted VoIP analytics backend that reconstructs SIP
call legs and RTP/RTCP media legs from capture reports stored in DuckDB.
It divides each media leg into a fixed number of quality blocks (jitter,
packet loss, MOS) and serves the reconstructed sessions over a REST API,
alongside a host inventory with bulk import and a durable report ingest
pipeline.

# Application Architecture

The server implements a layered architecture with suture v4 process
supervision:

	RootSupervisor ("callscope")
	├── DataSupervisor ("data-layer")
	│   ├── WAL retry loop (if WAL_ENABLED)
	│   └── WAL compactor (if WAL_ENABLED)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub (real-time report feed)
	│   └── Ingest pipeline (if NATS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB report store with schema migrations
 4. Session service: leg reconstruction and block aggregation
 5. Authentication: JWT, Basic Auth, OIDC bearer, or no-auth mode
 6. Authorization: casbin RBAC (embedded model and policy)
 7. Ingest pipeline: NATS JetStream + Watermill (NATS_ENABLED)
 8. WAL: Badger write-ahead log for ingest durability (WAL_ENABLED)
 9. Supervisor tree and HTTP server

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest
priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8860               # HTTP listen port
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Authentication (choose one mode)
	AUTH_MODE=jwt                # jwt, basic, oidc, or none
	JWT_SECRET=<32+ chars>       # Required for JWT mode
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<password>

	# Session assembly
	SESSION_BLOCK_COUNT=28       # Quality blocks per media leg
	SESSION_TERMINATION_TIMEOUT=60s

	# Ingest pipeline
	NATS_ENABLED=true            # Event-driven ingest
	WAL_ENABLED=true             # Journal reports before publishing

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:
  - Stops accepting new connections
  - Waits for in-flight requests to complete (10s timeout)
  - Drains the ingest consumer and flushes the report appender
  - Closes the WAL and database connections

# Example Usage

Development without authentication:

	export AUTH_MODE=none
	export DUCKDB_PATH=./callscope.duckdb
	./callscope

Production with JWT:

	export JWT_SECRET=$(openssl rand -base64 32)
	export ADMIN_USERNAME=admin
	export ADMIN_PASSWORD=secure-password
	./callscope
*/
package main
