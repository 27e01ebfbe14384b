// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

/*
Package eventprocessor provides durable report ingestion over NATS JetStream.

Quality reports arriving at the ingest API are wrapped in a ReportEvent
envelope, published to a JetStream stream, and consumed by a durable queue
group that batches them into the analytics store. The pipeline decouples
capture-agent bursts from database write throughput and survives restarts
without losing accepted reports.

Components:

  - ReportEvent: versioned envelope carrying one media or SIP report
  - Serializer: JSON encoding with validation on the publish side
  - EmbeddedServer: in-process NATS server with JetStream for
    single-instance deployments
  - StreamManager: idempotent stream provisioning (reports.>)
  - Publisher: Watermill NATS publisher with circuit breaker protection
    and message ID deduplication
  - Subscriber: durable queue-group JetStream consumption
  - Appender: batch buffering with interval and size triggered flushes
  - ReportConsumer: subscribe → deserialize → dedup → append → broadcast

Topics follow reports.<kind>.<stream>, for example reports.rtp.rtp_raw or
reports.sip.sip_call; consumers subscribe to the reports.> wildcard.

Event processing is optional: when nats.enabled is false the ingest API
writes directly to the store and none of these components start.
*/
package eventprocessor
