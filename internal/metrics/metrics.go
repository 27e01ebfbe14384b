// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package metrics provides Prometheus instrumentation for production
// observability:
//   - Database query performance (DuckDB)
//   - API endpoint latency and throughput
//   - Session assembly timing
//   - Report ingest pipeline (NATS, WAL, batching)
//   - WebSocket connections
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connection_pool_size",
			Help: "Current number of database connections in use",
		},
	)

	// Session Assembly Metrics
	SessionBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "session_build_duration_seconds",
			Help:    "Duration of session assembly in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"}, // "media", "details"
	)

	SessionLegCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "session_leg_count",
			Help:    "Number of call legs assembled per session request",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		},
	)

	SessionReportCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "session_report_count",
			Help:    "Number of raw reports folded per session request",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Report Ingest Metrics
	ReportsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_accepted_total",
			Help: "Total number of reports accepted for ingest",
		},
		[]string{"kind"}, // "rtp", "rtcp", "sip"
	)

	ReportsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_rejected_total",
			Help: "Total number of reports rejected at ingest",
		},
		[]string{"reason"}, // "validation", "parse", "capacity"
	)

	// NATS Event Processing Metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSMessagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_processed_total",
			Help: "Total number of messages successfully processed",
		},
	)

	NATSMessagesDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_deduplicated_total",
			Help: "Total number of messages skipped due to deduplication",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of messages that failed to parse",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_processing_duration_seconds",
			Help:    "Duration of NATS message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	NATSBatchFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_batch_flush_duration_seconds",
			Help:    "Duration of batch flush operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	NATSBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_batch_size",
			Help:    "Number of reports in each batch flush",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	NATSConsumerLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nats_consumer_lag",
			Help: "Number of pending messages in NATS consumer",
		},
	)

	// Write-Ahead Log Metrics
	WALEntriesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_entries_written_total",
			Help: "Total number of reports journaled to the WAL",
		},
	)

	WALEntriesConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_entries_confirmed_total",
			Help: "Total number of WAL entries confirmed after publish",
		},
	)

	WALEntriesPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wal_entries_pending",
			Help: "Current number of unconfirmed WAL entries",
		},
	)

	WALRetryAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_retry_attempts_total",
			Help: "Total number of WAL republish attempts",
		},
	)

	WALRetryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_retry_failures_total",
			Help: "Total number of failed WAL republish attempts",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages to keep label cardinality bounded
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSessionBuild records session assembly timing and sizes.
func RecordSessionBuild(kind string, duration time.Duration, legs, reports int) {
	SessionBuildDuration.WithLabelValues(kind).Observe(duration.Seconds())
	SessionLegCount.Observe(float64(legs))
	SessionReportCount.Observe(float64(reports))
}

// RecordReportAccepted records a report accepted for ingest.
func RecordReportAccepted(kind string) {
	ReportsAccepted.WithLabelValues(kind).Inc()
}

// RecordReportRejected records a report rejected at ingest.
func RecordReportRejected(reason string) {
	ReportsRejected.WithLabelValues(reason).Inc()
}

// RecordNATSPublish records a message being published to NATS.
func RecordNATSPublish() {
	NATSMessagesPublished.Inc()
}

// RecordNATSConsume records a message being consumed from NATS.
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordNATSProcessed records a message being successfully processed.
func RecordNATSProcessed(duration time.Duration) {
	NATSMessagesProcessed.Inc()
	NATSProcessingDuration.Observe(duration.Seconds())
}

// RecordNATSParseFailure records a message that failed to parse.
func RecordNATSParseFailure() {
	NATSMessagesParseFailed.Inc()
}

// RecordNATSDeduplicated records a message skipped due to deduplication.
func RecordNATSDeduplicated() {
	NATSMessagesDeduplicated.Inc()
}

// RecordBatchFlush records a batch flush operation.
func RecordBatchFlush(count int, duration time.Duration) {
	NATSBatchSize.Observe(float64(count))
	NATSBatchFlushDuration.Observe(duration.Seconds())
}

// RecordWALWrite records a report journaled to the WAL.
func RecordWALWrite() {
	WALEntriesWritten.Inc()
	WALEntriesPending.Inc()
}

// RecordWALConfirm records a WAL entry confirmed after publish.
func RecordWALConfirm() {
	WALEntriesConfirmed.Inc()
	WALEntriesPending.Dec()
}

// RecordWALRetry records a WAL republish attempt and its outcome.
func RecordWALRetry(success bool) {
	WALRetryAttempts.Inc()
	if !success {
		WALRetryFailures.Inc()
	}
}

// SetWALPending sets the pending WAL entry gauge from a scan.
func SetWALPending(count int64) {
	WALEntriesPending.Set(float64(count))
}

// RecordCircuitBreakerState updates the state gauge for a breaker.
func RecordCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRequest records a request outcome through a breaker.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}
