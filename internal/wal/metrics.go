// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package wal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	walWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "callscope_wal_write_duration_seconds",
		Help:    "Write-ahead log write latency",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	})

	walCompactionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callscope_wal_compactions_total",
		Help: "Total write-ahead log compaction runs",
	})

	walEntriesCompactedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callscope_wal_entries_compacted_total",
		Help: "Total confirmed entries removed by compaction",
	})

	walEntriesExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callscope_wal_entries_expired_total",
		Help: "Total pending entries dropped after exceeding their TTL",
	})

	walMaxRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callscope_wal_max_retries_exceeded_total",
		Help: "Total pending entries dropped after exhausting retries",
	})

	walDBSizeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "callscope_wal_db_size_bytes",
		Help: "On-disk size of the write-ahead log database",
	})
)

func observeWriteLatency(d time.Duration) {
	walWriteDuration.Observe(d.Seconds())
}

func observeDBSize(bytes int64) {
	walDBSizeBytes.Set(float64(bytes))
}
