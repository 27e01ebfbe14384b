// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authorization metrics stay package-local: they are only meaningful when
// the enforcer is wired, and keeping them here avoids an import cycle with
// the app-wide metrics package.
var (
	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callscope_authz_decisions_total",
			Help: "Total authorization decisions by outcome",
		},
		[]string{"role", "action", "decision"},
	)

	decisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "callscope_authz_decision_duration_seconds",
			Help:    "Authorization decision latency",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01},
		},
	)

	deniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callscope_authz_denied_total",
			Help: "Total denied authorization requests",
		},
		[]string{"role", "action"},
	)

	cacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "callscope_authz_cache_hits_total",
			Help: "Authorization decision cache hits",
		},
	)

	cacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "callscope_authz_cache_misses_total",
			Help: "Authorization decision cache misses",
		},
	)
)

// RecordDecision records one authorization outcome.
func RecordDecision(role, action string, allowed bool, duration time.Duration) {
	decision := "allow"
	if !allowed {
		decision = "deny"
		deniedTotal.WithLabelValues(role, action).Inc()
	}
	decisionsTotal.WithLabelValues(role, action, decision).Inc()
	decisionDuration.Observe(duration.Seconds())
}

// RecordCacheHit counts a decision served from the cache.
func RecordCacheHit() {
	cacheHitsTotal.Inc()
}

// RecordCacheMiss counts a decision that required full enforcement.
func RecordCacheMiss() {
	cacheMissesTotal.Inc()
}
