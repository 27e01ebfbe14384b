// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/callscope/internal/logging"
)

// slowRequestThreshold marks requests worth logging individually.
const slowRequestThreshold = 1000 * time.Millisecond

// RequestMetrics is a single observed request.
type RequestMetrics struct {
	Endpoint   string
	Method     string
	Duration   time.Duration
	StatusCode int
	Timestamp  time.Time
}

// EndpointStats summarizes observed latency for one endpoint.
type EndpointStats struct {
	Endpoint     string        `json:"endpoint"`
	Count        int           `json:"count"`
	ErrorCount   int           `json:"error_count"`
	MinDuration  time.Duration `json:"min_duration"`
	MaxDuration  time.Duration `json:"max_duration"`
	AvgDuration  time.Duration `json:"avg_duration"`
	P50Duration  time.Duration `json:"p50_duration"`
	P95Duration  time.Duration `json:"p95_duration"`
	P99Duration  time.Duration `json:"p99_duration"`
	LastObserved time.Time     `json:"last_observed"`
}

// PerformanceMonitor keeps a sliding window of request timings and derives
// per-endpoint percentile statistics. It backs the health endpoint's latency
// section and logs slow requests as they occur.
type PerformanceMonitor struct {
	mu         sync.RWMutex
	window     []RequestMetrics
	windowSize int
}

// NewPerformanceMonitor creates a monitor retaining the last windowSize
// requests. Sizes below 1 fall back to 1000.
func NewPerformanceMonitor(windowSize int) *PerformanceMonitor {
	if windowSize < 1 {
		windowSize = 1000
	}
	return &PerformanceMonitor{
		window:     make([]RequestMetrics, 0, windowSize),
		windowSize: windowSize,
	}
}

// Record adds one observation, evicting the oldest when the window is full.
func (pm *PerformanceMonitor) Record(m RequestMetrics) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.window) >= pm.windowSize {
		pm.window = pm.window[1:]
	}
	pm.window = append(pm.window, m)
}

// Stats computes per-endpoint statistics over the current window.
func (pm *PerformanceMonitor) Stats() map[string]EndpointStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	byEndpoint := make(map[string][]RequestMetrics)
	for _, m := range pm.window {
		byEndpoint[m.Endpoint] = append(byEndpoint[m.Endpoint], m)
	}

	stats := make(map[string]EndpointStats, len(byEndpoint))
	for endpoint, ms := range byEndpoint {
		stats[endpoint] = computeStats(endpoint, ms)
	}
	return stats
}

func computeStats(endpoint string, ms []RequestMetrics) EndpointStats {
	durations := make([]time.Duration, len(ms))
	var total time.Duration
	var errorCount int
	var last time.Time

	for i, m := range ms {
		durations[i] = m.Duration
		total += m.Duration
		if m.StatusCode >= 500 {
			errorCount++
		}
		if m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	return EndpointStats{
		Endpoint:     endpoint,
		Count:        len(ms),
		ErrorCount:   errorCount,
		MinDuration:  durations[0],
		MaxDuration:  durations[len(durations)-1],
		AvgDuration:  total / time.Duration(len(ms)),
		P50Duration:  percentile(durations, 50),
		P95Duration:  percentile(durations, 95),
		P99Duration:  percentile(durations, 99),
		LastObserved: last,
	}
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := (len(sorted) * p) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

type performanceResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *performanceResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records every request into the monitor and warns on slow ones.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		pw := &performanceResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(pw, r)

		duration := time.Since(start)
		pm.Record(RequestMetrics{
			Endpoint:   r.URL.Path,
			Method:     r.Method,
			Duration:   duration,
			StatusCode: pw.statusCode,
			Timestamp:  time.Now(),
		})

		if duration > slowRequestThreshold {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", duration).
				Int("status", pw.statusCode).
				Msg("Slow request")
		}
	})
}
