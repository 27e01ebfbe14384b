// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package wal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/metrics"
)

// Publisher republishes journaled entries to the broker.
type Publisher interface {
	PublishEntry(ctx context.Context, entry *Entry) error
}

// RetryLoop periodically republishes pending entries with exponential
// backoff. Entries that exceed MaxRetries or their TTL are dropped.
type RetryLoop struct {
	wal       *BadgerWAL
	publisher Publisher
	config    Config

	mu       sync.Mutex
	running  bool
	stopping bool
	stopDone chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewRetryLoop creates a retry loop over the given log and publisher.
func NewRetryLoop(w *BadgerWAL, publisher Publisher) (*RetryLoop, error) {
	if w == nil {
		return nil, fmt.Errorf("WAL cannot be nil")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher cannot be nil")
	}
	return &RetryLoop{
		wal:       w,
		publisher: publisher,
		config:    w.GetConfig(),
	}, nil
}

// Start begins the retry loop. If a Stop is in progress it waits for
// the previous loop to finish first.
func (r *RetryLoop) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("retry loop already running")
	}
	if r.stopping {
		stopDone := r.stopDone
		r.mu.Unlock()
		<-stopDone
		r.mu.Lock()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true
	done := r.done
	r.mu.Unlock()

	go r.runWithContext(loopCtx, done)

	logging.Info().
		Dur("interval", r.config.RetryInterval).
		Int("max_retries", r.config.MaxRetries).
		Msg("WAL retry loop started")
	return nil
}

// Stop halts the retry loop and waits for the current pass to finish.
func (r *RetryLoop) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.stopping = true
	r.stopDone = make(chan struct{})
	cancel := r.cancel
	done := r.done
	stopDone := r.stopDone
	r.mu.Unlock()

	cancel()
	<-done

	r.mu.Lock()
	r.stopping = false
	r.mu.Unlock()
	close(stopDone)

	logging.Info().Msg("WAL retry loop stopped")
}

// IsRunning reports whether the retry loop is active.
func (r *RetryLoop) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *RetryLoop) runWithContext(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.retryPending(ctx)
		}
	}
}

type retryResult int

const (
	retrySuccess retryResult = iota
	retryFailed
	retryExpired
	retryMaxRetried
	retrySkipped
)

// retryPending runs one pass over all pending entries.
func (r *RetryLoop) retryPending(ctx context.Context) {
	entries, err := r.wal.GetPending(ctx)
	if err != nil {
		if err != ErrWALClosed {
			logging.Warn().Err(err).Msg("WAL retry loop failed to read pending entries")
		}
		return
	}
	if len(entries) == 0 {
		return
	}

	var succeeded, failed, dropped int
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch r.processEntry(ctx, entry) {
		case retrySuccess:
			succeeded++
		case retryFailed:
			failed++
		case retryExpired, retryMaxRetried:
			dropped++
		case retrySkipped:
		}
	}

	if succeeded > 0 || failed > 0 || dropped > 0 {
		logging.Debug().
			Int("pending", len(entries)).
			Int("succeeded", succeeded).
			Int("failed", failed).
			Int("dropped", dropped).
			Msg("WAL retry pass complete")
	}
}

func (r *RetryLoop) processEntry(ctx context.Context, entry *Entry) retryResult {
	if !r.wal.TryClaimEntry(entry.ID) {
		return retrySkipped
	}
	defer r.wal.ReleaseEntry(entry.ID)

	if r.config.EntryTTL > 0 && time.Since(entry.CreatedAt) > r.config.EntryTTL {
		walEntriesExpiredTotal.Inc()
		logging.Warn().
			Str("entry_id", entry.ID).
			Time("created_at", entry.CreatedAt).
			Msg("WAL entry expired, dropping")
		if err := r.wal.DeleteEntry(ctx, entry.ID); err != nil && err != ErrEntryNotFound {
			logging.Warn().Err(err).Str("entry_id", entry.ID).Msg("WAL failed to delete expired entry")
		}
		return retryExpired
	}

	if entry.Attempts >= r.config.MaxRetries {
		walMaxRetriesTotal.Inc()
		logging.Error().
			Str("entry_id", entry.ID).
			Int("attempts", entry.Attempts).
			Str("last_error", entry.LastError).
			Msg("WAL entry exceeded max retries, dropping")
		if err := r.wal.DeleteEntry(ctx, entry.ID); err != nil && err != ErrEntryNotFound {
			logging.Warn().Err(err).Str("entry_id", entry.ID).Msg("WAL failed to delete exhausted entry")
		}
		return retryMaxRetried
	}

	if !r.isReadyForRetry(entry) {
		return retrySkipped
	}

	if err := r.attemptPublish(ctx, entry); err != nil {
		metrics.RecordWALRetry(false)
		if updateErr := r.wal.UpdateAttempt(ctx, entry.ID, err.Error()); updateErr != nil && updateErr != ErrEntryNotFound {
			logging.Warn().Err(updateErr).Str("entry_id", entry.ID).Msg("WAL failed to record attempt")
		}
		return retryFailed
	}

	metrics.RecordWALRetry(true)
	if err := r.wal.Confirm(ctx, entry.ID); err != nil && err != ErrEntryNotFound {
		logging.Warn().Err(err).Str("entry_id", entry.ID).Msg("WAL failed to confirm republished entry")
	}
	return retrySuccess
}

// isReadyForRetry applies exponential backoff from the last attempt.
func (r *RetryLoop) isReadyForRetry(entry *Entry) bool {
	if entry.Attempts == 0 {
		return true
	}
	return time.Since(entry.LastAttemptAt) >= r.calculateBackoff(entry.Attempts)
}

// calculateBackoff returns RetryBackoff * 2^(attempts-1), capped at
// five minutes.
func (r *RetryLoop) calculateBackoff(attempts int) time.Duration {
	const maxBackoff = 5 * time.Minute

	// Shift overflows past ~50 doublings.
	if attempts > 50 {
		return maxBackoff
	}

	backoff := r.config.RetryBackoff * (1 << (attempts - 1))
	if backoff > maxBackoff || backoff <= 0 {
		return maxBackoff
	}
	return backoff
}

func (r *RetryLoop) attemptPublish(ctx context.Context, entry *Entry) error {
	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return r.publisher.PublishEntry(publishCtx, entry)
}

// RetryStats summarizes the pending backlog.
type RetryStats struct {
	PendingCount  int64
	TotalAttempts int64
	MaxAttempts   int
	OldestEntry   time.Time
}

// GetStats scans pending entries and aggregates retry statistics.
func (r *RetryLoop) GetStats(ctx context.Context) (RetryStats, error) {
	entries, err := r.wal.GetPending(ctx)
	if err != nil {
		return RetryStats{}, err
	}

	stats := RetryStats{PendingCount: int64(len(entries))}
	for _, entry := range entries {
		stats.TotalAttempts += int64(entry.Attempts)
		if entry.Attempts > stats.MaxAttempts {
			stats.MaxAttempts = entry.Attempts
		}
		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
	}
	return stats, nil
}
