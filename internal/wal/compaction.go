// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package wal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/callscope/internal/logging"
)

// Compactor periodically removes confirmed and expired entries and
// runs Badger value-log garbage collection.
type Compactor struct {
	wal    *BadgerWAL
	config Config

	mu               sync.Mutex
	running          bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	lastRun          time.Time
	lastEntriesCount int64
}

// NewCompactor creates a compactor over the given log.
func NewCompactor(w *BadgerWAL) (*Compactor, error) {
	if w == nil {
		return nil, fmt.Errorf("WAL cannot be nil")
	}
	return &Compactor{
		wal:    w,
		config: w.GetConfig(),
	}, nil
}

// Start begins periodic compaction.
func (c *Compactor) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("compactor already running")
	}

	compactCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	c.wg.Add(1)
	go c.run(compactCtx)

	logging.Info().
		Dur("interval", c.config.CompactInterval).
		Msg("WAL compactor started")
	return nil
}

// Stop halts compaction and waits for any in-flight run.
func (c *Compactor) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	c.wg.Wait()

	logging.Info().Msg("WAL compactor stopped")
}

// IsRunning reports whether the compactor loop is active.
func (c *Compactor) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Compactor) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CompactInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.compact(ctx); err != nil {
				logging.Warn().Err(err).Msg("WAL compaction failed")
			}
		}
	}
}

// compact removes confirmed entries, drops expired pending entries,
// then reclaims value-log space.
func (c *Compactor) compact(ctx context.Context) error {
	start := time.Now()

	confirmed, err := c.deleteConfirmedEntries(ctx)
	if err != nil {
		return fmt.Errorf("delete confirmed entries: %w", err)
	}

	expired, err := c.deleteExpiredEntries(ctx)
	if err != nil {
		return fmt.Errorf("delete expired entries: %w", err)
	}

	if err := c.wal.RunGC(); err != nil && !errors.Is(err, ErrWALClosed) {
		logging.Warn().Err(err).Msg("WAL value log GC failed")
	}

	walCompactionsTotal.Inc()
	walEntriesCompactedTotal.Add(float64(confirmed))

	c.mu.Lock()
	c.lastRun = time.Now()
	c.lastEntriesCount = confirmed + expired
	c.mu.Unlock()

	c.wal.mu.Lock()
	c.wal.lastCompaction = time.Now()
	c.wal.mu.Unlock()

	if confirmed > 0 || expired > 0 {
		logging.Info().
			Int64("confirmed_removed", confirmed).
			Int64("expired_removed", expired).
			Dur("elapsed", time.Since(start)).
			Msg("WAL compaction complete")
	}
	return nil
}

// deleteConfirmedEntries removes all confirmed entries. Keys are
// collected first because Badger cannot delete while iterating.
func (c *Compactor) deleteConfirmedEntries(ctx context.Context) (int64, error) {
	var deleted int64

	err := c.wal.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		prefix := []byte(prefixConfirmed)
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				it.Close()
				return ctx.Err()
			default:
			}
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete key %s: %w", key, err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return deleted, err
	}
	return deleted, nil
}

// deleteExpiredEntries removes pending entries older than EntryTTL.
// Badger's own TTL expiry handles most cases; this catches entries
// written before a TTL change.
func (c *Compactor) deleteExpiredEntries(ctx context.Context) (int64, error) {
	if c.config.EntryTTL <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-c.config.EntryTTL)
	var deleted int64

	err := c.wal.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)

		prefix := []byte(prefixPending)
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				it.Close()
				return ctx.Err()
			default:
			}

			item := it.Item()
			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				continue
			}

			if entry.CreatedAt.Before(cutoff) {
				keys = append(keys, item.KeyCopy(nil))
			}
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete key %s: %w", key, err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return deleted, err
	}

	if deleted > 0 {
		walEntriesExpiredTotal.Add(float64(deleted))
	}
	return deleted, nil
}

// RunNow triggers an immediate compaction outside the schedule.
func (c *Compactor) RunNow(ctx context.Context) error {
	return c.compact(ctx)
}

// CompactorStats describes the most recent compaction run.
type CompactorStats struct {
	LastRun          time.Time
	LastEntriesCount int64
}

// GetStats returns stats for the most recent run.
func (c *Compactor) GetStats() CompactorStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CompactorStats{
		LastRun:          c.lastRun,
		LastEntriesCount: c.lastEntriesCount,
	}
}
