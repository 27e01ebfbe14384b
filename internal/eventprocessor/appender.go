// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/metrics"
	"github.com/tomtom215/callscope/internal/models"
)

// ReportStore persists consumed report events. Implemented by the
// database layer and by mock stores in tests.
type ReportStore interface {
	// InsertMediaReportsBatch inserts media reports, skipping rows
	// whose ID already exists. Returns inserted and duplicate counts.
	InsertMediaReportsBatch(ctx context.Context, reports []*models.MediaReport) (int, int, error)

	// InsertSIPReport inserts a single SIP signaling report.
	InsertSIPReport(ctx context.Context, report *models.SIPReport) error
}

// AppenderStats holds runtime statistics for monitoring.
type AppenderStats struct {
	EventsReceived int64
	EventsFlushed  int64
	RowsDuplicated int64
	FlushCount     int64
	ErrorCount     int64
	LastFlushTime  time.Time
	LastError      string
	BufferSize     int
	AvgFlushTime   time.Duration
}

// Appender buffers consumed report events and writes them to the store
// in batches, when the batch size is reached or the flush interval
// elapses. Failed chunks stay in the buffer for retry.
type Appender struct {
	store  ReportStore
	config AppenderConfig
	events *logging.EventLogger

	mu     sync.Mutex
	buffer []*ReportEvent

	// flushMu serializes flushes so timer-based and batch-triggered
	// flushes cannot interleave and reorder inserts.
	flushMu sync.Mutex

	closed   atomic.Bool
	started  atomic.Bool
	stopChan chan struct{}
	doneChan chan struct{}
	flushWg  sync.WaitGroup

	eventsReceived atomic.Int64
	eventsFlushed  atomic.Int64
	rowsDuplicated atomic.Int64
	flushCount     atomic.Int64
	errorCount     atomic.Int64
	lastFlushTime  atomic.Value // time.Time
	lastError      atomic.Value // string
	totalFlushTime atomic.Int64 // nanoseconds
}

// NewAppender creates an appender backed by the given store.
func NewAppender(store ReportStore, cfg AppenderConfig) (*Appender, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if cfg.FlushInterval <= 0 {
		return nil, fmt.Errorf("flush interval must be positive")
	}

	a := &Appender{
		store:    store,
		config:   cfg,
		events:   logging.NewEventLogger(),
		buffer:   make([]*ReportEvent, 0, cfg.BatchSize),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	a.lastFlushTime.Store(time.Time{})
	a.lastError.Store("")

	return a, nil
}

// Start begins the periodic flush timer. Idempotent.
func (a *Appender) Start(ctx context.Context) error {
	if a.closed.Load() {
		return fmt.Errorf("appender is closed")
	}
	if a.started.Swap(true) {
		return nil
	}

	go a.flushLoop(ctx)
	return nil
}

// Append adds an event to the buffer. Reaching the batch size triggers
// an async flush.
func (a *Appender) Append(ctx context.Context, event *ReportEvent) error {
	if a.closed.Load() {
		return fmt.Errorf("appender is closed")
	}

	a.mu.Lock()
	a.buffer = append(a.buffer, event)
	bufferSize := len(a.buffer)
	a.eventsReceived.Add(1)
	needsFlush := bufferSize >= a.config.BatchSize
	a.mu.Unlock()

	if needsFlush {
		a.flushWg.Add(1)
		go func() {
			defer a.flushWg.Done()
			// The caller's context is the message handler's and may be
			// canceled the moment the handler returns. The flush must
			// outlive it, so detach.
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			a.doFlush(flushCtx)
		}()
	}

	return nil
}

// Flush writes all buffered events synchronously. Waits for in-flight
// async flushes first.
func (a *Appender) Flush(ctx context.Context) error {
	a.flushWg.Wait()
	return a.doFlushSync(ctx)
}

// Close stops the flush loop and flushes pending events. Idempotent.
func (a *Appender) Close() error {
	if a.closed.Swap(true) {
		return nil
	}

	if a.started.Load() {
		close(a.stopChan)
		<-a.doneChan
	}

	a.flushWg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.doFlushSync(ctx)
}

// Stats returns current runtime statistics.
func (a *Appender) Stats() AppenderStats {
	a.mu.Lock()
	bufferSize := len(a.buffer)
	a.mu.Unlock()

	var avgFlushTime time.Duration
	if count := a.flushCount.Load(); count > 0 {
		avgFlushTime = time.Duration(a.totalFlushTime.Load() / count)
	}

	var lastFlushTime time.Time
	if t, ok := a.lastFlushTime.Load().(time.Time); ok {
		lastFlushTime = t
	}
	var lastError string
	if e, ok := a.lastError.Load().(string); ok {
		lastError = e
	}

	return AppenderStats{
		EventsReceived: a.eventsReceived.Load(),
		EventsFlushed:  a.eventsFlushed.Load(),
		RowsDuplicated: a.rowsDuplicated.Load(),
		FlushCount:     a.flushCount.Load(),
		ErrorCount:     a.errorCount.Load(),
		LastFlushTime:  lastFlushTime,
		LastError:      lastError,
		BufferSize:     bufferSize,
		AvgFlushTime:   avgFlushTime,
	}
}

// flushLoop drives interval flushes. The parent context only signals
// shutdown; each flush runs under its own detached timeout.
func (a *Appender) flushLoop(ctx context.Context) {
	defer close(a.doneChan)

	ticker := time.NewTicker(a.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stopChan:
			return
		case <-ticker.C:
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			a.doFlush(flushCtx)
			cancel()
		}
	}
}

func (a *Appender) doFlush(ctx context.Context) {
	if err := a.doFlushSync(ctx); err != nil {
		a.lastError.Store(err.Error())
		logging.Debug().Err(err).Msg("Async flush error")
	}
}

// doFlushSync takes ownership of the buffer and writes it to the store
// in BatchSize chunks. On a chunk error the unflushed remainder is
// restored for retry; media rows that were already written dedupe on
// their primary key when retried.
func (a *Appender) doFlushSync(ctx context.Context) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	if len(a.buffer) == 0 {
		a.mu.Unlock()
		return nil
	}
	events := a.buffer
	a.buffer = make([]*ReportEvent, 0, a.config.BatchSize)
	a.mu.Unlock()

	totalFlushed := 0
	totalStart := time.Now()

	for start := 0; start < len(events); start += a.config.BatchSize {
		end := start + a.config.BatchSize
		if end > len(events) {
			end = len(events)
		}
		chunk := events[start:end]

		chunkStart := time.Now()
		err := a.flushChunk(ctx, chunk)
		chunkElapsed := time.Since(chunkStart)

		if err != nil {
			unflushed := events[start:]
			a.mu.Lock()
			a.buffer = append(unflushed, a.buffer...)
			a.mu.Unlock()

			a.errorCount.Add(1)
			a.lastError.Store(err.Error())
			if totalFlushed > 0 {
				a.eventsFlushed.Add(int64(totalFlushed))
				a.flushCount.Add(1)
			}
			return fmt.Errorf("flush events (chunk %d-%d): %w", start, end, err)
		}

		totalFlushed += len(chunk)
		metrics.RecordBatchFlush(len(chunk), chunkElapsed)
	}

	totalElapsed := time.Since(totalStart)
	a.events.LogBatchFlush(ctx, totalFlushed, totalElapsed.Milliseconds())

	a.eventsFlushed.Add(int64(totalFlushed))
	a.flushCount.Add(1)
	a.totalFlushTime.Add(totalElapsed.Nanoseconds())
	a.lastFlushTime.Store(time.Now())
	a.lastError.Store("")
	return nil
}

// flushChunk partitions a chunk by payload type and writes media
// reports as one batch and SIP reports individually.
func (a *Appender) flushChunk(ctx context.Context, chunk []*ReportEvent) error {
	media := make([]*models.MediaReport, 0, len(chunk))
	var sip []*models.SIPReport
	for _, ev := range chunk {
		switch {
		case ev.Media != nil:
			media = append(media, ev.Media)
		case ev.SIP != nil:
			sip = append(sip, ev.SIP)
		}
	}

	if len(media) > 0 {
		_, duplicates, err := a.store.InsertMediaReportsBatch(ctx, media)
		if err != nil {
			return fmt.Errorf("insert media reports: %w", err)
		}
		if duplicates > 0 {
			a.rowsDuplicated.Add(int64(duplicates))
		}
	}

	for _, report := range sip {
		if err := a.store.InsertSIPReport(ctx, report); err != nil {
			return fmt.Errorf("insert SIP report %s: %w", report.CallID, err)
		}
	}

	return nil
}
