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

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/metrics"
)

// MessageSource is the subscription surface the consumer needs.
// Implemented by Subscriber and by channel-backed fakes in tests.
type MessageSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// Broadcaster pushes raw report payloads to connected live clients.
// Implemented by the websocket hub.
type Broadcaster interface {
	BroadcastRaw(data []byte)
}

// ConsumerConfig holds report consumer settings.
type ConsumerConfig struct {
	// Topic is the subject pattern to subscribe to.
	Topic string

	// EnableDeduplication drops events whose EventID was seen within
	// the deduplication window.
	EnableDeduplication bool

	DeduplicationWindow time.Duration
	MaxDedupEntries     int
}

// DefaultConsumerConfig returns consumer settings with defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Topic:               TopicWildcard,
		EnableDeduplication: true,
		DeduplicationWindow: 5 * time.Minute,
		MaxDedupEntries:     10000,
	}
}

// ConsumerStats holds runtime statistics for monitoring.
type ConsumerStats struct {
	MessagesReceived  int64
	MessagesProcessed int64
	ParseErrors       int64
	DuplicatesSkipped int64
	LastMessageTime   time.Time
}

// ReportConsumer consumes report events from JetStream, deduplicates
// them, and hands them to the Appender for batched persistence.
// Successfully processed payloads are also forwarded to the broadcaster
// for live dashboards.
type ReportConsumer struct {
	source      MessageSource
	appender    *Appender
	broadcaster Broadcaster
	config      ConsumerConfig
	events      *logging.EventLogger

	dedup *dedupCache

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	messagesReceived  atomic.Int64
	messagesProcessed atomic.Int64
	parseErrors       atomic.Int64
	duplicatesSkipped atomic.Int64
	lastMessageTime   atomic.Value // time.Time
}

// NewReportConsumer creates a consumer. The appender must be started
// separately. broadcaster may be nil when no live clients exist.
func NewReportConsumer(source MessageSource, appender *Appender, broadcaster Broadcaster, cfg *ConsumerConfig) (*ReportConsumer, error) {
	if source == nil {
		return nil, fmt.Errorf("message source required")
	}
	if appender == nil {
		return nil, fmt.Errorf("appender required")
	}
	if cfg == nil {
		defaults := DefaultConsumerConfig()
		cfg = &defaults
	}

	c := &ReportConsumer{
		source:      source,
		appender:    appender,
		broadcaster: broadcaster,
		config:      *cfg,
		events:      logging.NewEventLogger(),
		dedup:       newDedupCache(cfg.DeduplicationWindow, cfg.MaxDedupEntries),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	c.lastMessageTime.Store(time.Time{})

	return c, nil
}

// Start subscribes and begins consuming. Returns immediately;
// consumption happens in a goroutine.
func (c *ReportConsumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return nil
	}

	messages, err := c.source.Subscribe(ctx, c.config.Topic)
	if err != nil {
		c.running.Store(false)
		return fmt.Errorf("subscribe to %s: %w", c.config.Topic, err)
	}

	go c.consumeLoop(ctx, messages)

	c.events.LogSubscriptionStarted(c.config.Topic, "")
	return nil
}

// Stop drains buffered messages and stops the consumer.
func (c *ReportConsumer) Stop() {
	if !c.running.Swap(false) {
		return
	}

	close(c.stopCh)
	<-c.doneCh

	c.events.LogSubscriptionStopped(c.config.Topic)
}

// IsRunning reports whether the consumer is active.
func (c *ReportConsumer) IsRunning() bool {
	return c.running.Load()
}

// Stats returns current runtime statistics.
func (c *ReportConsumer) Stats() ConsumerStats {
	var lastTime time.Time
	if t, ok := c.lastMessageTime.Load().(time.Time); ok {
		lastTime = t
	}
	return ConsumerStats{
		MessagesReceived:  c.messagesReceived.Load(),
		MessagesProcessed: c.messagesProcessed.Load(),
		ParseErrors:       c.parseErrors.Load(),
		DuplicatesSkipped: c.duplicatesSkipped.Load(),
		LastMessageTime:   lastTime,
	}
}

func (c *ReportConsumer) consumeLoop(ctx context.Context, messages <-chan *message.Message) {
	defer func() {
		c.running.Store(false)
		close(c.doneCh)
	}()

	for {
		select {
		case <-ctx.Done():
			c.drainMessages(messages)
			return
		case <-c.stopCh:
			c.drainMessages(messages)
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.processMessage(ctx, msg)
		}
	}
}

// drainMessages processes buffered messages on shutdown so accepted
// reports are not lost. Bounded by a short timeout.
func (c *ReportConsumer) drainMessages(messages <-chan *message.Message) {
	drainTimeout := time.After(100 * time.Millisecond)
	drained := 0

	for {
		select {
		case <-drainTimeout:
			c.logDrained(drained)
			return
		case msg, ok := <-messages:
			if !ok {
				c.logDrained(drained)
				return
			}
			// Original context is canceled by now.
			c.processMessage(context.Background(), msg)
			drained++
		default:
			c.logDrained(drained)
			return
		}
	}
}

func (c *ReportConsumer) logDrained(count int) {
	if count > 0 {
		logging.Info().
			Int("count", count).
			Msg("Report consumer drained messages during shutdown")
	}
}

func (c *ReportConsumer) processMessage(ctx context.Context, msg *message.Message) {
	startTime := time.Now()
	c.messagesReceived.Add(1)
	c.lastMessageTime.Store(startTime)

	metrics.RecordNATSConsume()

	var event ReportEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.parseErrors.Add(1)
		metrics.RecordNATSParseFailure()
		logging.Warn().
			Str("message_uuid", msg.UUID).
			Err(err).
			Msg("Failed to parse report event")

		// Malformed payloads never parse on redelivery either.
		msg.Ack()
		return
	}
	event.EnsureSchemaVersion()

	if c.config.EnableDeduplication && c.dedup.isDuplicate(event.EventID) {
		c.duplicatesSkipped.Add(1)
		metrics.RecordNATSDeduplicated()
		c.events.LogDuplicate(ctx, event.EventID, "event_id seen within window")
		msg.Ack()
		return
	}

	if err := c.appender.Append(ctx, &event); err != nil {
		c.events.LogReportFailed(ctx, event.EventID, err)
		msg.Nack()
		return
	}

	if c.config.EnableDeduplication {
		c.dedup.record(event.EventID)
	}

	if c.broadcaster != nil {
		c.broadcaster.BroadcastRaw(msg.Payload)
	}

	c.messagesProcessed.Add(1)
	metrics.RecordNATSProcessed(time.Since(startTime))
	msg.Ack()
}

// dedupCache remembers recently seen event IDs. Expired entries are
// evicted lazily on insert; when the cache is full the oldest entry
// goes first.
type dedupCache struct {
	mu         sync.Mutex
	seen       map[string]time.Time
	ttl        time.Duration
	maxEntries int
}

func newDedupCache(ttl time.Duration, maxEntries int) *dedupCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &dedupCache{
		seen:       make(map[string]time.Time),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (d *dedupCache) isDuplicate(eventID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	seenAt, ok := d.seen[eventID]
	if !ok {
		return false
	}
	if time.Since(seenAt) > d.ttl {
		delete(d.seen, eventID)
		return false
	}
	return true
}

func (d *dedupCache) record(eventID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.seen) >= d.maxEntries {
		d.evictLocked()
	}
	d.seen[eventID] = time.Now()
}

func (d *dedupCache) evictLocked() {
	now := time.Now()
	for id, seenAt := range d.seen {
		if now.Sub(seenAt) > d.ttl {
			delete(d.seen, id)
		}
	}
	if len(d.seen) < d.maxEntries {
		return
	}

	var oldestID string
	var oldestAt time.Time
	for id, seenAt := range d.seen {
		if oldestID == "" || seenAt.Before(oldestAt) {
			oldestID = id
			oldestAt = seenAt
		}
	}
	if oldestID != "" {
		delete(d.seen, oldestID)
	}
}

func (d *dedupCache) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
