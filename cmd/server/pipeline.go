// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/callscope/internal/api"
	"github.com/tomtom215/callscope/internal/config"
	"github.com/tomtom215/callscope/internal/database"
	"github.com/tomtom215/callscope/internal/eventprocessor"
	"github.com/tomtom215/callscope/internal/logging"
	ws "github.com/tomtom215/callscope/internal/websocket"
)

// Pipeline holds the ingest pipeline components for lifecycle
// management: embedded NATS server (optional), JetStream publisher and
// subscriber, report consumer, and the batch appender into the report
// store.
type Pipeline struct {
	server     *eventprocessor.EmbeddedServer
	conn       *natsgo.Conn
	publisher  *eventprocessor.Publisher
	subscriber *eventprocessor.Subscriber
	appender   *eventprocessor.Appender
	consumer   *eventprocessor.ReportConsumer

	mu      sync.Mutex
	running bool
}

// InitPipeline assembles the NATS ingest pipeline when NATS_ENABLED is
// set. Returns (nil, nil) when the pipeline is disabled; ingest then
// falls back to direct database appends.
//
// The pipeline is constructed here but not started: the supervisor tree
// owns its lifecycle through services.NewPipelineService.
func InitPipeline(ctx context.Context, cfg *config.Config, db *database.DB, hub *ws.Hub) (*Pipeline, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("Ingest pipeline disabled (NATS_ENABLED=false), reports append directly")
		return nil, nil
	}

	logging.Info().Msg("Initializing ingest pipeline")

	p := &Pipeline{}

	// Embedded server first, so its client URL feeds every other
	// component.
	var natsURL string
	if cfg.NATS.EmbeddedServer {
		server, err := eventprocessor.NewEmbeddedServer(eventprocessor.DefaultServerConfig(&cfg.NATS))
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		p.server = server
		natsURL = server.ClientURL()
	} else {
		natsURL = cfg.NATS.URL
		logging.Info().Str("url", natsURL).Msg("Using external NATS server")
	}

	// The REPORTS stream must exist before the wildcard subscriber
	// binds to it.
	nc, err := natsgo.Connect(natsURL,
		natsgo.Name("callscope-stream-init"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		p.closePartial()
		return nil, fmt.Errorf("connect to NATS at %s: %w", natsURL, err)
	}
	p.conn = nc

	streams, err := eventprocessor.NewStreamManager(nc)
	if err != nil {
		p.closePartial()
		return nil, fmt.Errorf("create stream manager: %w", err)
	}
	if err := streams.EnsureStream(ctx, eventprocessor.DefaultStreamConfig(&cfg.NATS)); err != nil {
		p.closePartial()
		return nil, fmt.Errorf("ensure stream %s: %w", eventprocessor.StreamName, err)
	}

	pubCfg := eventprocessor.DefaultPublisherConfig(&cfg.NATS)
	pubCfg.URL = natsURL
	publisher, err := eventprocessor.NewPublisher(pubCfg, nil)
	if err != nil {
		p.closePartial()
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	publisher.SetCircuitBreaker(eventprocessor.NewCircuitBreaker(eventprocessor.DefaultCircuitBreakerConfig()))
	p.publisher = publisher

	subCfg := eventprocessor.DefaultSubscriberConfig(&cfg.NATS)
	subCfg.URL = natsURL
	subscriber, err := eventprocessor.NewSubscriber(&subCfg, nil)
	if err != nil {
		p.closePartial()
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	p.subscriber = subscriber

	appender, err := eventprocessor.NewAppender(db, eventprocessor.DefaultAppenderConfig(&cfg.NATS))
	if err != nil {
		p.closePartial()
		return nil, fmt.Errorf("create appender: %w", err)
	}
	p.appender = appender

	consumerCfg := eventprocessor.DefaultConsumerConfig()
	consumer, err := eventprocessor.NewReportConsumer(subscriber, appender, hub, &consumerCfg)
	if err != nil {
		p.closePartial()
		return nil, fmt.Errorf("create consumer: %w", err)
	}
	p.consumer = consumer

	logging.Info().
		Bool("embedded", cfg.NATS.EmbeddedServer).
		Str("url", natsURL).
		Msg("Ingest pipeline initialized")

	return p, nil
}

// Start begins the appender flush loop and the report consumer. Called
// by the supervisor; safe against double starts.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	if err := p.appender.Start(ctx); err != nil {
		return fmt.Errorf("start appender: %w", err)
	}
	if err := p.consumer.Start(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	p.running = true
	logging.Info().Msg("Ingest pipeline started")
	return nil
}

// Shutdown stops the pipeline in dependency order: consumer drain,
// appender flush, then transport teardown.
func (p *Pipeline) Shutdown(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		p.closeTransport()
		return
	}
	p.running = false

	logging.Info().Msg("Shutting down ingest pipeline")

	p.consumer.Stop()

	if err := p.appender.Flush(ctx); err != nil {
		logging.Error().Err(err).Msg("Final appender flush failed")
	}
	if err := p.appender.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing appender")
	}

	p.closeTransport()
	logging.Info().Msg("Ingest pipeline shutdown complete")
}

// IsRunning reports whether the pipeline has been started.
func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// EventPublisher exposes the broker publisher for the ingest handler.
// Returns nil when the pipeline is disabled.
func (p *Pipeline) EventPublisher() api.EventPublisher {
	if p == nil || p.publisher == nil {
		return nil
	}
	return p.publisher
}

// Publisher returns the raw broker publisher for WAL wiring.
func (p *Pipeline) Publisher() *eventprocessor.Publisher {
	if p == nil {
		return nil
	}
	return p.publisher
}

// closeTransport tears down broker-facing components. Callers hold p.mu
// or own the pipeline exclusively during init.
func (p *Pipeline) closeTransport() {
	if p.subscriber != nil {
		if err := p.subscriber.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing subscriber")
		}
		p.subscriber = nil
	}
	if p.publisher != nil {
		if err := p.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing publisher")
		}
		p.publisher = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	if p.server != nil {
		p.server.Shutdown()
		p.server = nil
	}
}

// closePartial unwinds a partially constructed pipeline after an init
// failure.
func (p *Pipeline) closePartial() {
	if p.appender != nil {
		if err := p.appender.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing appender")
		}
		p.appender = nil
	}
	p.closeTransport()
}
