// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package eventprocessor

import (
	"context"
	"errors"
	"fmt"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/callscope/internal/logging"
)

// JetStreamContext is the subset of the JetStream API the stream
// manager needs. Narrowed for testability.
type JetStreamContext interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	DeleteStream(ctx context.Context, name string) error
}

// StreamManager provisions and maintains the REPORTS stream.
type StreamManager struct {
	js JetStreamContext
}

// NewStreamManager creates a stream manager from a NATS connection.
func NewStreamManager(nc *natsgo.Conn) (*StreamManager, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return &StreamManager{js: js}, nil
}

// NewStreamManagerWithContext creates a stream manager from an existing
// JetStream context.
func NewStreamManagerWithContext(js JetStreamContext) *StreamManager {
	return &StreamManager{js: js}
}

// EnsureStream creates the stream if it does not exist, or updates its
// limits if it does. Safe to call on every startup.
func (m *StreamManager) EnsureStream(ctx context.Context, cfg StreamConfig) error {
	streamCfg := jetstream.StreamConfig{
		Name:        cfg.Name,
		Subjects:    cfg.Subjects,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      cfg.MaxAge,
		MaxBytes:    cfg.MaxBytes,
		MaxMsgs:     cfg.MaxMsgs,
		Duplicates:  cfg.DuplicateWindow,
		Replicas:    cfg.Replicas,
		Storage:     jetstream.FileStorage,
		AllowDirect: true,
		Discard:     jetstream.DiscardOld,
		AllowRollup: true,
	}

	_, err := m.js.Stream(ctx, cfg.Name)
	if err == nil {
		if _, err := m.js.UpdateStream(ctx, streamCfg); err != nil {
			return fmt.Errorf("update stream %s: %w", cfg.Name, err)
		}
		logging.Info().
			Str("component", "stream_manager").
			Str("stream", cfg.Name).
			Msg("Stream updated")
		return nil
	}

	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("lookup stream %s: %w", cfg.Name, err)
	}

	if _, err := m.js.CreateStream(ctx, streamCfg); err != nil {
		return fmt.Errorf("create stream %s: %w", cfg.Name, err)
	}

	logging.Info().
		Str("component", "stream_manager").
		Str("stream", cfg.Name).
		Strs("subjects", cfg.Subjects).
		Dur("max_age", cfg.MaxAge).
		Msg("Stream created")
	return nil
}

// DeleteStream removes the stream and all retained messages.
func (m *StreamManager) DeleteStream(ctx context.Context, name string) error {
	if err := m.js.DeleteStream(ctx, name); err != nil {
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			return ErrStreamNotFound
		}
		return fmt.Errorf("delete stream %s: %w", name, err)
	}
	return nil
}
