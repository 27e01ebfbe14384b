// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package services

import (
	"context"
	"fmt"
	"time"
)

// PipelineRunner matches the ingest pipeline lifecycle assembled in
// cmd/server. Using an interface here keeps this package free of a
// dependency on package main.
type PipelineRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	IsRunning() bool
}

// PipelineService wraps the NATS report pipeline as a supervised
// service.
//
// It adapts the Start/Shutdown lifecycle to suture's Serve pattern:
//
//  1. Calls Start(ctx) to begin the consumer and appender
//  2. Waits for context cancellation
//  3. Calls Shutdown for graceful cleanup (drain, flush, close)
//
// The pipeline spans the embedded NATS server (if configured), the
// JetStream publisher and subscriber, the report consumer, and the
// batch appender into the report store.
type PipelineService struct {
	pipeline        PipelineRunner
	shutdownTimeout time.Duration
	name            string
}

// NewPipelineService creates a pipeline service wrapper with a 10s
// shutdown timeout.
func NewPipelineService(pipeline PipelineRunner) *PipelineService {
	return NewPipelineServiceWithTimeout(pipeline, 10*time.Second)
}

// NewPipelineServiceWithTimeout creates a pipeline service wrapper with
// a custom shutdown timeout.
func NewPipelineServiceWithTimeout(pipeline PipelineRunner, shutdownTimeout time.Duration) *PipelineService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &PipelineService{
		pipeline:        pipeline,
		shutdownTimeout: shutdownTimeout,
		name:            "ingest-pipeline",
	}
}

// Serve implements suture.Service. If Start fails the error is returned
// immediately, causing suture to restart the service per its backoff
// policy.
func (s *PipelineService) Serve(ctx context.Context) error {
	if err := s.pipeline.Start(ctx); err != nil {
		return fmt.Errorf("ingest pipeline start failed: %w", err)
	}

	<-ctx.Done()

	// The original context is canceled, so shutdown gets a fresh one.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.pipeline.Shutdown(shutdownCtx)

	return ctx.Err()
}

// String implements fmt.Stringer for suture log messages.
func (s *PipelineService) String() string {
	return s.name
}
