// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package services

import (
	"context"
	"fmt"
)

// WALStartStopper matches the WAL RetryLoop and Compactor lifecycle
// without importing the wal package.
//
// Satisfied by *wal.RetryLoop and *wal.Compactor.
type WALStartStopper interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
}

// WALRetryLoopService wraps the WAL retry loop as a supervised service.
//
// The retry loop republishes journaled report events whose broker
// publish failed, with exponential backoff. Stop blocks until the
// loop's goroutine exits.
type WALRetryLoopService struct {
	retryLoop WALStartStopper
	name      string
}

// NewWALRetryLoopService creates a new WAL retry loop service wrapper.
func NewWALRetryLoopService(retryLoop WALStartStopper) *WALRetryLoopService {
	return &WALRetryLoopService{
		retryLoop: retryLoop,
		name:      "wal-retry-loop",
	}
}

// Serve implements suture.Service. If Start fails the error is returned
// immediately so suture restarts the service per its backoff policy.
func (s *WALRetryLoopService) Serve(ctx context.Context) error {
	if err := s.retryLoop.Start(ctx); err != nil {
		return fmt.Errorf("WAL retry loop start failed: %w", err)
	}

	<-ctx.Done()

	s.retryLoop.Stop()

	return ctx.Err()
}

// String implements fmt.Stringer for suture log messages.
func (s *WALRetryLoopService) String() string {
	return s.name
}

// WALCompactorService wraps the WAL compactor as a supervised service.
//
// The compactor periodically deletes confirmed and expired entries and
// triggers Badger value-log garbage collection.
type WALCompactorService struct {
	compactor WALStartStopper
	name      string
}

// NewWALCompactorService creates a new WAL compactor service wrapper.
func NewWALCompactorService(compactor WALStartStopper) *WALCompactorService {
	return &WALCompactorService{
		compactor: compactor,
		name:      "wal-compactor",
	}
}

// Serve implements suture.Service.
func (s *WALCompactorService) Serve(ctx context.Context) error {
	if err := s.compactor.Start(ctx); err != nil {
		return fmt.Errorf("WAL compactor start failed: %w", err)
	}

	<-ctx.Done()

	s.compactor.Stop()

	return ctx.Err()
}

// String implements fmt.Stringer for suture log messages.
func (s *WALCompactorService) String() string {
	return s.name
}
