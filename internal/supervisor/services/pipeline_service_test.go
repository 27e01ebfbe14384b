// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockPipeline is a test double for the PipelineRunner interface.
type mockPipeline struct {
	running  atomic.Bool
	startErr error
}

func (m *mockPipeline) Start(ctx context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.running.Store(true)
	return nil
}

func (m *mockPipeline) Shutdown(ctx context.Context) {
	m.running.Store(false)
}

func (m *mockPipeline) IsRunning() bool {
	return m.running.Load()
}

func TestPipelineServiceInterface(t *testing.T) {
	var _ suture.Service = (*PipelineService)(nil)
}

func TestPipelineServiceServe(t *testing.T) {
	t.Run("starts pipeline and shuts down on cancel", func(t *testing.T) {
		mock := &mockPipeline{}
		svc := NewPipelineService(mock)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		time.Sleep(50 * time.Millisecond)
		if !mock.IsRunning() {
			t.Error("pipeline should be running before cancel")
		}

		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return after cancel")
		}

		if mock.IsRunning() {
			t.Error("pipeline should be stopped after shutdown")
		}
	})

	t.Run("start failure triggers supervisor restart", func(t *testing.T) {
		mock := &mockPipeline{startErr: errors.New("broker unreachable")}
		svc := NewPipelineService(mock)

		if err := svc.Serve(context.Background()); err == nil || !errors.Is(err, mock.startErr) {
			t.Errorf("expected wrapped start error, got %v", err)
		}
	})

	t.Run("custom shutdown timeout floor", func(t *testing.T) {
		svc := NewPipelineServiceWithTimeout(&mockPipeline{}, -1)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("expected default 10s, got %v", svc.shutdownTimeout)
		}
	})

	t.Run("stable service name", func(t *testing.T) {
		svc := NewPipelineService(&mockPipeline{})
		if svc.String() != "ingest-pipeline" {
			t.Errorf("expected 'ingest-pipeline', got %q", svc.String())
		}
	})
}
