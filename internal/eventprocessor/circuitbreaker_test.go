// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package eventprocessor

import (
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestNewCircuitBreaker(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig()
	cb := NewCircuitBreaker(cfg)

	if cb == nil {
		t.Fatal("expected non-nil circuit breaker")
	}
	if cb.Name() != "nats-publish" {
		t.Errorf("Name() = %s, want nats-publish", cb.Name())
	}
	if state := CircuitBreakerState(cb); state != "closed" {
		t.Errorf("initial state = %s, want closed", state)
	}
}

func TestExecuteWithBreaker(t *testing.T) {
	t.Run("successful execution", func(t *testing.T) {
		cb := NewCircuitBreaker(DefaultCircuitBreakerConfig())

		result, err := ExecuteWithBreaker(cb, func() (interface{}, error) {
			return "success", nil
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result != "success" {
			t.Errorf("result = %v, want success", result)
		}
	})

	t.Run("failed execution", func(t *testing.T) {
		cb := NewCircuitBreaker(DefaultCircuitBreakerConfig())

		wantErr := errors.New("publish failed")
		_, err := ExecuteWithBreaker(cb, func() (interface{}, error) {
			return nil, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
	})

	t.Run("circuit opens after consecutive failures", func(t *testing.T) {
		cfg := CircuitBreakerConfig{
			Name:             "open-test",
			MaxRequests:      1,
			Interval:         time.Second,
			Timeout:          time.Second,
			FailureThreshold: 2,
		}
		cb := NewCircuitBreaker(cfg)

		testErr := errors.New("fail")
		for i := 0; i < 2; i++ {
			_, _ = ExecuteWithBreaker(cb, func() (interface{}, error) {
				return nil, testErr
			})
		}

		_, err := ExecuteWithBreaker(cb, func() (interface{}, error) {
			return "should not execute", nil
		})
		if !errors.Is(err, gobreaker.ErrOpenState) {
			t.Errorf("error = %v, want ErrOpenState", err)
		}
		if state := CircuitBreakerState(cb); state != "open" {
			t.Errorf("state = %s, want open", state)
		}
	})
}

func TestCircuitBreakerRecovery(t *testing.T) {
	cfg := CircuitBreakerConfig{
		Name:             "recovery-test",
		MaxRequests:      1,
		Interval:         100 * time.Millisecond,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 1,
	}
	cb := NewCircuitBreaker(cfg)

	_, _ = ExecuteWithBreaker(cb, func() (interface{}, error) {
		return nil, errors.New("fail")
	})

	if _, err := ExecuteWithBreaker(cb, func() (interface{}, error) {
		return "test", nil
	}); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}

	time.Sleep(150 * time.Millisecond)

	// Half-open now: a single success closes the circuit.
	result, err := ExecuteWithBreaker(cb, func() (interface{}, error) {
		return "recovered", nil
	})
	if err != nil {
		t.Errorf("unexpected error after recovery: %v", err)
	}
	if result != "recovered" {
		t.Errorf("result = %v, want recovered", result)
	}
	if state := CircuitBreakerState(cb); state != "closed" {
		t.Errorf("state = %s, want closed", state)
	}
}
