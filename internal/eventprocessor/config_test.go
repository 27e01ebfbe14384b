// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package eventprocessor

import (
	"testing"
	"time"

	"github.com/tomtom215/callscope/internal/config"
)

func TestDefaultServerConfig(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		sc := DefaultServerConfig(nil)
		if sc.ServerName != "callscope-events" {
			t.Errorf("ServerName = %q", sc.ServerName)
		}
		if sc.Port != 4222 {
			t.Errorf("Port = %d, want 4222", sc.Port)
		}
		if sc.StoreDir != "/data/nats" {
			t.Errorf("StoreDir = %q", sc.StoreDir)
		}
	})

	t.Run("application config overrides", func(t *testing.T) {
		sc := DefaultServerConfig(&config.NATSConfig{
			StoreDir:  "/tmp/js",
			MaxMemory: 1024,
			MaxStore:  4096,
		})
		if sc.StoreDir != "/tmp/js" {
			t.Errorf("StoreDir = %q, want /tmp/js", sc.StoreDir)
		}
		if sc.JetStreamMaxMemory != 1024 {
			t.Errorf("JetStreamMaxMemory = %d, want 1024", sc.JetStreamMaxMemory)
		}
		if sc.JetStreamMaxStore != 4096 {
			t.Errorf("JetStreamMaxStore = %d, want 4096", sc.JetStreamMaxStore)
		}
	})
}

func TestDefaultPublisherConfig(t *testing.T) {
	pc := DefaultPublisherConfig(&config.NATSConfig{URL: "nats://broker:4222"})
	if pc.URL != "nats://broker:4222" {
		t.Errorf("URL = %q", pc.URL)
	}
	if !pc.EnableTrackMsgID {
		t.Error("message ID tracking should default on")
	}
	if pc.MaxReconnects != -1 {
		t.Errorf("MaxReconnects = %d, want -1 (unlimited)", pc.MaxReconnects)
	}
}

func TestDefaultSubscriberConfig(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		sc := DefaultSubscriberConfig(nil)
		if sc.DurableName != "callscope-reports" {
			t.Errorf("DurableName = %q", sc.DurableName)
		}
		if sc.QueueGroup != "callscope-workers" {
			t.Errorf("QueueGroup = %q", sc.QueueGroup)
		}
		if sc.StreamName != StreamName {
			t.Errorf("StreamName = %q, want %q", sc.StreamName, StreamName)
		}
		if sc.SubscribersCount != 4 {
			t.Errorf("SubscribersCount = %d, want 4", sc.SubscribersCount)
		}
	})

	t.Run("application config overrides", func(t *testing.T) {
		sc := DefaultSubscriberConfig(&config.NATSConfig{
			URL:                "nats://broker:4222",
			DurableName:        "custom-durable",
			QueueGroup:         "custom-group",
			SubscribersCount:   8,
			RouterCloseTimeout: 10 * time.Second,
		})
		if sc.URL != "nats://broker:4222" {
			t.Errorf("URL = %q", sc.URL)
		}
		if sc.DurableName != "custom-durable" {
			t.Errorf("DurableName = %q", sc.DurableName)
		}
		if sc.QueueGroup != "custom-group" {
			t.Errorf("QueueGroup = %q", sc.QueueGroup)
		}
		if sc.SubscribersCount != 8 {
			t.Errorf("SubscribersCount = %d, want 8", sc.SubscribersCount)
		}
		if sc.CloseTimeout != 10*time.Second {
			t.Errorf("CloseTimeout = %v, want 10s", sc.CloseTimeout)
		}
	})
}

func TestDefaultStreamConfig(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		sc := DefaultStreamConfig(nil)
		if sc.Name != StreamName {
			t.Errorf("Name = %q, want %q", sc.Name, StreamName)
		}
		if len(sc.Subjects) != 1 || sc.Subjects[0] != TopicWildcard {
			t.Errorf("Subjects = %v, want [%q]", sc.Subjects, TopicWildcard)
		}
		if sc.MaxAge != 30*24*time.Hour {
			t.Errorf("MaxAge = %v, want 30 days", sc.MaxAge)
		}
		if sc.DuplicateWindow != 2*time.Minute {
			t.Errorf("DuplicateWindow = %v, want 2m", sc.DuplicateWindow)
		}
	})

	t.Run("retention days map to max age", func(t *testing.T) {
		sc := DefaultStreamConfig(&config.NATSConfig{StreamRetentionDays: 7})
		if sc.MaxAge != 7*24*time.Hour {
			t.Errorf("MaxAge = %v, want 7 days", sc.MaxAge)
		}
	})
}

func TestDefaultAppenderConfig(t *testing.T) {
	ac := DefaultAppenderConfig(&config.NATSConfig{
		BatchSize:     250,
		FlushInterval: 5 * time.Second,
	})
	if ac.BatchSize != 250 {
		t.Errorf("BatchSize = %d, want 250", ac.BatchSize)
	}
	if ac.FlushInterval != 5*time.Second {
		t.Errorf("FlushInterval = %v, want 5s", ac.FlushInterval)
	}

	fallback := DefaultAppenderConfig(nil)
	if fallback.BatchSize != 500 {
		t.Errorf("fallback BatchSize = %d, want 500", fallback.BatchSize)
	}
	if fallback.FlushInterval != 2*time.Second {
		t.Errorf("fallback FlushInterval = %v, want 2s", fallback.FlushInterval)
	}
}
