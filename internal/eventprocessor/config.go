// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package eventprocessor

import (
	"time"

	"github.com/tomtom215/callscope/internal/config"
)

// StreamName is the JetStream stream that holds every report event.
const StreamName = "REPORTS"

// ServerConfig holds embedded NATS server settings.
type ServerConfig struct {
	ServerName         string
	Host               string
	Port               int
	StoreDir           string
	JetStreamMaxMemory int64
	JetStreamMaxStore  int64
}

// DefaultServerConfig derives embedded server settings from the
// application NATS configuration.
func DefaultServerConfig(cfg *config.NATSConfig) ServerConfig {
	sc := ServerConfig{
		ServerName:         "callscope-events",
		Host:               "127.0.0.1",
		Port:               4222,
		StoreDir:           "/data/nats",
		JetStreamMaxMemory: 256 * 1024 * 1024,
		JetStreamMaxStore:  8 * 1024 * 1024 * 1024,
	}
	if cfg == nil {
		return sc
	}
	if cfg.StoreDir != "" {
		sc.StoreDir = cfg.StoreDir
	}
	if cfg.MaxMemory > 0 {
		sc.JetStreamMaxMemory = cfg.MaxMemory
	}
	if cfg.MaxStore > 0 {
		sc.JetStreamMaxStore = cfg.MaxStore
	}
	return sc
}

// PublisherConfig holds NATS publisher settings.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool
}

// DefaultPublisherConfig derives publisher settings from the
// application NATS configuration.
func DefaultPublisherConfig(cfg *config.NATSConfig) PublisherConfig {
	pc := PublisherConfig{
		URL:              "nats://127.0.0.1:4222",
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024,
		EnableTrackMsgID: true,
	}
	if cfg != nil && cfg.URL != "" {
		pc.URL = cfg.URL
	}
	return pc
}

// SubscriberConfig holds NATS subscriber settings.
type SubscriberConfig struct {
	URL              string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	MaxDeliver       int
	MaxAckPending    int
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration

	// StreamName binds subscriptions to an existing stream. Required
	// for wildcard topics, which cannot be auto-provisioned.
	StreamName string
}

// DefaultSubscriberConfig derives subscriber settings from the
// application NATS configuration.
func DefaultSubscriberConfig(cfg *config.NATSConfig) SubscriberConfig {
	sc := SubscriberConfig{
		URL:              "nats://127.0.0.1:4222",
		DurableName:      "callscope-reports",
		QueueGroup:       "callscope-workers",
		SubscribersCount: 4,
		AckWaitTimeout:   30 * time.Second,
		MaxDeliver:       5,
		MaxAckPending:    1024,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		StreamName:       StreamName,
	}
	if cfg == nil {
		return sc
	}
	if cfg.URL != "" {
		sc.URL = cfg.URL
	}
	if cfg.DurableName != "" {
		sc.DurableName = cfg.DurableName
	}
	if cfg.QueueGroup != "" {
		sc.QueueGroup = cfg.QueueGroup
	}
	if cfg.SubscribersCount > 0 {
		sc.SubscribersCount = cfg.SubscribersCount
	}
	if cfg.RouterCloseTimeout > 0 {
		sc.CloseTimeout = cfg.RouterCloseTimeout
	}
	return sc
}

// StreamConfig holds JetStream stream provisioning settings.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
}

// DefaultStreamConfig derives stream settings from the application
// NATS configuration.
func DefaultStreamConfig(cfg *config.NATSConfig) StreamConfig {
	sc := StreamConfig{
		Name:            StreamName,
		Subjects:        []string{TopicWildcard},
		MaxAge:          30 * 24 * time.Hour,
		MaxBytes:        8 * 1024 * 1024 * 1024,
		MaxMsgs:         -1,
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1,
	}
	if cfg == nil {
		return sc
	}
	if cfg.StreamRetentionDays > 0 {
		sc.MaxAge = time.Duration(cfg.StreamRetentionDays) * 24 * time.Hour
	}
	if cfg.MaxStore > 0 {
		sc.MaxBytes = cfg.MaxStore
	}
	return sc
}

// AppenderConfig holds batching settings for the report appender.
type AppenderConfig struct {
	BatchSize     int
	FlushInterval time.Duration
}

// DefaultAppenderConfig derives appender settings from the application
// NATS configuration.
func DefaultAppenderConfig(cfg *config.NATSConfig) AppenderConfig {
	ac := AppenderConfig{
		BatchSize:     500,
		FlushInterval: 2 * time.Second,
	}
	if cfg == nil {
		return ac
	}
	if cfg.BatchSize > 0 {
		ac.BatchSize = cfg.BatchSize
	}
	if cfg.FlushInterval > 0 {
		ac.FlushInterval = cfg.FlushInterval
	}
	return ac
}

// CircuitBreakerConfig holds publish circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultCircuitBreakerConfig returns circuit breaker settings for the
// report publisher.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "nats-publish",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 5,
	}
}
