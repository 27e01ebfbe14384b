// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package wal

import (
	"fmt"
	"time"

	appconfig "github.com/tomtom215/callscope/internal/config"
)

// Config holds write-ahead log settings.
type Config struct {
	// Path is the BadgerDB directory. Must be a durable filesystem,
	// not tmpfs.
	Path string

	// SyncWrites forces fsync after every write. Disable for
	// throughput at the cost of losing the last writes on power loss.
	SyncWrites bool

	// RetryInterval is the time between retry loop iterations.
	RetryInterval time.Duration

	// MaxRetries is the publish attempt budget per entry. Entries
	// beyond it are dropped.
	MaxRetries int

	// RetryBackoff is the base for exponential retry backoff.
	RetryBackoff time.Duration

	// CompactInterval is the time between compaction runs.
	CompactInterval time.Duration

	// EntryTTL bounds how long an unconfirmed entry survives.
	EntryTTL time.Duration

	// Badger tuning.
	MemTableSize     int64
	ValueLogFileSize int64
	NumCompactors    int
	GCRatio          float64

	// CloseTimeout bounds graceful shutdown of the database.
	CloseTimeout time.Duration
}

// DefaultConfig returns settings that prioritize durability.
func DefaultConfig() Config {
	return Config{
		Path:             "/data/wal",
		SyncWrites:       true,
		RetryInterval:    30 * time.Second,
		MaxRetries:       10,
		RetryBackoff:     5 * time.Second,
		CompactInterval:  time.Hour,
		EntryTTL:         7 * 24 * time.Hour,
		MemTableSize:     16 * 1024 * 1024,
		ValueLogFileSize: 64 * 1024 * 1024,
		NumCompactors:    2,
		GCRatio:          0.5,
		CloseTimeout:     30 * time.Second,
	}
}

// FromAppConfig derives WAL settings from the application
// configuration, keeping defaults for fields it does not cover.
func FromAppConfig(cfg *appconfig.WALConfig) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Path != "" {
		c.Path = cfg.Path
	}
	if cfg.RetryInterval > 0 {
		c.RetryInterval = cfg.RetryInterval
	}
	if cfg.MaxRetries > 0 {
		c.MaxRetries = cfg.MaxRetries
	}
	if cfg.GCInterval > 0 {
		c.CompactInterval = cfg.GCInterval
	}
	return c
}

// Validate checks the configuration for operability.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("wal path required")
	}
	if c.RetryInterval < time.Second {
		return fmt.Errorf("retry interval must be at least 1s, got %v", c.RetryInterval)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max retries must be positive, got %d", c.MaxRetries)
	}
	if c.EntryTTL <= 0 {
		return fmt.Errorf("entry TTL must be positive, got %v", c.EntryTTL)
	}
	if c.NumCompactors < 2 {
		// Badger requires at least two compaction workers.
		c.NumCompactors = 2
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		c.GCRatio = 0.5
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = 30 * time.Second
	}
	return nil
}
