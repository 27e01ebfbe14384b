// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package config provides centralized configuration for all Callscope
// components: HTTP server, DuckDB storage, session assembly, ingest
// pipeline, security and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config File: optional YAML config file (config.yaml)
//  3. Environment Variables: override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import "time"

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	NATS     NATSConfig     `koanf:"nats"`
	WAL      WALConfig      `koanf:"wal"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: listen port (default: 8860)
//   - HTTP_HOST: listen host (default: 0.0.0.0)
//   - HTTP_TIMEOUT: request timeout (default: 30s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: database file path (default: /data/callscope.duckdb)
//   - DUCKDB_MAX_MEMORY: memory limit, e.g. "2GB"
//   - DUCKDB_THREADS: worker threads, 0 = runtime.NumCPU()
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// SessionConfig holds session assembly settings.
//
// BlockCount is the fixed number of media quality blocks each call leg
// is divided into. TerminationTimeout widens the upper bound of the
// report query window to catch reports emitted after a call ends.
//
// Environment Variables:
//   - SESSION_BLOCK_COUNT: blocks per leg (default: 28)
//   - SESSION_TERMINATION_TIMEOUT: query window extension (default: 60s)
//   - SESSION_MAX_CALL_IDS: maximum call IDs per request (default: 100)
type SessionConfig struct {
	BlockCount         int           `koanf:"block_count"`
	TerminationTimeout time.Duration `koanf:"termination_timeout"`
	MaxCallIDs         int           `koanf:"max_call_ids"`
}

// APIConfig holds API pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication, authorization and transport
// security settings.
//
// Environment Variables:
//   - AUTH_MODE: none, basic, jwt, oidc (default: jwt)
//   - JWT_SECRET: HMAC signing secret, 32+ characters (required for jwt)
//   - SESSION_TIMEOUT: token lifetime (default: 24h)
//   - ADMIN_USERNAME / ADMIN_PASSWORD: bootstrap credentials
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: request throttling
//   - CORS_ORIGINS: comma-separated allowed origins
//   - TRUSTED_PROXIES: comma-separated proxy addresses for client IP extraction
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`

	OIDC   OIDCConfig   `koanf:"oidc"`
	Casbin CasbinConfig `koanf:"casbin"`
}

// OIDCConfig holds OpenID Connect relying-party settings for bearer
// token verification (AUTH_MODE=oidc).
type OIDCConfig struct {
	IssuerURL    string   `koanf:"issuer_url"`
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RolesClaim   string   `koanf:"roles_claim"`
	DefaultRoles []string `koanf:"default_roles"`
}

// CasbinConfig holds RBAC enforcement settings. Empty paths use the
// embedded model and policy.
type CasbinConfig struct {
	ModelPath   string `koanf:"model_path"`
	PolicyPath  string `koanf:"policy_path"`
	DefaultRole string `koanf:"default_role"`
}

// NATSConfig holds event processing settings for the report ingest
// pipeline (Watermill over NATS JetStream).
//
// Environment Variables:
//   - NATS_ENABLED: enable event-driven ingest (default: true)
//   - NATS_URL: server URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: run an embedded server (default: true)
//   - NATS_STORE_DIR: JetStream storage directory
//   - NATS_BATCH_SIZE / NATS_FLUSH_INTERVAL: appender batching
//   - NATS_SUBSCRIBERS: concurrent consumer count
type NATSConfig struct {
	Enabled             bool          `koanf:"enabled"`
	EventSourcing       bool          `koanf:"event_sourcing"`
	URL                 string        `koanf:"url"`
	EmbeddedServer      bool          `koanf:"embedded_server"`
	StoreDir            string        `koanf:"store_dir"`
	MaxMemory           int64         `koanf:"max_memory"`
	MaxStore            int64         `koanf:"max_store"`
	StreamRetentionDays int           `koanf:"stream_retention_days"`
	BatchSize           int           `koanf:"batch_size"`
	FlushInterval       time.Duration `koanf:"flush_interval"`
	SubscribersCount    int           `koanf:"subscribers_count"`
	DurableName         string        `koanf:"durable_name"`
	QueueGroup          string        `koanf:"queue_group"`
	RouterCloseTimeout  time.Duration `koanf:"router_close_timeout"`
}

// WALConfig holds write-ahead log settings for ingest durability.
// Reports are journaled to Badger before publishing and confirmed
// after the broker accepts them.
//
// Environment Variables:
//   - WAL_ENABLED: enable the write-ahead log (default: true)
//   - WAL_PATH: Badger directory (default: /data/wal)
//   - WAL_RETRY_INTERVAL: pending entry republish interval (default: 30s)
//   - WAL_MAX_RETRIES: attempts before an entry is dropped (default: 10)
type WALConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Path          string        `koanf:"path"`
	RetryInterval time.Duration `koanf:"retry_interval"`
	MaxRetries    int           `koanf:"max_retries"`
	GCInterval    time.Duration `koanf:"gc_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
