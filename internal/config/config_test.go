// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 8860 {
		t.Errorf("expected default port 8860, got %d", cfg.Server.Port)
	}
	if cfg.Session.BlockCount != 28 {
		t.Errorf("expected default block count 28, got %d", cfg.Session.BlockCount)
	}
	if cfg.Session.TerminationTimeout != 60*time.Second {
		t.Errorf("expected default termination timeout 60s, got %v", cfg.Session.TerminationTimeout)
	}
	if cfg.Security.AuthMode != "jwt" {
		t.Errorf("expected default auth mode jwt, got %s", cfg.Security.AuthMode)
	}
	if !cfg.NATS.Enabled {
		t.Error("expected NATS enabled by default")
	}
	if !cfg.WAL.Enabled {
		t.Error("expected WAL enabled by default")
	}
	if cfg.Database.Path == "" {
		t.Error("expected non-empty default database path")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	// The default auth mode requires a secret; switch to none for the
	// development environment defaults to validate cleanly.
	cfg.Security.AuthMode = "none"

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("SESSION_BLOCK_COUNT", "14")
	t.Setenv("SESSION_TERMINATION_TIMEOUT", "90s")
	t.Setenv("AUTH_MODE", "none")
	t.Setenv("DUCKDB_PATH", "/tmp/test.duckdb")
	t.Setenv("NATS_ENABLED", "false")
	t.Setenv("WAL_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Session.BlockCount != 14 {
		t.Errorf("expected block count 14, got %d", cfg.Session.BlockCount)
	}
	if cfg.Session.TerminationTimeout != 90*time.Second {
		t.Errorf("expected termination timeout 90s, got %v", cfg.Session.TerminationTimeout)
	}
	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("expected database path override, got %s", cfg.Database.Path)
	}
	if cfg.NATS.Enabled {
		t.Error("expected NATS disabled via env")
	}
}

func TestLoadSliceFromEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "none")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("NATS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Security.CORSOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %v", cfg.Security.CORSOrigins)
	}
	if cfg.Security.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("expected trimmed origin, got %q", cfg.Security.CORSOrigins[1])
	}
}

func TestValidateServer(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Security.AuthMode = "none"
	cfg.Server.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 0")
	}

	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port above range")
	}
}

func TestValidateSession(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero block count", func(c *Config) { c.Session.BlockCount = 0 }},
		{"negative block count", func(c *Config) { c.Session.BlockCount = -4 }},
		{"excessive block count", func(c *Config) { c.Session.BlockCount = 5000 }},
		{"negative termination timeout", func(c *Config) { c.Session.TerminationTimeout = -time.Second }},
		{"zero max call ids", func(c *Config) { c.Session.MaxCallIDs = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.AuthMode = "none"
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateAuthMode(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Security.AuthMode = "kerberos"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "AUTH_MODE") {
		t.Errorf("expected AUTH_MODE error, got: %v", err)
	}
}

func TestValidateAuthModeNoneRejectedInProduction(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Security.AuthMode = "none"
	cfg.Server.Environment = "production"

	if err := cfg.Validate(); err == nil {
		t.Error("expected AUTH_MODE=none to be rejected in production")
	}
}

func TestValidateJWTSecret(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"too short", "short"},
		{"placeholder", "changeme-changeme-changeme-changeme"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.AuthMode = "jwt"
			cfg.Security.JWTSecret = tc.secret
			cfg.Security.AdminUsername = "admin"
			cfg.Security.AdminPassword = "hunter2hunter2"
			if err := cfg.Validate(); err == nil {
				t.Error("expected JWT secret validation error")
			}
		})
	}

	cfg := defaultConfig()
	cfg.Security.AuthMode = "jwt"
	cfg.Security.JWTSecret = "k9PqX2mNvB7wRtY4hJ6fD8sA3zL5cE1g"
	cfg.Security.AdminUsername = "admin"
	cfg.Security.AdminPassword = "hunter2hunter2"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid jwt config should pass, got: %v", err)
	}
}

func TestValidateBasicAuthCredentials(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Security.AuthMode = "basic"

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing admin credentials")
	}

	cfg.Security.AdminUsername = "admin"
	cfg.Security.AdminPassword = "hunter2hunter2"
	if err := cfg.Validate(); err != nil {
		t.Errorf("basic auth with credentials should pass, got: %v", err)
	}
}

func TestValidateOIDC(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Security.AuthMode = "oidc"

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing issuer URL")
	}

	cfg.Security.OIDC.IssuerURL = "https://id.example.com"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing client ID")
	}

	cfg.Security.OIDC.ClientID = "callscope"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid oidc config should pass, got: %v", err)
	}
}

func TestValidateWildcardCORSInProduction(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Server.Environment = "production"
	cfg.Security.AuthMode = "jwt"
	cfg.Security.JWTSecret = "k9PqX2mNvB7wRtY4hJ6fD8sA3zL5cE1g"
	cfg.Security.AdminUsername = "admin"
	cfg.Security.AdminPassword = "hunter2hunter2"
	// defaults carry the wildcard origin

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "CORS_ORIGINS") {
		t.Errorf("expected wildcard CORS rejection, got: %v", err)
	}

	cfg.Security.CORSOrigins = []string{"https://ops.example.com"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("specific origins should pass, got: %v", err)
	}
}

func TestValidateNATSURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url     string
		wantErr bool
	}{
		{"nats://127.0.0.1:4222", false},
		{"tls://nats.example.com:4222", false},
		{"http://127.0.0.1:4222", true},
		{"", true},
		{"nats://", true},
	}

	for _, tc := range cases {
		err := validateNATSURL(tc.url)
		if (err != nil) != tc.wantErr {
			t.Errorf("validateNATSURL(%q) error = %v, wantErr %v", tc.url, err, tc.wantErr)
		}
	}
}

func TestValidateWAL(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Security.AuthMode = "none"
	cfg.WAL.Path = ""

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty WAL path")
	}

	cfg.WAL.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled WAL should skip validation, got: %v", err)
	}
}

func TestIsProduction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"PRODUCTION", true},
		{"development", false},
		{"", false},
	}

	for _, tc := range cases {
		cfg := &Config{Server: ServerConfig{Environment: tc.env}}
		if got := cfg.IsProduction(); got != tc.want {
			t.Errorf("IsProduction(%q) = %v, want %v", tc.env, got, tc.want)
		}
	}
}

func TestContainsPlaceholder(t *testing.T) {
	t.Parallel()

	if !containsPlaceholder("please-CHANGEME-now") {
		t.Error("expected placeholder detection to be case-insensitive")
	}
	if containsPlaceholder("k9PqX2mNvB7wRtY4hJ6fD8sA3zL5cE1g") {
		t.Error("random secret flagged as placeholder")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"SESSION_BLOCK_COUNT", "session.block_count"},
		{"DUCKDB_PATH", "database.path"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"NATS_URL", "nats.url"},
		{"WAL_PATH", "wal.path"},
		{"PATH", ""},     // unmapped vars are skipped
		{"HOSTNAME", ""}, // unmapped vars are skipped
	}

	for _, tc := range cases {
		if got := envTransformFunc(tc.in); got != tc.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
