// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package auth

import (
	"testing"
	"time"

	"github.com/tomtom215/callscope/internal/config"
)

func TestNewJWTManager(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.SecurityConfig
		wantErr bool
	}{
		{
			name: "valid secret",
			cfg: &config.SecurityConfig{
				JWTSecret:      "this_is_a_very_long_secret_key_with_32_plus_characters",
				SessionTimeout: 24 * time.Hour,
			},
			wantErr: false,
		},
		{
			name: "empty secret",
			cfg: &config.SecurityConfig{
				JWTSecret:      "",
				SessionTimeout: 24 * time.Hour,
			},
			wantErr: true,
		},
		{
			name: "short secret",
			cfg: &config.SecurityConfig{
				JWTSecret:      "too_short",
				SessionTimeout: 24 * time.Hour,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewJWTManager(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("NewJWTManager() unexpected error = %v", err)
				return
			}
			if manager == nil {
				t.Error("NewJWTManager() returned nil manager")
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "this_is_a_very_long_secret_key_for_testing_purposes_12345",
		SessionTimeout: 1 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		role     string
	}{
		{name: "admin token", username: "operator", role: "admin"},
		{name: "viewer token", username: "dashboard", role: "viewer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := manager.GenerateToken(tt.username, tt.role)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			if token == "" {
				t.Fatal("GenerateToken() returned empty token")
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.Username != tt.username {
				t.Errorf("ValidateToken() username = %v, want %v", claims.Username, tt.username)
			}
			if claims.Role != tt.role {
				t.Errorf("ValidateToken() role = %v, want %v", claims.Role, tt.role)
			}
		})
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	manager, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "this_is_a_very_long_secret_key_for_testing_purposes_12345",
		SessionTimeout: 1 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "invalid token format", token: "invalid.token.format"},
		{name: "empty token", token: ""},
		{name: "malformed token", token: "not_a_jwt_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := manager.ValidateToken(tt.token)
			if err == nil {
				t.Error("ValidateToken() expected error for invalid token, got nil")
			}
			if claims != nil {
				t.Error("ValidateToken() expected nil claims for invalid token")
			}
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager1, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "first_secret_key_that_is_long_enough_for_testing_12345",
		SessionTimeout: 1 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	manager2, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "second_secret_key_that_is_different_from_first_12345",
		SessionTimeout: 1 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	token, err := manager1.GenerateToken("operator", "admin")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := manager2.ValidateToken(token); err == nil {
		t.Error("ValidateToken() expected error when using wrong secret, got nil")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	manager, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "secret_key_for_expiration_test_that_is_long_enough_12345",
		SessionTimeout: -1 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	token, err := manager.GenerateToken("operator", "admin")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := manager.ValidateToken(token); err == nil {
		t.Error("ValidateToken() expected error for expired token, got nil")
	}
}
