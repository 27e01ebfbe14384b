// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/callscope/internal/config"
)

func testSecurityConfig(mode string) *config.SecurityConfig {
	return &config.SecurityConfig{
		AuthMode:          mode,
		JWTSecret:         "middleware_test_secret_that_is_long_enough_12345",
		SessionTimeout:    time.Hour,
		AdminUsername:     "operator",
		RateLimitReqs:     100,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: true,
		CORSOrigins:       []string{"https://dashboard.example.com"},
	}
}

func newTestMiddleware(t *testing.T, mode string) *Middleware {
	t.Helper()
	cfg := testSecurityConfig(mode)

	jwtManager, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	basicManager, err := NewBasicAuthManager("operator", "secure-password-123")
	if err != nil {
		t.Fatalf("NewBasicAuthManager() error = %v", err)
	}

	m := NewMiddleware(jwtManager, basicManager, nil, cfg)
	t.Cleanup(m.Stop)
	return m
}

func claimsCapturingHandler(captured **Claims) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*captured = GetClaims(r)
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuthenticateModeNone(t *testing.T) {
	m := newTestMiddleware(t, AuthModeNone)

	var captured *Claims
	handler := m.Authenticate(claimsCapturingHandler(&captured))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 in mode none, got %d", rec.Code)
	}
	if captured != nil {
		t.Error("mode none must not attach claims")
	}
}

func TestAuthenticateJWT(t *testing.T) {
	m := newTestMiddleware(t, AuthModeJWT)

	token, err := m.jwtManager.GenerateToken("operator", "admin")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	t.Run("bearer header", func(t *testing.T) {
		var captured *Claims
		handler := m.Authenticate(claimsCapturingHandler(&captured))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if captured == nil || captured.Username != "operator" || captured.Role != "admin" {
			t.Errorf("unexpected claims: %+v", captured)
		}
	})

	t.Run("cookie fallback", func(t *testing.T) {
		var captured *Claims
		handler := m.Authenticate(claimsCapturingHandler(&captured))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 via cookie, got %d", rec.Code)
		}
		if captured == nil || captured.Username != "operator" {
			t.Errorf("unexpected claims: %+v", captured)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		handler := m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run without a token")
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		handler := m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run with an invalid token")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil)
		req.Header.Set("Authorization", "Bearer garbage.token.value")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthenticateBasic(t *testing.T) {
	m := newTestMiddleware(t, AuthModeBasic)

	t.Run("valid admin credentials", func(t *testing.T) {
		var captured *Claims
		handler := m.Authenticate(claimsCapturingHandler(&captured))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil)
		req.Header.Set("Authorization", basicHeader("operator", "secure-password-123"))
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if captured == nil || captured.Role != "admin" {
			t.Errorf("admin username must map to admin role, got %+v", captured)
		}
	})

	t.Run("missing credentials sends challenge", func(t *testing.T) {
		handler := m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run without credentials")
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") == "" {
			t.Error("expected WWW-Authenticate challenge header")
		}
	})
}

func TestRequireRole(t *testing.T) {
	m := newTestMiddleware(t, AuthModeJWT)

	adminToken, _ := m.jwtManager.GenerateToken("operator", "admin")
	viewerToken, _ := m.jwtManager.GenerateToken("dashboard", "viewer")

	tests := []struct {
		name     string
		required string
		token    string
		want     int
	}{
		{name: "admin passes admin check", required: "admin", token: adminToken, want: http.StatusOK},
		{name: "admin passes viewer check", required: "viewer", token: adminToken, want: http.StatusOK},
		{name: "viewer passes viewer check", required: "viewer", token: viewerToken, want: http.StatusOK},
		{name: "viewer fails admin check", required: "admin", token: viewerToken, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := m.RequireRole(tt.required, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	m := newTestMiddleware(t, AuthModeNone)

	t.Run("allowed origin", func(t *testing.T) {
		handler := m.CORS(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example.com" {
			t.Errorf("expected origin echoed, got %q", got)
		}
	})

	t.Run("preflight allowed origin", func(t *testing.T) {
		handler := m.CORS(func(w http.ResponseWriter, r *http.Request) {
			t.Error("preflight must not reach the handler")
		})

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/hosts", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 preflight, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("expected Access-Control-Allow-Methods on preflight")
		}
	})

	t.Run("preflight disallowed origin", func(t *testing.T) {
		handler := m.CORS(func(w http.ResponseWriter, r *http.Request) {
			t.Error("disallowed preflight must not reach the handler")
		})

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/hosts", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403 for disallowed preflight, got %d", rec.Code)
		}
	})
}

func TestSecurityHeaders(t *testing.T) {
	m := newTestMiddleware(t, AuthModeNone)

	handler := m.SecurityHeaders(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil))

	for _, header := range []string{
		"Content-Security-Policy",
		"X-Frame-Options",
		"X-Content-Type-Options",
		"Referrer-Policy",
		"Permissions-Policy",
	} {
		if rec.Header().Get(header) == "" {
			t.Errorf("expected %s header to be set", header)
		}
	}

	t.Run("hsts only behind https", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil))
		if rec.Header().Get("Strict-Transport-Security") != "" {
			t.Error("HSTS must not be set for plain HTTP")
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		rec = httptest.NewRecorder()
		handler(rec, req)
		if rec.Header().Get("Strict-Transport-Security") == "" {
			t.Error("HSTS expected when X-Forwarded-Proto is https")
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testSecurityConfig(AuthModeNone)
	cfg.RateLimitDisabled = false
	cfg.RateLimitReqs = 2
	cfg.RateLimitWindow = time.Minute

	jwtManager, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	m := NewMiddleware(jwtManager, nil, nil, cfg)
	t.Cleanup(m.Stop)

	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil)
	req.RemoteAddr = "198.51.100.7:54321"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst exhausted, got %d", rec.Code)
	}

	// A different client IP has its own budget.
	other := httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil)
	other.RemoteAddr = "198.51.100.8:54321"
	rec = httptest.NewRecorder()
	handler(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("expected fresh budget for new IP, got %d", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	cfg := testSecurityConfig(AuthModeNone)
	cfg.TrustedProxies = []string{"10.0.0.254"}

	jwtManager, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	m := NewMiddleware(jwtManager, nil, nil, cfg)
	t.Cleanup(m.Stop)

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{
			name:       "direct client",
			remoteAddr: "198.51.100.7:54321",
			xff:        "203.0.113.99",
			want:       "198.51.100.7",
		},
		{
			name:       "trusted proxy with xff",
			remoteAddr: "10.0.0.254:43210",
			xff:        "203.0.113.99, 10.0.0.254",
			want:       "203.0.113.99",
		},
		{
			name:       "trusted proxy with x-real-ip",
			remoteAddr: "10.0.0.254:43210",
			xRealIP:    "203.0.113.42",
			want:       "203.0.113.42",
		},
		{
			name:       "trusted proxy with invalid xff",
			remoteAddr: "10.0.0.254:43210",
			xff:        "not-an-ip",
			want:       "10.0.0.254",
		},
		{
			name:       "ipv6 remote",
			remoteAddr: "[2001:db8::1]:54321",
			want:       "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/hosts", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			if got := m.getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("198.51.100.7") {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}
	if rl.Allow("198.51.100.7") {
		t.Error("request beyond burst should be denied")
	}
	if !rl.Allow("198.51.100.8") {
		t.Error("different IP should have its own budget")
	}
}
