// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/callscope/internal/models"
)

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) models.HealthStatus {
	t.Helper()
	env := decodeEnvelope(t, w)
	var health models.HealthStatus
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("data is not a health status: %v", err)
	}
	return health
}

func TestHealthWithDatabase(t *testing.T) {
	db := setupTestDBForAPI(t)
	h := setupTestHandlerWithDB(t, db)
	h.config.NATS.Enabled = true

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", w.Code, w.Body.String())
	}

	health := decodeHealth(t, w)
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if !health.DatabaseConnected {
		t.Error("database_connected = false with a live database")
	}
	if !health.NATSEnabled {
		t.Error("nats_enabled = false, want true from config")
	}
	if health.WALEnabled {
		t.Error("wal_enabled = true, want false from config")
	}
	if health.Version != serviceVersion {
		t.Errorf("version = %q, want %q", health.Version, serviceVersion)
	}
	if health.Uptime < 0 {
		t.Errorf("uptime = %f, want >= 0", health.Uptime)
	}
}

func TestHealthDegradedWithoutDatabase(t *testing.T) {
	h := &Handler{config: testHandlerConfig()}

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	// Degraded is still a 200: the process answers even when storage
	// is down.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", w.Code, w.Body.String())
	}

	health := decodeHealth(t, w)
	if health.Status != "degraded" {
		t.Errorf("status = %q, want degraded", health.Status)
	}
	if health.DatabaseConnected {
		t.Error("database_connected = true without a database")
	}
}

func TestHealthCountsStoredRecords(t *testing.T) {
	db := setupTestDBForAPI(t)
	h := setupTestHandlerWithDB(t, db)

	createHost(t, h, `{"name": "pbx-east", "addr": ["10.0.0.1"]}`)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	health := decodeHealth(t, w)
	if health.Hosts != 1 {
		t.Errorf("hosts = %d, want 1", health.Hosts)
	}
	if health.MediaReports != 0 {
		t.Errorf("media_reports = %d, want 0", health.MediaReports)
	}
}

func TestHealthLive(t *testing.T) {
	h := &Handler{}

	w := httptest.NewRecorder()
	h.HealthLive(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var data map[string]interface{}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("data is not an object: %v", err)
	}
	if data["alive"] != true {
		t.Errorf("alive = %v, want true", data["alive"])
	}
}

func TestHealthReady(t *testing.T) {
	t.Run("ready with database", func(t *testing.T) {
		db := setupTestDBForAPI(t)
		h := setupTestHandlerWithDB(t, db)

		w := httptest.NewRecorder()
		h.HealthReady(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200\nbody: %s", w.Code, w.Body.String())
		}
	})

	t.Run("not ready without database", func(t *testing.T) {
		h := &Handler{}

		w := httptest.NewRecorder()
		h.HealthReady(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

		requireErrorCode(t, w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable)
	})
}

func TestHealthMethodNotAllowed(t *testing.T) {
	h := &Handler{}

	handlers := map[string]http.HandlerFunc{
		"health": h.Health,
		"live":   h.HealthLive,
		"ready":  h.HealthReady,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler(w, httptest.NewRequest(http.MethodPost, "/api/v1/health", nil))
			requireErrorCode(t, w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed)
		})
	}
}
