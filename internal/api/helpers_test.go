// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/callscope/internal/config"
	"github.com/tomtom215/callscope/internal/database"
	"github.com/tomtom215/callscope/internal/hostimport"
	"github.com/tomtom215/callscope/internal/middleware"
	"github.com/tomtom215/callscope/internal/models"
	"github.com/tomtom215/callscope/internal/session"
)

// apiTestDBSemaphore serializes database creation across handler tests.
// Concurrent DuckDB CGO calls can hang under CI resource pressure.
var apiTestDBSemaphore = make(chan struct{}, 1)

// setupTestDBForAPI creates an in-memory database for handler tests. The
// semaphore is held for the test lifetime and released via t.Cleanup.
func setupTestDBForAPI(t *testing.T) *database.DB {
	t.Helper()

	apiTestDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-apiTestDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
	}

	db, err := database.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

// testHandlerConfig returns a config with the page sizes and session
// defaults the handlers expect.
func testHandlerConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			DefaultPageSize: 100,
			MaxPageSize:     1000,
		},
		Session: config.SessionConfig{
			BlockCount:         4,
			TerminationTimeout: 60 * time.Second,
			MaxCallIDs:         100,
		},
	}
}

// setupTestHandlerWithDB creates a handler over a real database with no
// session service, hub, or publisher wired.
func setupTestHandlerWithDB(t *testing.T, db *database.DB) *Handler {
	t.Helper()
	return &Handler{
		db:        db,
		importer:  hostimport.NewImporter(db),
		config:    testHandlerConfig(),
		startTime: time.Now(),
		perfMon:   middleware.NewPerformanceMonitor(1000),
	}
}

// setupSessionHandler creates a handler whose session service reads from
// the given store. The database stays nil so session endpoints are
// exercised in isolation.
func setupSessionHandler(t *testing.T, store session.Store, cfg *config.Config) *Handler {
	t.Helper()
	if cfg == nil {
		cfg = testHandlerConfig()
	}
	return &Handler{
		sessions:  session.New(store, cfg.Session),
		config:    cfg,
		startTime: time.Now(),
		perfMon:   middleware.NewPerformanceMonitor(1000),
	}
}

// testEnvelope decodes the response envelope with the data payload left
// raw so each test can unmarshal it into the expected type.
type testEnvelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) *testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, w.Body.String())
	}
	return &env
}

// requireErrorCode asserts an error envelope with the given status and code.
func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *testEnvelope {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d\nbody: %s", w.Code, status, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Status != "error" {
		t.Fatalf("envelope status = %q, want error", env.Status)
	}
	if env.Error == nil {
		t.Fatal("error payload missing")
	}
	if env.Error.Code != code {
		t.Fatalf("error code = %q, want %q", env.Error.Code, code)
	}
	return env
}

// postJSON invokes a handler directly with a JSON body.
func postJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}
