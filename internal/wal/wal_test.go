// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package wal

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEvent struct {
	CallID string `json:"call_id"`
	Seq    int    `json:"seq"`
}

func testWAL(t *testing.T) *BadgerWAL {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	cfg.SyncWrites = false

	w, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = w.Close()
	})
	return w
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = ""

	if _, err := Open(&cfg); err == nil {
		t.Fatal("Open() with empty path should fail")
	}
}

func TestWAL_WriteAndConfirm(t *testing.T) {
	w := testWAL(t)
	ctx := context.Background()

	entryID, err := w.Write(ctx, &testEvent{CallID: "call-1@pbx", Seq: 1})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if entryID == "" {
		t.Fatal("Write() returned empty entry ID")
	}

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, want 1", len(pending))
	}
	if pending[0].ID != entryID {
		t.Errorf("pending entry ID = %q, want %q", pending[0].ID, entryID)
	}
	if pending[0].Confirmed {
		t.Error("pending entry should not be confirmed")
	}

	if err := w.Confirm(ctx, entryID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	pending, err = w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() after confirm error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending count after confirm = %d, want 0", len(pending))
	}

	stats := w.Stats()
	if stats.ConfirmedCount != 1 {
		t.Errorf("ConfirmedCount = %d, want 1", stats.ConfirmedCount)
	}
	if stats.TotalWrites != 1 {
		t.Errorf("TotalWrites = %d, want 1", stats.TotalWrites)
	}
	if stats.TotalConfirms != 1 {
		t.Errorf("TotalConfirms = %d, want 1", stats.TotalConfirms)
	}
}

func TestWAL_Write_NilEvent(t *testing.T) {
	w := testWAL(t)

	if _, err := w.Write(context.Background(), nil); !errors.Is(err, ErrNilEvent) {
		t.Errorf("Write(nil) error = %v, want ErrNilEvent", err)
	}
}

func TestWAL_Confirm_Errors(t *testing.T) {
	w := testWAL(t)
	ctx := context.Background()

	t.Run("empty entry ID", func(t *testing.T) {
		if err := w.Confirm(ctx, ""); !errors.Is(err, ErrEmptyEntryID) {
			t.Errorf("Confirm(\"\") error = %v, want ErrEmptyEntryID", err)
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		if err := w.Confirm(ctx, "no-such-entry"); !errors.Is(err, ErrEntryNotFound) {
			t.Errorf("Confirm() error = %v, want ErrEntryNotFound", err)
		}
	})

	t.Run("already confirmed", func(t *testing.T) {
		entryID, err := w.Write(ctx, &testEvent{CallID: "call-2@pbx"})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := w.Confirm(ctx, entryID); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if err := w.Confirm(ctx, entryID); !errors.Is(err, ErrEntryNotFound) {
			t.Errorf("second Confirm() error = %v, want ErrEntryNotFound", err)
		}
	})
}

func TestWAL_PayloadRoundTrip(t *testing.T) {
	w := testWAL(t)
	ctx := context.Background()

	want := &testEvent{CallID: "call-3@pbx", Seq: 42}
	if _, err := w.Write(ctx, want); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, want 1", len(pending))
	}

	var got testEvent
	if err := pending[0].UnmarshalPayload(&got); err != nil {
		t.Fatalf("UnmarshalPayload() error = %v", err)
	}
	if got.CallID != want.CallID || got.Seq != want.Seq {
		t.Errorf("payload = %+v, want %+v", got, *want)
	}
}

func TestWAL_UpdateAttempt(t *testing.T) {
	w := testWAL(t)
	ctx := context.Background()

	entryID, err := w.Write(ctx, &testEvent{CallID: "call-4@pbx"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.UpdateAttempt(ctx, entryID, "connection refused"); err != nil {
		t.Fatalf("UpdateAttempt() error = %v", err)
	}
	if err := w.UpdateAttempt(ctx, entryID, "timeout"); err != nil {
		t.Fatalf("second UpdateAttempt() error = %v", err)
	}

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, want 1", len(pending))
	}
	if pending[0].Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", pending[0].Attempts)
	}
	if pending[0].LastError != "timeout" {
		t.Errorf("LastError = %q, want %q", pending[0].LastError, "timeout")
	}
	if pending[0].LastAttemptAt.IsZero() {
		t.Error("LastAttemptAt should be set")
	}

	if err := w.UpdateAttempt(ctx, "no-such-entry", "err"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("UpdateAttempt() for missing entry = %v, want ErrEntryNotFound", err)
	}
}

func TestWAL_DeleteEntry(t *testing.T) {
	w := testWAL(t)
	ctx := context.Background()

	t.Run("pending", func(t *testing.T) {
		entryID, err := w.Write(ctx, &testEvent{CallID: "call-5@pbx"})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := w.DeleteEntry(ctx, entryID); err != nil {
			t.Fatalf("DeleteEntry() error = %v", err)
		}
		pending, _ := w.GetPending(ctx)
		if len(pending) != 0 {
			t.Errorf("pending count = %d, want 0", len(pending))
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		entryID, err := w.Write(ctx, &testEvent{CallID: "call-6@pbx"})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := w.Confirm(ctx, entryID); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if err := w.DeleteEntry(ctx, entryID); err != nil {
			t.Fatalf("DeleteEntry() error = %v", err)
		}
		if got := w.Stats().ConfirmedCount; got != 0 {
			t.Errorf("ConfirmedCount = %d, want 0", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if err := w.DeleteEntry(ctx, "no-such-entry"); !errors.Is(err, ErrEntryNotFound) {
			t.Errorf("DeleteEntry() error = %v, want ErrEntryNotFound", err)
		}
	})
}

func TestWAL_ClaimEntry(t *testing.T) {
	w := testWAL(t)

	if !w.TryClaimEntry("entry-1") {
		t.Fatal("first claim should succeed")
	}
	if w.TryClaimEntry("entry-1") {
		t.Fatal("second claim on same entry should fail")
	}
	if !w.TryClaimEntry("entry-2") {
		t.Fatal("claim on different entry should succeed")
	}

	w.ReleaseEntry("entry-1")
	if !w.TryClaimEntry("entry-1") {
		t.Fatal("claim after release should succeed")
	}
}

func TestWAL_Stats(t *testing.T) {
	w := testWAL(t)
	ctx := context.Background()

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		id, err := w.Write(ctx, &testEvent{CallID: "call-7@pbx", Seq: i})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		ids = append(ids, id)
	}
	if err := w.Confirm(ctx, ids[0]); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	stats := w.Stats()
	if stats.PendingCount != 2 {
		t.Errorf("PendingCount = %d, want 2", stats.PendingCount)
	}
	if stats.ConfirmedCount != 1 {
		t.Errorf("ConfirmedCount = %d, want 1", stats.ConfirmedCount)
	}
	if stats.TotalWrites != 3 {
		t.Errorf("TotalWrites = %d, want 3", stats.TotalWrites)
	}
}

func TestWAL_Close(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	cfg.SyncWrites = false

	w, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	if _, err := w.Write(context.Background(), &testEvent{}); !errors.Is(err, ErrWALClosed) {
		t.Errorf("Write() after close = %v, want ErrWALClosed", err)
	}
	if _, err := w.GetPending(context.Background()); !errors.Is(err, ErrWALClosed) {
		t.Errorf("GetPending() after close = %v, want ErrWALClosed", err)
	}
}

func TestWAL_Reopen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Path = dir
	cfg.SyncWrites = false
	ctx := context.Background()

	w, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	entryID, err := w.Write(ctx, &testEvent{CallID: "call-8@pbx"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Pending entries survive restart.
	reopenCfg := DefaultConfig()
	reopenCfg.Path = dir
	reopenCfg.SyncWrites = false
	w2, err := Open(&reopenCfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = w2.Close() }()

	pending, err := w2.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != entryID {
		t.Fatalf("pending after reopen = %d entries, want the original entry", len(pending))
	}
}

func TestWAL_GetPending_ContextCanceled(t *testing.T) {
	w := testWAL(t)

	if _, err := w.Write(context.Background(), &testEvent{CallID: "call-9@pbx"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := w.GetPending(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("GetPending() with canceled context = %v, want context.Canceled", err)
	}
}

func TestWAL_RunGC(t *testing.T) {
	w := testWAL(t)

	// Fresh DB has nothing to collect; must still return cleanly.
	if err := w.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestWAL_CloseTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	cfg.SyncWrites = false
	cfg.CloseTimeout = 5 * time.Second

	w, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	start := time.Now()
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > cfg.CloseTimeout {
		t.Errorf("Close() took %v, want under %v", elapsed, cfg.CloseTimeout)
	}
}
