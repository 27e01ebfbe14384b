// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package aggregate

import (
	"testing"

	"github.com/tomtom215/callscope/internal/models"
)

func TestSplitChunksTwoBlockSpan(t *testing.T) {
	// A report that crosses exactly one boundary splits into two chunks:
	// the remaining budget and the overflow.
	r := report(0, 150, 300)
	chunks := splitChunks(&r, 50, 100)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Duration != 50 || chunks[1].Duration != 100 {
		t.Errorf("chunk durations = [%d, %d], want [50, 100]", chunks[0].Duration, chunks[1].Duration)
	}
	if chunks[0].CreatedAt != 0 || chunks[1].CreatedAt != 50 {
		t.Errorf("chunk starts = [%d, %d], want [0, 50]", chunks[0].CreatedAt, chunks[1].CreatedAt)
	}
}

func TestSplitChunksDurationConserved(t *testing.T) {
	cases := []struct {
		name          string
		duration      int64
		budget, width int64
		wantChunks    int
	}{
		{"one boundary", 150, 50, 100, 2},
		{"several boundaries", 350, 50, 100, 4},
		{"full budget then full widths", 400, 100, 100, 4},
		{"zero budget", 250, 0, 100, 4},
		{"tiny overflow", 101, 100, 100, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := report(1000, tc.duration, 500)
			chunks := splitChunks(&r, tc.budget, tc.width)

			if len(chunks) != tc.wantChunks {
				t.Fatalf("expected %d chunks, got %d", tc.wantChunks, len(chunks))
			}

			var total int64
			start := r.CreatedAt
			for i, c := range chunks {
				if c.CreatedAt != start {
					t.Errorf("chunk %d starts at %d, want %d", i, c.CreatedAt, start)
				}
				total += c.Duration
				start += c.Duration
			}
			if total != tc.duration {
				t.Errorf("chunk durations sum to %d, want %d", total, tc.duration)
			}
		})
	}
}

func TestSplitChunksPacketsConserved(t *testing.T) {
	r := report(0, 250, 0)
	r.Packets = models.PacketStats{Expected: 7, Received: 5, Lost: 2, Rejected: 1}

	chunks := splitChunks(&r, 50, 100)

	var got models.PacketStats
	for _, c := range chunks {
		got.Add(c.Packets)
	}
	if got != r.Packets {
		t.Errorf("packet totals = %+v, want %+v", got, r.Packets)
	}
}

func TestSplitChunksRemainderGoesLast(t *testing.T) {
	// 7 expected packets over [50, 100, 100]: integer shares 1 and 2,
	// the last chunk absorbs the leftover 4.
	r := report(0, 250, 7)
	chunks := splitChunks(&r, 50, 100)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	want := []int64{1, 2, 4}
	for i, w := range want {
		if chunks[i].Packets.Expected != w {
			t.Errorf("chunk %d expected = %d, want %d", i, chunks[i].Packets.Expected, w)
		}
	}
}

func TestSplitChunksProportionalShares(t *testing.T) {
	r := report(0, 250, 500)
	chunks := splitChunks(&r, 50, 100)

	want := []int64{100, 200, 200}
	for i, w := range want {
		if chunks[i].Packets.Expected != w {
			t.Errorf("chunk %d expected = %d, want %d", i, chunks[i].Packets.Expected, w)
		}
	}
}

func TestSplitChunksCarriesQualityFields(t *testing.T) {
	r := report(0, 150, 300)
	r.Jitter = models.JitterStats{Last: 3, Avg: 2.5, Min: 1, Max: 4}
	r.MOS = 4.2
	r.RFactor = 86.5
	r.Codec = "PCMU"

	for i, c := range splitChunks(&r, 50, 100) {
		if c.Jitter != r.Jitter {
			t.Errorf("chunk %d jitter = %+v, want %+v", i, c.Jitter, r.Jitter)
		}
		if c.MOS != r.MOS || c.RFactor != r.RFactor {
			t.Errorf("chunk %d quality = %v/%v, want %v/%v", i, c.MOS, c.RFactor, r.MOS, r.RFactor)
		}
		if c.Codec != r.Codec {
			t.Errorf("chunk %d codec = %q, want %q", i, c.Codec, r.Codec)
		}
	}
}

func TestSplitChunksZeroBudgetLeadingChunk(t *testing.T) {
	// When the previous report landed exactly on a boundary the next
	// split starts with an empty chunk that folds as a no-op.
	r := report(0, 250, 500)
	chunks := splitChunks(&r, 0, 100)

	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if chunks[0].Duration != 0 || chunks[0].Packets.Expected != 0 {
		t.Errorf("leading chunk = %+v, want empty", chunks[0])
	}
	if got := chunks[1].Duration; got != 100 {
		t.Errorf("chunk 1 duration = %d, want 100", got)
	}
	if got := chunks[3].Duration; got != 50 {
		t.Errorf("last chunk duration = %d, want 50", got)
	}
}
