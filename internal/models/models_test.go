// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package models

import (
	"errors"
	"testing"
)

func TestSessionRequestValidate(t *testing.T) {
	created := int64(1700000000000)
	terminated := int64(1700000060000)

	t.Run("complete request passes", func(t *testing.T) {
		req := SessionRequest{
			CreatedAt:    &created,
			TerminatedAt: &terminated,
			CallID:       []string{"abc@10.0.0.1"},
		}
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing fields are named", func(t *testing.T) {
		cases := []struct {
			name string
			req  SessionRequest
			want string
		}{
			{"no created_at", SessionRequest{TerminatedAt: &terminated, CallID: []string{"x"}}, "created_at"},
			{"no terminated_at", SessionRequest{CreatedAt: &created, CallID: []string{"x"}}, "terminated_at"},
			{"no call_id", SessionRequest{CreatedAt: &created, TerminatedAt: &terminated}, "call_id"},
			{"empty call_id list", SessionRequest{CreatedAt: &created, TerminatedAt: &terminated, CallID: []string{}}, "call_id"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				err := tc.req.Validate()
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var missing *MissingFieldError
				if !errors.As(err, &missing) {
					t.Fatalf("expected MissingFieldError, got %T", err)
				}
				if missing.Field != tc.want {
					t.Errorf("expected field %q, got %q", tc.want, missing.Field)
				}
			})
		}
	})

	t.Run("zero timestamps are valid values", func(t *testing.T) {
		zero := int64(0)
		req := SessionRequest{CreatedAt: &zero, TerminatedAt: &zero, CallID: []string{"x"}}
		if err := req.Validate(); err != nil {
			t.Fatalf("epoch zero should validate: %v", err)
		}
	})
}

func TestSessionRequestWindow(t *testing.T) {
	created := int64(1000)
	terminated := int64(5000)
	req := SessionRequest{CreatedAt: &created, TerminatedAt: &terminated, CallID: []string{"x"}}

	window := req.Window(60000)
	if window.From != 1000 {
		t.Errorf("expected window start 1000, got %d", window.From)
	}
	if window.To != 65000 {
		t.Errorf("expected window end terminated+timeout=65000, got %d", window.To)
	}
}

func TestMediaReportIdentifiers(t *testing.T) {
	r := MediaReport{
		Stream:  StreamRTPRaw,
		SrcAddr: "10.0.0.5", SrcPort: 10500,
		DstAddr: "10.0.1.9", DstPort: 22384,
	}
	if got := r.LegID(); got != "10.0.0.5:10500:10.0.1.9:22384" {
		t.Errorf("unexpected leg id: %s", got)
	}
	if got := r.PartyID(); got != "10.0.0.5:10500" {
		t.Errorf("unexpected party id: %s", got)
	}
	if got := r.Kind(); got != KindRTP {
		t.Errorf("expected rtp kind, got %s", got)
	}
	r.Stream = StreamRTCPIndex
	if got := r.Kind(); got != KindRTCP {
		t.Errorf("expected rtcp kind, got %s", got)
	}
}

func TestNewLegSession(t *testing.T) {
	index := &MediaReport{
		Stream:       StreamRTPIndex,
		CallID:       "call-1",
		SrcAddr:      "10.0.0.5",
		SrcPort:      10500,
		DstAddr:      "10.0.1.9",
		DstPort:      22384,
		CreatedAt:    1000,
		TerminatedAt: 5000,
		Duration:     4000,
	}

	leg := NewLegSession(index)

	if leg.LegID != index.LegID() {
		t.Errorf("leg id mismatch: %s", leg.LegID)
	}
	if leg.Duration != 4000 {
		t.Errorf("expected duration 4000, got %d", leg.Duration)
	}
	if leg.Out.SrcPort != 10500 || leg.Out.DstPort != 22384 {
		t.Errorf("out flow ports wrong: %d->%d", leg.Out.SrcPort, leg.Out.DstPort)
	}
	if leg.In.SrcPort != 22384 || leg.In.DstPort != 10500 {
		t.Errorf("in flow should mirror ports: %d->%d", leg.In.SrcPort, leg.In.DstPort)
	}
	if leg.Out.Duration != leg.Duration || leg.In.Duration != leg.Duration {
		t.Error("flows should inherit leg duration")
	}
	if len(leg.Out.Blocks) != 0 || len(leg.In.Blocks) != 0 {
		t.Error("fresh leg must have no blocks")
	}

	t.Run("negative duration clamps to zero", func(t *testing.T) {
		bad := &MediaReport{CreatedAt: 5000, TerminatedAt: 1000, Duration: -4000}
		leg := NewLegSession(bad)
		if leg.Duration != 0 {
			t.Errorf("expected clamped duration 0, got %d", leg.Duration)
		}
	})
}

func TestBlockStatsEmpty(t *testing.T) {
	var b BlockStats
	if !b.Empty() {
		t.Error("zero block must be empty")
	}
	b.Packets.Expected = 1
	if b.Empty() {
		t.Error("block with expected packets is not empty")
	}
}

func TestHostValidation(t *testing.T) {
	cases := []struct {
		name string
		host Host
		want bool
	}{
		{"name and address", Host{Name: "pbx-1", Addresses: []string{"10.0.0.5"}}, true},
		{"name and cidr", Host{Name: "trunk", Networks: []string{"192.168.10.0/24"}}, true},
		{"missing name", Host{Addresses: []string{"10.0.0.5"}}, false},
		{"no addresses at all", Host{Name: "empty"}, false},
		{"bad cidr", Host{Name: "bad", Networks: []string{"not-a-cidr"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.host.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHostNormalize(t *testing.T) {
	h := Host{Name: "  pbx-1  ", Addresses: []string{" 10.0.0.5 ", "", "10.0.0.6:5060"}}
	h.Normalize()
	if h.Name != "pbx-1" {
		t.Errorf("name not trimmed: %q", h.Name)
	}
	if len(h.Addresses) != 2 {
		t.Fatalf("expected 2 addresses after normalize, got %d", len(h.Addresses))
	}
	if h.Addresses[0] != "10.0.0.5" {
		t.Errorf("address not trimmed: %q", h.Addresses[0])
	}
}

func TestHostMatches(t *testing.T) {
	h := Host{
		Name:      "media-gw",
		Addresses: []string{"10.0.0.5", "10.0.0.7:5060"},
		Networks:  []string{"172.16.0.0/16"},
	}

	cases := []struct {
		addr string
		want bool
	}{
		{"10.0.0.5", true},
		{"10.0.0.5:10500", true},
		{"10.0.0.7", true},
		{"172.16.4.2", true},
		{"172.16.4.2:9000", true},
		{"10.0.0.9", false},
		{"not-an-ip", false},
	}
	for _, tc := range cases {
		if got := h.Matches(tc.addr); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}
