// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Report stream identifiers. Index streams carry one summary document per leg
// (timing, endpoints, whole-leg duration); raw streams carry the periodic
// per-interval measurements that the block aggregator folds.
const (
	StreamRTPIndex  = "rtp_index"
	StreamRTPRaw    = "rtp_raw"
	StreamRTCPIndex = "rtcp_index"
	StreamRTCPRaw   = "rtcp_raw"
	StreamSIPCall   = "sip_call"
)

// Report kinds, the protocol half of a stream identifier.
const (
	KindRTP  = "rtp"
	KindRTCP = "rtcp"
)

// PacketStats holds the extensive (additive) packet counters of a report or
// block. All four counters scale with observation duration, so chunk
// splitting apportions them proportionally and folding adds them fieldwise.
type PacketStats struct {
	Expected int64 `json:"expected"`
	Received int64 `json:"received"`
	Lost     int64 `json:"lost"`
	Rejected int64 `json:"rejected"`
}

// Add accumulates p with o fieldwise.
func (p *PacketStats) Add(o PacketStats) {
	p.Expected += o.Expected
	p.Received += o.Received
	p.Lost += o.Lost
	p.Rejected += o.Rejected
}

// JitterStats holds the intensive interarrival-jitter metrics of a report or
// block, in milliseconds. Min/Max extend across folds, Avg is duration
// weighted, Last tracks the newest folded report.
type JitterStats struct {
	Last float64 `json:"last"`
	Avg  float64 `json:"avg"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// MediaReport is one immutable RTP or RTCP measurement document produced by
// upstream capture. Index documents summarize a whole leg (TerminatedAt set,
// Duration spans the leg); raw documents cover one reporting interval.
type MediaReport struct {
	ID           uuid.UUID   `json:"id"`
	Stream       string      `json:"stream"`
	CallID       string      `json:"call_id"`
	SrcAddr      string      `json:"src_addr"`
	SrcPort      int         `json:"src_port"`
	DstAddr      string      `json:"dst_addr"`
	DstPort      int         `json:"dst_port"`
	CreatedAt    int64       `json:"created_at"`
	TerminatedAt int64       `json:"terminated_at,omitempty"`
	Duration     int64       `json:"duration"`
	Packets      PacketStats `json:"packets"`
	Jitter       JitterStats `json:"jitter"`
	MOS          float64     `json:"mos,omitempty"`
	RFactor      float64     `json:"r_factor,omitempty"`
	FractionLost float64     `json:"fraction_lost,omitempty"`
	SSRC         int64       `json:"ssrc,omitempty"`
	PayloadType  int         `json:"payload_type,omitempty"`
	Codec        string      `json:"codec,omitempty"`
}

// LegID derives the leg identifier from the report's endpoint pair.
// Reports of the same leg share source and destination addresses, so the
// concatenation is stable across the index and raw streams.
func (r *MediaReport) LegID() string {
	return fmt.Sprintf("%s:%d:%s:%d", r.SrcAddr, r.SrcPort, r.DstAddr, r.DstPort)
}

// PartyID identifies the originating side of a report for per-party
// aggregation. Both directions of a leg report under the same leg id but
// from distinct source endpoints.
func (r *MediaReport) PartyID() string {
	return fmt.Sprintf("%s:%d", r.SrcAddr, r.SrcPort)
}

// Kind returns "rtp" or "rtcp" for a known stream, or "" otherwise.
func (r *MediaReport) Kind() string {
	switch r.Stream {
	case StreamRTPIndex, StreamRTPRaw:
		return KindRTP
	case StreamRTCPIndex, StreamRTCPRaw:
		return KindRTCP
	}
	return ""
}

// SIPReport is one SIP signaling record: an INVITE transaction or dialog
// summary with its outcome.
type SIPReport struct {
	ID           uuid.UUID `json:"id"`
	CallID       string    `json:"call_id"`
	Method       string    `json:"method"`
	State        string    `json:"state"`
	SrcAddr      string    `json:"src_addr"`
	SrcPort      int       `json:"src_port"`
	DstAddr      string    `json:"dst_addr"`
	DstPort      int       `json:"dst_port"`
	Caller       string    `json:"caller,omitempty"`
	Callee       string    `json:"callee,omitempty"`
	CreatedAt    int64     `json:"created_at"`
	TerminatedAt int64     `json:"terminated_at,omitempty"`
	Duration     int64     `json:"duration"`
	ErrorCode    int       `json:"error_code,omitempty"`
}

// SIP dialog states recorded by upstream capture.
const (
	SIPStateAnswered   = "answered"
	SIPStateCanceled   = "canceled"
	SIPStateFailed     = "failed"
	SIPStateRedirected = "redirected"
	SIPStateUnanswered = "unanswered"
)
