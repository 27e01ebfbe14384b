// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package models

// Flow directions within a leg. "out" is the direction whose source ports
// match the leg's own source endpoint; "in" is the mirrored return flow.
const (
	DirectionOut = "out"
	DirectionIn  = "in"
)

// BlockStats is one fixed-width time slice of a media flow. The zero value
// is an empty block (default counts, no folded duration); the aggregator
// mutates blocks additively while folding reports and never reuses an
// instance across flows.
type BlockStats struct {
	Duration int64       `json:"duration"`
	Packets  PacketStats `json:"packets"`
	Jitter   JitterStats `json:"jitter"`
}

// Empty reports whether nothing has been folded into the block. The
// expected-packet counter is the canonical marker: every upstream report
// carries a nonzero expected count, so a zero value means the block never
// saw one.
func (b *BlockStats) Empty() bool {
	return b.Packets.Expected == 0
}

// MediaFlow is one directional sub-session of a leg. CreatedAt is set from
// the first raw report observed for the flow's party; until reports arrive
// it matches the leg's start. Blocks grows only by session-assembly appends.
type MediaFlow struct {
	Direction string       `json:"direction"`
	SrcPort   int          `json:"src_port"`
	DstPort   int          `json:"dst_port"`
	CreatedAt int64        `json:"created_at"`
	Duration  int64        `json:"duration"`
	Blocks    []BlockStats `json:"blocks"`
}

// LegSession is one media leg reconstructed for a single request. It is
// built from the leg's index report and carries the two candidate
// directional flows. Instances are request-scoped and never persisted.
//
// Invariants: Duration >= 0; after session assembly each flow that received
// reports holds exactly the configured block count.
type LegSession struct {
	LegID        string     `json:"leg_id"`
	CallID       string     `json:"call_id"`
	SrcAddr      string     `json:"src_addr"`
	SrcPort      int        `json:"src_port"`
	DstAddr      string     `json:"dst_addr"`
	DstPort      int        `json:"dst_port"`
	CreatedAt    int64      `json:"created_at"`
	TerminatedAt int64      `json:"terminated_at"`
	Duration     int64      `json:"duration"`
	Codec        string     `json:"codec,omitempty"`
	MOS          float64    `json:"mos,omitempty"`
	RFactor      float64    `json:"r_factor,omitempty"`
	Out          *MediaFlow `json:"out"`
	In           *MediaFlow `json:"in"`
}

// NewLegSession builds a leg session from its index report. Both flows
// inherit the leg's timing; the out flow takes the leg's port pair and the
// in flow mirrors it.
func NewLegSession(index *MediaReport) *LegSession {
	leg := &LegSession{
		LegID:        index.LegID(),
		CallID:       index.CallID,
		SrcAddr:      index.SrcAddr,
		SrcPort:      index.SrcPort,
		DstAddr:      index.DstAddr,
		DstPort:      index.DstPort,
		CreatedAt:    index.CreatedAt,
		TerminatedAt: index.TerminatedAt,
		Duration:     index.Duration,
		Codec:        index.Codec,
		MOS:          index.MOS,
		RFactor:      index.RFactor,
	}
	if leg.Duration < 0 {
		leg.Duration = 0
	}
	leg.Out = &MediaFlow{
		Direction: DirectionOut,
		SrcPort:   index.SrcPort,
		DstPort:   index.DstPort,
		CreatedAt: leg.CreatedAt,
		Duration:  leg.Duration,
	}
	leg.In = &MediaFlow{
		Direction: DirectionIn,
		SrcPort:   index.DstPort,
		DstPort:   index.SrcPort,
		CreatedAt: leg.CreatedAt,
		Duration:  leg.Duration,
	}
	return leg
}

// LegPair is one response entry of a media session: the RTP and RTCP views
// of a single leg id, either of which may be absent from its stream.
type LegPair struct {
	LegID string      `json:"leg_id"`
	RTP   *LegSession `json:"rtp"`
	RTCP  *LegSession `json:"rtcp"`
}

// SIPLeg summarizes the signaling view of one call leg for session detail
// responses.
type SIPLeg struct {
	CallID       string `json:"call_id"`
	State        string `json:"state"`
	Caller       string `json:"caller,omitempty"`
	Callee       string `json:"callee,omitempty"`
	SrcAddr      string `json:"src_addr"`
	SrcPort      int    `json:"src_port"`
	DstAddr      string `json:"dst_addr"`
	DstPort      int    `json:"dst_port"`
	SrcHost      string `json:"src_host,omitempty"`
	DstHost      string `json:"dst_host,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	TerminatedAt int64  `json:"terminated_at"`
	Duration     int64  `json:"duration"`
	ErrorCode    int    `json:"error_code,omitempty"`
	Reports      int    `json:"reports"`
}
