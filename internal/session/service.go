// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package session reconstructs call legs from stored reports. The media
// path builds per-leg block sequences by folding raw RTP/RTCP reports
// through the aggregate package; the details path summarizes the SIP
// signaling view with host name resolution.
//
// All computation is request-scoped: legs, flows, and blocks are built
// fresh from query results per call and discarded after serialization.
package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/callscope/internal/aggregate"
	"github.com/tomtom215/callscope/internal/config"
	"github.com/tomtom215/callscope/internal/database"
	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/metrics"
	"github.com/tomtom215/callscope/internal/models"
)

// Store is the report store the service queries. *database.DB satisfies it.
type Store interface {
	FindMediaReports(ctx context.Context, filter database.ReportFilter, sort database.SortOrder) ([]models.MediaReport, error)
	FindSIPReports(ctx context.Context, callIDs []string, from, to int64) ([]models.SIPReport, error)
	ListHosts(ctx context.Context) ([]models.Host, error)
}

// Service builds session views from stored reports. Block count and
// termination timeout are captured at construction and passed explicitly
// into the aggregation core; nothing here reads configuration ambiently.
type Service struct {
	store              Store
	blockCount         int
	terminationTimeout int64
}

// New creates a session service. Non-positive config values fall back to
// the documented defaults (28 blocks, 60s termination timeout).
func New(store Store, cfg config.SessionConfig) *Service {
	blockCount := cfg.BlockCount
	if blockCount <= 0 {
		blockCount = 28
	}
	timeout := cfg.TerminationTimeout.Milliseconds()
	if timeout <= 0 {
		timeout = 60000
	}
	return &Service{
		store:              store,
		blockCount:         blockCount,
		terminationTimeout: timeout,
	}
}

// BuildMediaSession reconstructs the media legs named by the request: one
// LegPair per leg id seen in either the RTP or RTCP stream, each with its
// per-flow block sequences aggregated. An empty result is a valid outcome,
// never an error.
func (s *Service) BuildMediaSession(ctx context.Context, req *models.SessionRequest) ([]models.LegPair, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	window := req.Window(s.terminationTimeout)

	start := time.Now()

	rtp, err := s.buildKindLegs(ctx, models.KindRTP, req.CallID, window)
	if err != nil {
		return nil, err
	}
	rtcp, err := s.buildKindLegs(ctx, models.KindRTCP, req.CallID, window)
	if err != nil {
		return nil, err
	}

	pairs := mergePairs(rtp, rtcp)

	metrics.RecordSessionBuild("media", time.Since(start), len(pairs), rtp.reportCount+rtcp.reportCount)
	logging.Ctx(ctx).Debug().
		Int("legs", len(pairs)).
		Int("reports", rtp.reportCount+rtcp.reportCount).
		Int("call_ids", len(req.CallID)).
		Msg("Media session built")

	return pairs, nil
}

// kindLegs is the per-stream-kind assembly result: legs keyed by leg id
// plus their first-appearance order from the index stream.
type kindLegs struct {
	legs        map[string]*models.LegSession
	order       []string
	reportCount int
}

// streamsForKind maps a report kind to its index and raw stream names.
func streamsForKind(kind string) (index, raw string) {
	if kind == models.KindRTCP {
		return models.StreamRTCPIndex, models.StreamRTCPRaw
	}
	return models.StreamRTPIndex, models.StreamRTPRaw
}

// buildKindLegs queries one kind's index and raw streams and runs the
// aggregation pass: legs from index reports, raw reports grouped by leg
// and party, one flow selection plus one block computation per party.
func (s *Service) buildKindLegs(ctx context.Context, kind string, callIDs []string, window models.TimeRange) (kindLegs, error) {
	indexStream, rawStream := streamsForKind(kind)
	result := kindLegs{legs: make(map[string]*models.LegSession)}

	index, err := s.store.FindMediaReports(ctx, database.ReportFilter{
		Streams: []string{indexStream},
		CallIDs: callIDs,
		From:    &window.From,
		To:      &window.To,
	}, database.SortAsc)
	if err != nil {
		return result, fmt.Errorf("failed to query %s reports: %w", indexStream, err)
	}

	raw, err := s.store.FindMediaReports(ctx, database.ReportFilter{
		Streams: []string{rawStream},
		CallIDs: callIDs,
		From:    &window.From,
		To:      &window.To,
	}, database.SortAsc)
	if err != nil {
		return result, fmt.Errorf("failed to query %s reports: %w", rawStream, err)
	}
	result.reportCount = len(index) + len(raw)

	// One leg per leg id; the first index report wins when upstream
	// delivered duplicates.
	for i := range index {
		r := &index[i]
		id := r.LegID()
		if _, ok := result.legs[id]; ok {
			continue
		}
		result.legs[id] = models.NewLegSession(r)
		result.order = append(result.order, id)
	}

	// Group raw reports by leg then party, preserving arrival order.
	type partyBatch struct {
		leg     *models.LegSession
		reports []models.MediaReport
	}
	batchIndex := make(map[string]*partyBatch)
	var batches []*partyBatch
	for i := range raw {
		r := &raw[i]
		leg := s.legForReport(result, r)
		if leg == nil {
			logging.Ctx(ctx).Debug().
				Str("stream", r.Stream).
				Str("leg_id", r.LegID()).
				Msg("Raw report without matching leg dropped")
			continue
		}
		key := leg.LegID + "|" + r.PartyID()
		batch, ok := batchIndex[key]
		if !ok {
			batch = &partyBatch{leg: leg}
			batchIndex[key] = batch
			batches = append(batches, batch)
		}
		batch.reports = append(batch.reports, *r)
	}

	// Aggregation pass. Each flow is computed at most once per request;
	// a second party resolving to an already-filled flow is dropped
	// rather than appended twice.
	aggregated := make(map[*models.MediaFlow]bool)
	for _, batch := range batches {
		first := &batch.reports[0]
		flow := aggregate.SelectFlow(batch.leg, first)
		if aggregated[flow] {
			logging.Ctx(ctx).Warn().
				Str("leg_id", batch.leg.LegID).
				Str("direction", flow.Direction).
				Msg("Second party resolved to an aggregated flow, dropping batch")
			continue
		}
		aggregated[flow] = true

		// A zero-duration sub-session produces no blocks at all.
		if flow.Duration == 0 {
			continue
		}

		span := aggregate.Span{
			LegStart:    batch.leg.CreatedAt,
			LegDuration: batch.leg.Duration,
			FlowStart:   first.CreatedAt,
			Count:       s.blockCount,
		}
		flow.Blocks = append(flow.Blocks, aggregate.Blocks(span, batch.reports)...)
		flow.CreatedAt = first.CreatedAt
	}

	return result, nil
}

// legForReport resolves which leg a raw report belongs to: exact leg id
// first, then the mirrored id for return-direction parties, then an
// adjacent-port scan for reports offset by the RTP/RTCP pairing
// convention. Returns nil for orphans.
func (s *Service) legForReport(kl kindLegs, r *models.MediaReport) *models.LegSession {
	if leg, ok := kl.legs[r.LegID()]; ok {
		return leg
	}
	mirror := fmt.Sprintf("%s:%d:%s:%d", r.DstAddr, r.DstPort, r.SrcAddr, r.SrcPort)
	if leg, ok := kl.legs[mirror]; ok {
		return leg
	}
	for _, id := range kl.order {
		leg := kl.legs[id]
		if r.SrcAddr == leg.SrcAddr && r.DstAddr == leg.DstAddr &&
			portsNear(r.SrcPort, leg.SrcPort) && portsNear(r.DstPort, leg.DstPort) {
			return leg
		}
		if r.SrcAddr == leg.DstAddr && r.DstAddr == leg.SrcAddr &&
			portsNear(r.SrcPort, leg.DstPort) && portsNear(r.DstPort, leg.SrcPort) {
			return leg
		}
	}
	return nil
}

func portsNear(a, b int) bool {
	d := a - b
	return d >= -1 && d <= 1
}

// pairKey joins the RTP and RTCP views of one leg. Ports are normalized to
// their even base because RTCP conventionally runs on the RTP port plus
// one, so both views of a leg collapse to the same key.
func pairKey(leg *models.LegSession) string {
	return fmt.Sprintf("%s|%s:%d:%s:%d",
		leg.CallID,
		leg.SrcAddr, leg.SrcPort-leg.SrcPort%2,
		leg.DstAddr, leg.DstPort-leg.DstPort%2)
}

// mergePairs combines per-kind legs into one LegPair per leg, ordered by
// leg creation time then leg id so responses are deterministic.
func mergePairs(rtp, rtcp kindLegs) []models.LegPair {
	pairs := make([]models.LegPair, 0, len(rtp.order)+len(rtcp.order))
	byKey := make(map[string]int)

	for _, id := range rtp.order {
		leg := rtp.legs[id]
		byKey[pairKey(leg)] = len(pairs)
		pairs = append(pairs, models.LegPair{LegID: leg.LegID, RTP: leg})
	}
	for _, id := range rtcp.order {
		leg := rtcp.legs[id]
		key := pairKey(leg)
		if i, ok := byKey[key]; ok && pairs[i].RTCP == nil {
			pairs[i].RTCP = leg
			continue
		}
		byKey[key] = len(pairs)
		pairs = append(pairs, models.LegPair{LegID: leg.LegID, RTCP: leg})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		ci, cj := pairCreatedAt(&pairs[i]), pairCreatedAt(&pairs[j])
		if ci != cj {
			return ci < cj
		}
		return pairs[i].LegID < pairs[j].LegID
	})

	return pairs
}

// pairCreatedAt returns the earliest creation time among the pair's views.
func pairCreatedAt(p *models.LegPair) int64 {
	switch {
	case p.RTP != nil && p.RTCP != nil:
		if p.RTCP.CreatedAt < p.RTP.CreatedAt {
			return p.RTCP.CreatedAt
		}
		return p.RTP.CreatedAt
	case p.RTP != nil:
		return p.RTP.CreatedAt
	case p.RTCP != nil:
		return p.RTCP.CreatedAt
	}
	return 0
}
