// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/metrics"
	"github.com/tomtom215/callscope/internal/models"
)

// BuildSessionDetails summarizes the signaling view of the requested calls:
// one SIPLeg per Call-ID, endpoint addresses resolved against the host
// table. Calls with no stored reports are simply absent from the result.
func (s *Service) BuildSessionDetails(ctx context.Context, req *models.SessionRequest) ([]models.SIPLeg, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	window := req.Window(s.terminationTimeout)

	start := time.Now()

	reports, err := s.store.FindSIPReports(ctx, req.CallID, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query sip reports: %w", err)
	}

	hosts, err := s.store.ListHosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load hosts: %w", err)
	}

	legs := summarizeSIPLegs(reports)
	for i := range legs {
		legs[i].SrcHost = resolveHost(hosts, legs[i].SrcAddr)
		legs[i].DstHost = resolveHost(hosts, legs[i].DstAddr)
	}

	metrics.RecordSessionBuild("details", time.Since(start), len(legs), len(reports))
	logging.Ctx(ctx).Debug().
		Int("legs", len(legs)).
		Int("reports", len(reports)).
		Msg("Session details built")

	return legs, nil
}

// summarizeSIPLegs folds the per-call report sequences into one summary
// each. The first report fixes the endpoints and start time; later reports
// advance the state and termination, so the final dialog outcome wins.
func summarizeSIPLegs(reports []models.SIPReport) []models.SIPLeg {
	byCall := make(map[string]*models.SIPLeg)
	var order []string

	for i := range reports {
		r := &reports[i]
		leg, ok := byCall[r.CallID]
		if !ok {
			leg = &models.SIPLeg{
				CallID:    r.CallID,
				State:     r.State,
				Caller:    r.Caller,
				Callee:    r.Callee,
				SrcAddr:   r.SrcAddr,
				SrcPort:   r.SrcPort,
				DstAddr:   r.DstAddr,
				DstPort:   r.DstPort,
				CreatedAt: r.CreatedAt,
			}
			byCall[r.CallID] = leg
			order = append(order, r.CallID)
		}
		if r.State != "" {
			leg.State = r.State
		}
		if r.Caller != "" && leg.Caller == "" {
			leg.Caller = r.Caller
		}
		if r.Callee != "" && leg.Callee == "" {
			leg.Callee = r.Callee
		}
		if r.TerminatedAt > leg.TerminatedAt {
			leg.TerminatedAt = r.TerminatedAt
		}
		if r.Duration > leg.Duration {
			leg.Duration = r.Duration
		}
		if r.ErrorCode != 0 {
			leg.ErrorCode = r.ErrorCode
		}
		leg.Reports++
	}

	legs := make([]models.SIPLeg, 0, len(order))
	for _, id := range order {
		legs = append(legs, *byCall[id])
	}
	sort.SliceStable(legs, func(i, j int) bool {
		if legs[i].CreatedAt != legs[j].CreatedAt {
			return legs[i].CreatedAt < legs[j].CreatedAt
		}
		return legs[i].CallID < legs[j].CallID
	})
	return legs
}

// resolveHost returns the name of the first configured host matching addr,
// or "" when no host claims it.
func resolveHost(hosts []models.Host, addr string) string {
	for i := range hosts {
		if hosts[i].Matches(addr) {
			return hosts[i].Name
		}
	}
	return ""
}
