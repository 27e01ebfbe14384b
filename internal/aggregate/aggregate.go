// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package aggregate

import "github.com/tomtom215/callscope/internal/models"

// Span describes the time geometry of one aggregation run. All values are
// epoch milliseconds except Count. LegStart/LegDuration come from the leg's
// index report, FlowStart from the first raw report of the party being
// aggregated, Count from configuration — passed explicitly so the core
// stays parameter-driven.
type Span struct {
	LegStart    int64
	LegDuration int64
	FlowStart   int64
	Count       int
}

// BlockWidth returns the nominal width of one block: the leg duration split
// into Count slices with integer truncation. The remainder is absorbed by
// the final block running short.
func (s Span) BlockWidth() int64 {
	if s.Count <= 0 {
		return 0
	}
	return s.LegDuration / int64(s.Count)
}

// SelectFlow picks the directional flow a report batch belongs to. The
// flow whose (source, destination) port pair lies within a tolerance of
// 0-1 of the first report's ports is the out flow; any mismatch selects
// in. This is a nearest-match heuristic, not an equality check: RTP and
// RTCP of one stream conventionally run on adjacent ports, so a report
// pair may sit one port off the flow it measures.
func SelectFlow(leg *models.LegSession, first *models.MediaReport) *models.MediaFlow {
	if portsAdjacent(first.SrcPort, leg.Out.SrcPort) && portsAdjacent(first.DstPort, leg.Out.DstPort) {
		return leg.Out
	}
	return leg.In
}

func portsAdjacent(a, b int) bool {
	d := a - b
	return d >= -1 && d <= 1
}

// Blocks folds a time-ordered report sequence into a complete block
// sequence spanning the leg's full duration, including gaps. The result
// always has exactly span.Count entries and is freshly allocated; callers
// append it to the selected flow themselves. Running Blocks twice for the
// same flow and appending both results duplicates data — session assembly
// must invoke it at most once per flow per request.
//
// A degenerate span (leg shorter than its block count, so the nominal
// block width truncates to zero) yields Count empty blocks without
// folding: sub-width legs carry no meaningful slices.
func Blocks(span Span, reports []models.MediaReport) []models.BlockStats {
	if span.Count <= 0 {
		return nil
	}

	blocks := make([]models.BlockStats, 0, span.Count)
	width := span.BlockWidth()
	if width <= 0 {
		return pad(blocks, span.Count)
	}

	// Leading gap: whole block widths between leg start and the flow's
	// first report become empty blocks; a partial remainder shrinks the
	// first real block's budget. A flow starting before the leg clamps
	// to zero gap.
	gap := span.FlowStart - span.LegStart
	if gap < 0 {
		gap = 0
	}
	for i := int64(0); i < gap/width; i++ {
		blocks = appendBlock(blocks, models.BlockStats{}, span.Count)
	}
	budget := width
	if rem := gap % width; rem != 0 {
		budget = width - rem
	}

	var acc models.BlockStats
	for i := range reports {
		r := &reports[i]
		switch {
		case r.Duration < budget:
			fold(&acc, r)
			budget -= r.Duration

		case r.Duration > budget:
			chunks := splitChunks(r, budget, width)
			fold(&acc, &chunks[0])
			blocks = appendBlock(blocks, acc, span.Count)
			acc = models.BlockStats{}
			for j := 1; j < len(chunks)-1; j++ {
				var mid models.BlockStats
				fold(&mid, &chunks[j])
				blocks = appendBlock(blocks, mid, span.Count)
			}
			last := &chunks[len(chunks)-1]
			fold(&acc, last)
			budget = width - last.Duration

		default:
			fold(&acc, r)
			blocks = appendBlock(blocks, acc, span.Count)
			acc = models.BlockStats{}
			budget = width
		}
	}

	// Trailing fill: a partially filled accumulator still owns its slot.
	if !acc.Empty() && len(blocks) < span.Count {
		blocks = append(blocks, acc)
	}

	return pad(blocks, span.Count)
}

// appendBlock appends b unless the sequence already reached count.
// Report content overrunning the leg span is dropped here, keeping the
// fixed-length invariant under malformed input.
func appendBlock(blocks []models.BlockStats, b models.BlockStats, count int) []models.BlockStats {
	if len(blocks) >= count {
		return blocks
	}
	return append(blocks, b)
}

func pad(blocks []models.BlockStats, count int) []models.BlockStats {
	for len(blocks) < count {
		blocks = append(blocks, models.BlockStats{})
	}
	return blocks
}

// fold accumulates one report (or chunk) into a block. Packet counters add
// fieldwise; jitter min/max extend, avg weights by folded duration, last
// follows the newest report. The first fold adopts the report's jitter
// wholesale so a zero-valued accumulator cannot pin the minimum at zero.
func fold(acc *models.BlockStats, r *models.MediaReport) {
	if r.Duration == 0 && r.Packets.Expected == 0 {
		return
	}

	if acc.Duration == 0 && acc.Empty() {
		acc.Jitter = r.Jitter
	} else {
		if r.Jitter.Min < acc.Jitter.Min {
			acc.Jitter.Min = r.Jitter.Min
		}
		if r.Jitter.Max > acc.Jitter.Max {
			acc.Jitter.Max = r.Jitter.Max
		}
		if total := acc.Duration + r.Duration; total > 0 {
			acc.Jitter.Avg = (acc.Jitter.Avg*float64(acc.Duration) + r.Jitter.Avg*float64(r.Duration)) / float64(total)
		}
		acc.Jitter.Last = r.Jitter.Last
	}

	acc.Packets.Add(r.Packets)
	acc.Duration += r.Duration
}
