// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package aggregate

import "github.com/tomtom215/callscope/internal/models"

// splitChunks divides a report that straddles block boundaries into
// consecutive synthetic sub-reports: the first exactly fills the remaining
// budget, middles are full block widths, the last takes whatever remains
// (0 < last <= width). Chunk durations sum to the original duration.
//
// Packet counters apportion proportionally by chunk duration with the
// integer remainder assigned to the last chunk, so totals are conserved
// exactly. Jitter, MOS and R-factor are rate-like and copy unchanged to
// every chunk; refolding them duration-weighted reproduces the original
// average.
//
// Caller guarantees r.Duration > budget >= 0 and width > 0.
func splitChunks(r *models.MediaReport, budget, width int64) []models.MediaReport {
	durations := make([]int64, 0, 2+(r.Duration-budget)/width)
	durations = append(durations, budget)
	remaining := r.Duration - budget
	for remaining > width {
		durations = append(durations, width)
		remaining -= width
	}
	durations = append(durations, remaining)

	chunks := make([]models.MediaReport, len(durations))
	var assigned models.PacketStats
	start := r.CreatedAt
	for i, d := range durations {
		chunk := *r
		chunk.CreatedAt = start
		chunk.Duration = d
		if i == len(durations)-1 {
			chunk.Packets = models.PacketStats{
				Expected: r.Packets.Expected - assigned.Expected,
				Received: r.Packets.Received - assigned.Received,
				Lost:     r.Packets.Lost - assigned.Lost,
				Rejected: r.Packets.Rejected - assigned.Rejected,
			}
		} else {
			chunk.Packets = models.PacketStats{
				Expected: r.Packets.Expected * d / r.Duration,
				Received: r.Packets.Received * d / r.Duration,
				Lost:     r.Packets.Lost * d / r.Duration,
				Rejected: r.Packets.Rejected * d / r.Duration,
			}
			assigned.Add(chunk.Packets)
		}
		chunks[i] = chunk
		start += d
	}
	return chunks
}
