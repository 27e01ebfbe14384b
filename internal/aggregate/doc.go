// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package aggregate implements the block aggregation core: partitioning a
// leg's time span into a fixed count of statistical blocks and folding
// per-report RTP/RTCP measurements into them.
//
// The package is deliberately pure. Blocks takes an explicit Span (leg
// timing, flow start, block count) and a report slice and returns a fresh
// block sequence; callers own composition and appending. It reads no
// configuration, performs no I/O, and never mutates its inputs.
//
// Preconditions documented rather than defended: reports must be sorted
// ascending by start time (the store's query contract). Out-of-span report
// content is truncated, never grows the result — the returned sequence
// always has exactly Span.Count entries.
package aggregate
