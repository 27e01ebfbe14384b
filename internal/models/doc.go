// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package models defines the shared data types of callscope: media and SIP
// report documents as captured upstream, the request-scoped leg session
// structures produced by session reconstruction, host records, and the
// standard API response envelope.
//
// Timestamps and durations are int64 epoch milliseconds throughout. The
// aggregation core depends on exact integer math over these values, so the
// types never convert to time.Time on the hot path; persistence and API
// layers convert at their edges where human-readable output is wanted.
package models
