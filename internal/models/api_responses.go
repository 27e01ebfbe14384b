// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package models

import "time"

// APIResponse is the envelope every HTTP endpoint returns.
//
// Status is "success" or "error"; Data carries the payload on success and
// Error the structured failure on error. Metadata is always present so
// clients can track server time and query cost uniformly.
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": [{"leg_id": "10.0.0.5:10500:10.0.1.9:22384", ...}],
//	  "metadata": {"timestamp": "2026-02-11T09:30:00Z", "query_time_ms": 12}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields: generation time and
// the store query cost in milliseconds (0 when no query ran).
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the structured error payload. Code is machine-readable
// (VALIDATION_ERROR, DATABASE_ERROR, NOT_FOUND, ...), Message is for
// humans, Details names offending fields or constraints.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo describes an offset-paginated list response.
type PaginationInfo struct {
	Total   int  `json:"total"`
	Count   int  `json:"count"`
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// HostList is the payload of the hosts listing endpoint.
type HostList struct {
	Hosts      []Host         `json:"hosts"`
	Pagination PaginationInfo `json:"pagination"`
}

// ImportStats summarizes one bulk host import run.
type ImportStats struct {
	Total    int      `json:"total"`
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// IngestResult summarizes one report ingest batch.
type IngestResult struct {
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}
