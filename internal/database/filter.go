// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package database

import (
	"fmt"
	"strings"
)

// SortOrder selects result ordering by created_at.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// orderBy returns the validated ORDER BY direction, defaulting to ASC so an
// unset zero value never interpolates into SQL.
func (s SortOrder) orderBy() string {
	if s == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// ReportFilter narrows a media report query. All fields are optional and
// combine with AND; list fields use IN (OR within the field).
//
// StreamPrefix selects stream families: "rtp" matches rtp_index and
// rtp_raw, "rtp_index" matches exactly. Streams, when set, overrides the
// prefix with an exact list. From/To bound created_at inclusively in epoch
// milliseconds.
type ReportFilter struct {
	StreamPrefix string
	Streams      []string
	CallIDs      []string
	SrcAddr      string
	From         *int64
	To           *int64
	Limit        int
}

// appendInClause builds a parameterized IN clause for one column and
// appends it to the accumulators. No-op for empty value lists.
func appendInClause(column string, values []string, clauses *[]string, args *[]any) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		*args = append(*args, v)
	}
	*clauses = append(*clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
}

// buildReportConditions returns WHERE clauses and args for a ReportFilter.
func buildReportConditions(filter ReportFilter) ([]string, []any) {
	clauses := []string{}
	args := []any{}

	switch {
	case len(filter.Streams) > 0:
		appendInClause("stream", filter.Streams, &clauses, &args)
	case filter.StreamPrefix != "":
		// ESCAPE is declared explicitly; SQL LIKE has no default escape
		// character and stream names contain underscores.
		clauses = append(clauses, `stream LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(filter.StreamPrefix)+"%")
	}

	appendInClause("call_id", filter.CallIDs, &clauses, &args)

	if filter.SrcAddr != "" {
		clauses = append(clauses, "src_addr = ?")
		args = append(args, filter.SrcAddr)
	}
	if filter.From != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, *filter.To)
	}

	return clauses, args
}

// buildReportWhereClause wraps buildReportConditions into a WHERE clause
// string with a "1=1" base for safe concatenation.
func buildReportWhereClause(filter ReportFilter) (string, []any) {
	clauses, args := buildReportConditions(filter)
	if len(clauses) == 0 {
		return "1=1", args
	}
	return "1=1 AND " + strings.Join(clauses, " AND "), args
}

// escapeLike escapes LIKE metacharacters in user-supplied prefixes.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
