// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/metrics"
	"github.com/tomtom215/callscope/internal/models"
)

const insertMediaReportSQL = `INSERT INTO media_reports (
	id, stream, call_id,
	src_addr, src_port, dst_addr, dst_port,
	created_at, terminated_at, duration,
	packets_expected, packets_received, packets_lost, packets_rejected,
	jitter_last, jitter_avg, jitter_min, jitter_max,
	mos, r_factor, fraction_lost,
	ssrc, payload_type, codec
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`

// mediaReportArgs flattens a report into the insert parameter list. A zero
// TerminatedAt is stored as NULL so raw interval rows stay distinguishable
// from index rows.
func mediaReportArgs(r *models.MediaReport) []any {
	var terminatedAt any
	if r.TerminatedAt != 0 {
		terminatedAt = r.TerminatedAt
	}
	return []any{
		r.ID, r.Stream, r.CallID,
		r.SrcAddr, r.SrcPort, r.DstAddr, r.DstPort,
		r.CreatedAt, terminatedAt, r.Duration,
		r.Packets.Expected, r.Packets.Received, r.Packets.Lost, r.Packets.Rejected,
		r.Jitter.Last, r.Jitter.Avg, r.Jitter.Min, r.Jitter.Max,
		r.MOS, r.RFactor, r.FractionLost,
		r.SSRC, r.PayloadType, r.Codec,
	}
}

// InsertMediaReport inserts one report, assigning an id when missing.
// Duplicate ids are silently ignored so replayed deliveries stay idempotent.
func (db *DB) InsertMediaReport(ctx context.Context, report *models.MediaReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	stmt, err := db.prepareCached(ctx, insertMediaReportSQL)
	if err != nil {
		return err
	}

	result, err := stmt.ExecContext(ctx, mediaReportArgs(report)...)
	metrics.RecordDBQuery("insert", "media_reports", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert media report: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		logging.Debug().
			Str("report_id", report.ID.String()).
			Str("stream", report.Stream).
			Str("call_id", report.CallID).
			Msg("Duplicate report ignored")
	}

	return nil
}

// InsertMediaReportsBatch atomically inserts a batch of reports inside one
// transaction. Returns the number of rows actually inserted and the number
// skipped as duplicates; on error the whole batch is rolled back.
func (db *DB) InsertMediaReportsBatch(ctx context.Context, reports []*models.MediaReport) (inserted, duplicates int, err error) {
	if len(reports) == 0 {
		return 0, 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("insert_batch", "media_reports", time.Since(start), err)
	}()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertMediaReportSQL)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer closeQuietly(stmt)

	for _, report := range reports {
		if report.ID == uuid.Nil {
			report.ID = uuid.New()
		}
		result, execErr := stmt.ExecContext(ctx, mediaReportArgs(report)...)
		if execErr != nil {
			err = fmt.Errorf("failed to insert report %s: %w", report.ID, execErr)
			return 0, 0, err
		}
		if rows, raErr := result.RowsAffected(); raErr == nil && rows == 0 {
			duplicates++
		} else {
			inserted++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	return inserted, duplicates, nil
}

const selectMediaReportSQL = `SELECT
	id, stream, call_id,
	src_addr, src_port, dst_addr, dst_port,
	created_at, terminated_at, duration,
	packets_expected, packets_received, packets_lost, packets_rejected,
	jitter_last, jitter_avg, jitter_min, jitter_max,
	mos, r_factor, fraction_lost,
	ssrc, payload_type, codec
FROM media_reports WHERE `

// FindMediaReports returns reports matching the filter ordered by
// created_at in the requested direction. Leg assembly relies on ascending
// order, so callers pass SortAsc unless they only need the newest rows.
func (db *DB) FindMediaReports(ctx context.Context, filter ReportFilter, sort SortOrder) ([]models.MediaReport, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildReportWhereClause(filter)
	query := selectMediaReportSQL + where + " ORDER BY created_at " + sort.orderBy()
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "media_reports", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query media reports: %w", err)
	}
	defer rows.Close()

	reports := make([]models.MediaReport, 0)
	for rows.Next() {
		report, err := scanMediaReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media reports: %w", err)
	}

	return reports, nil
}

func scanMediaReport(rows *sql.Rows) (models.MediaReport, error) {
	var r models.MediaReport
	var terminatedAt sql.NullInt64
	var mos, rFactor, fractionLost sql.NullFloat64
	var ssrc sql.NullInt64
	var payloadType sql.NullInt32
	var codec sql.NullString

	err := rows.Scan(
		&r.ID, &r.Stream, &r.CallID,
		&r.SrcAddr, &r.SrcPort, &r.DstAddr, &r.DstPort,
		&r.CreatedAt, &terminatedAt, &r.Duration,
		&r.Packets.Expected, &r.Packets.Received, &r.Packets.Lost, &r.Packets.Rejected,
		&r.Jitter.Last, &r.Jitter.Avg, &r.Jitter.Min, &r.Jitter.Max,
		&mos, &rFactor, &fractionLost,
		&ssrc, &payloadType, &codec,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan media report: %w", err)
	}

	if terminatedAt.Valid {
		r.TerminatedAt = terminatedAt.Int64
	}
	if mos.Valid {
		r.MOS = mos.Float64
	}
	if rFactor.Valid {
		r.RFactor = rFactor.Float64
	}
	if fractionLost.Valid {
		r.FractionLost = fractionLost.Float64
	}
	if ssrc.Valid {
		r.SSRC = ssrc.Int64
	}
	if payloadType.Valid {
		r.PayloadType = int(payloadType.Int32)
	}
	if codec.Valid {
		r.Codec = codec.String
	}

	return r, nil
}

const insertSIPReportSQL = `INSERT INTO sip_reports (
	id, call_id, method, state,
	src_addr, src_port, dst_addr, dst_port,
	caller, callee,
	created_at, terminated_at, duration, error_code
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`

// InsertSIPReport inserts one SIP dialog summary, ignoring duplicates.
func (db *DB) InsertSIPReport(ctx context.Context, report *models.SIPReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var terminatedAt any
	if report.TerminatedAt != 0 {
		terminatedAt = report.TerminatedAt
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, insertSIPReportSQL,
		report.ID, report.CallID, report.Method, report.State,
		report.SrcAddr, report.SrcPort, report.DstAddr, report.DstPort,
		report.Caller, report.Callee,
		report.CreatedAt, terminatedAt, report.Duration, report.ErrorCode,
	)
	metrics.RecordDBQuery("insert", "sip_reports", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert sip report: %w", err)
	}
	return nil
}

// FindSIPReports returns SIP dialog summaries for the Call-ID set within
// the time window, ascending by created_at.
func (db *DB) FindSIPReports(ctx context.Context, callIDs []string, from, to int64) ([]models.SIPReport, error) {
	if len(callIDs) == 0 {
		return []models.SIPReport{}, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	clauses := []string{"created_at >= ?", "created_at <= ?"}
	args := []any{from, to}
	appendInClause("call_id", callIDs, &clauses, &args)

	query := `SELECT
		id, call_id, method, state,
		src_addr, src_port, dst_addr, dst_port,
		caller, callee,
		created_at, terminated_at, duration, error_code
	FROM sip_reports WHERE ` + strings.Join(clauses, " AND ") + " ORDER BY created_at ASC"

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "sip_reports", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query sip reports: %w", err)
	}
	defer rows.Close()

	reports := make([]models.SIPReport, 0)
	for rows.Next() {
		var r models.SIPReport
		var method, state, caller, callee sql.NullString
		var terminatedAt sql.NullInt64
		var errorCode sql.NullInt32

		err := rows.Scan(
			&r.ID, &r.CallID, &method, &state,
			&r.SrcAddr, &r.SrcPort, &r.DstAddr, &r.DstPort,
			&caller, &callee,
			&r.CreatedAt, &terminatedAt, &r.Duration, &errorCode,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sip report: %w", err)
		}

		r.Method = method.String
		r.State = state.String
		r.Caller = caller.String
		r.Callee = callee.String
		if terminatedAt.Valid {
			r.TerminatedAt = terminatedAt.Int64
		}
		if errorCode.Valid {
			r.ErrorCode = int(errorCode.Int32)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sip reports: %w", err)
	}

	return reports, nil
}
