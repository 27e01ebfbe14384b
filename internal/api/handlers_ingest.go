// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package api

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/callscope/internal/eventprocessor"
	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/metrics"
	"github.com/tomtom215/callscope/internal/models"
)

// maxIngestBodyBytes caps ingest request bodies.
const maxIngestBodyBytes = 10 << 20

// maxIngestErrors caps the per-record error list in the result.
const maxIngestErrors = 20

// IngestReports accepts media and SIP quality reports.
//
// When the event pipeline is configured, accepted reports are published
// and reach the database through the consumer; otherwise they are
// appended directly. Invalid records are rejected individually without
// failing the batch.
//
// @Summary Ingest quality reports
// @Description Accepts a batch of RTP/RTCP media reports and SIP records. Records failing validation are rejected individually and named in the result.
// @Tags Ingest
// @Accept json
// @Produce json
// @Param request body IngestRequest true "Report batch with media and/or sip arrays"
// @Success 200 {object} models.APIResponse{data=models.IngestResult} "Per-record acceptance counts"
// @Failure 400 {object} models.APIResponse "Malformed body or empty batch"
// @Failure 500 {object} models.APIResponse "Append failure"
// @Router /ingest/reports [post]
func (h *Handler) IngestReports(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	body := http.MaxBytesReader(w, r.Body, maxIngestBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}
	if len(req.Media) == 0 && len(req.SIP) == 0 {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Request carries no reports", nil)
		return
	}

	start := time.Now()
	result := &models.IngestResult{}

	media := filterMediaReports(req.Media, result)
	sip := filterSIPReports(req.SIP, result)

	var err error
	if pub := h.eventPublisher(); pub != nil {
		err = h.ingestViaPipeline(r, pub, media, sip, result)
	} else {
		err = h.ingestDirect(r, media, sip, result)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to store reports", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Int("accepted", result.Accepted).
		Int("rejected", result.Rejected).
		Msg("Report batch ingested")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// filterMediaReports validates each media report, assigns IDs to records
// that arrived without one, and records rejections in the result.
func filterMediaReports(reports []*models.MediaReport, result *models.IngestResult) []*models.MediaReport {
	valid := make([]*models.MediaReport, 0, len(reports))
	for i, rep := range reports {
		if rep == nil {
			rejectRecord(result, fmt.Sprintf("media[%d]: null record", i), "null_record")
			continue
		}
		if rep.Kind() == "" {
			rejectRecord(result, fmt.Sprintf("media[%d]: unknown stream %q", i, rep.Stream), "unknown_stream")
			continue
		}
		if rep.CallID == "" {
			rejectRecord(result, fmt.Sprintf("media[%d]: missing call_id", i), "missing_call_id")
			continue
		}
		if rep.ID == uuid.Nil {
			rep.ID = uuid.New()
		}
		valid = append(valid, rep)
	}
	return valid
}

// filterSIPReports validates each SIP report the same way.
func filterSIPReports(reports []*models.SIPReport, result *models.IngestResult) []*models.SIPReport {
	valid := make([]*models.SIPReport, 0, len(reports))
	for i, rep := range reports {
		if rep == nil {
			rejectRecord(result, fmt.Sprintf("sip[%d]: null record", i), "null_record")
			continue
		}
		if rep.CallID == "" {
			rejectRecord(result, fmt.Sprintf("sip[%d]: missing call_id", i), "missing_call_id")
			continue
		}
		if rep.ID == uuid.Nil {
			rep.ID = uuid.New()
		}
		valid = append(valid, rep)
	}
	return valid
}

func rejectRecord(result *models.IngestResult, message, reason string) {
	result.Rejected++
	metrics.RecordReportRejected(reason)
	if len(result.Errors) < maxIngestErrors {
		result.Errors = append(result.Errors, message)
	}
}

// ingestViaPipeline publishes each report as an event. The consumer owns
// persistence and the realtime broadcast, so nothing is appended or
// broadcast here.
func (h *Handler) ingestViaPipeline(r *http.Request, pub EventPublisher, media []*models.MediaReport, sip []*models.SIPReport, result *models.IngestResult) error {
	ctx := r.Context()

	for _, rep := range media {
		event := eventprocessor.NewReportEvent(rep.Stream)
		event.Media = rep
		if err := pub.PublishEvent(ctx, event); err != nil {
			rejectRecord(result, fmt.Sprintf("media %s: %v", rep.ID, err), "publish_failed")
			continue
		}
		result.Accepted++
		metrics.RecordReportAccepted(rep.Kind())
	}

	for _, rep := range sip {
		event := eventprocessor.NewReportEvent(models.StreamSIPCall)
		event.SIP = rep
		if err := pub.PublishEvent(ctx, event); err != nil {
			rejectRecord(result, fmt.Sprintf("sip %s: %v", rep.ID, err), "publish_failed")
			continue
		}
		result.Accepted++
		metrics.RecordReportAccepted(eventprocessor.KindSIP)
	}

	return nil
}

// ingestDirect appends reports to the database and broadcasts them on the
// realtime feed. Duplicate media reports count as accepted since the
// stored state matches what the caller sent.
func (h *Handler) ingestDirect(r *http.Request, media []*models.MediaReport, sip []*models.SIPReport, result *models.IngestResult) error {
	ctx := r.Context()

	if h.db == nil {
		return fmt.Errorf("no database configured")
	}

	if len(media) > 0 {
		if _, _, err := h.db.InsertMediaReportsBatch(ctx, media); err != nil {
			return fmt.Errorf("appending media reports: %w", err)
		}
		result.Accepted += len(media)
		for _, rep := range media {
			metrics.RecordReportAccepted(rep.Kind())
			if h.wsHub != nil {
				h.wsHub.BroadcastReportIngested(rep)
			}
		}
	}

	for _, rep := range sip {
		if err := h.db.InsertSIPReport(ctx, rep); err != nil {
			return fmt.Errorf("appending sip report %s: %w", rep.ID, err)
		}
		result.Accepted++
		metrics.RecordReportAccepted(eventprocessor.KindSIP)
	}

	return nil
}
