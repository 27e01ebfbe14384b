// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package api

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/models"
)

// maxSessionBodyBytes caps session request bodies. Requests carry only
// timestamps and call IDs, so anything larger is malformed or hostile.
const maxSessionBodyBytes = 1 << 20

// SessionMedia reconstructs the media legs of a call.
//
// @Summary Build media session
// @Description Reconstructs RTP and RTCP call legs for the given call IDs, with per-flow quality metrics aggregated into fixed-width time blocks
// @Tags Session
// @Accept json
// @Produce json
// @Param request body models.SessionRequest true "Session query: created_at, terminated_at (epoch ms) and call_id list"
// @Success 200 {object} models.APIResponse{data=[]models.LegPair} "Ordered leg pairs; empty array when no reports match"
// @Failure 400 {object} models.APIResponse "Missing required field or malformed body"
// @Failure 500 {object} models.APIResponse "Query failure"
// @Router /session/media [post]
func (h *Handler) SessionMedia(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSessionRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	pairs, err := h.sessions.BuildMediaSession(r.Context(), req)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   pairs,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// SessionDetails summarizes the SIP legs of a call.
//
// @Summary Build session details
// @Description Returns one summary per SIP call leg with endpoints resolved against the host inventory
// @Tags Session
// @Accept json
// @Produce json
// @Param request body models.SessionRequest true "Session query: created_at, terminated_at (epoch ms) and call_id list"
// @Success 200 {object} models.APIResponse{data=[]models.SIPLeg} "SIP leg summaries; empty array when no reports match"
// @Failure 400 {object} models.APIResponse "Missing required field or malformed body"
// @Failure 500 {object} models.APIResponse "Query failure"
// @Router /session/details [post]
func (h *Handler) SessionDetails(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSessionRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	legs, err := h.sessions.BuildSessionDetails(r.Context(), req)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   legs,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// decodeSessionRequest parses and bounds-checks the shared session query
// body. Field presence is validated by the session service so that both
// endpoints report missing fields identically.
func (h *Handler) decodeSessionRequest(w http.ResponseWriter, r *http.Request) (*models.SessionRequest, bool) {
	if h.sessions == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Session service unavailable", nil)
		return nil, false
	}

	var req models.SessionRequest
	body := http.MaxBytesReader(w, r.Body, maxSessionBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body", err)
		return nil, false
	}

	if h.config != nil && h.config.Session.MaxCallIDs > 0 && len(req.CallID) > h.config.Session.MaxCallIDs {
		respondErrorDetails(w, http.StatusBadRequest, ErrCodeValidation, "Too many call IDs", map[string]interface{}{
			"field": "call_id",
			"max":   h.config.Session.MaxCallIDs,
		}, nil)
		return nil, false
	}

	return &req, true
}

// respondSessionError maps session service failures onto the error
// envelope. A missing required field is a client error naming the field;
// everything else is a server-side query failure.
func respondSessionError(w http.ResponseWriter, err error) {
	var missing *models.MissingFieldError
	if errors.As(err, &missing) {
		respondErrorDetails(w, http.StatusBadRequest, ErrCodeValidation, missing.Error(), map[string]interface{}{
			"field": missing.Field,
		}, nil)
		return
	}

	logging.Error().Err(err).Msg("Session build failed")
	respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to build session", err)
}
