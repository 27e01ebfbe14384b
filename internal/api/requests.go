// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package api

import (
	"github.com/tomtom215/callscope/internal/models"
)

// LoginRequestValidation mirrors models.LoginRequest with validation tags.
type LoginRequestValidation struct {
	Username   string `validate:"required,min=1"`
	Password   string `validate:"required,min=1"`
	RememberMe bool
}

// IngestRequest is the body of POST /ingest/reports. Either list may be
// empty; a request carrying neither is rejected.
type IngestRequest struct {
	Media []*models.MediaReport `json:"media" validate:"omitempty,max=1000"`
	SIP   []*models.SIPReport   `json:"sip" validate:"omitempty,max=1000"`
}

// HostListRequest bounds pagination parameters for GET /hosts.
type HostListRequest struct {
	Limit  int `validate:"min=1,max=1000"`
	Offset int `validate:"min=0"`
}
