// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package eventprocessor

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/callscope/internal/models"
)

// SchemaVersion is the current event schema version. Increment on breaking
// changes to ReportEvent; consumers accept older versions.
const SchemaVersion = 1

// KindSIP complements the media kinds from the models package for topic
// construction.
const KindSIP = "sip"

// ReportEvent is the envelope published for every accepted quality report.
// Exactly one of Media or SIP is set, matching the stream the report
// belongs to.
//
// Schema versioning:
//   - Version 1: initial schema; a zero SchemaVersion is read as 1 for
//     events published before the field existed
type ReportEvent struct {
	SchemaVersion int    `json:"schema_version,omitempty"`
	EventID       string `json:"event_id"`
	Stream        string `json:"stream"`
	ReceivedAt    int64  `json:"received_at"`

	Media *models.MediaReport `json:"media,omitempty"`
	SIP   *models.SIPReport   `json:"sip,omitempty"`
}

// NewReportEvent creates an envelope with a fresh event ID, receive
// timestamp, and the current schema version.
func NewReportEvent(stream string) *ReportEvent {
	return &ReportEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Stream:        stream,
		ReceivedAt:    time.Now().UnixMilli(),
	}
}

// GetSchemaVersion returns the schema version, defaulting to 1 for legacy
// events published without the field.
func (e *ReportEvent) GetSchemaVersion() int {
	if e.SchemaVersion == 0 {
		return 1
	}
	return e.SchemaVersion
}

// EnsureSchemaVersion sets the schema version if not already set.
func (e *ReportEvent) EnsureSchemaVersion() {
	if e.SchemaVersion == 0 {
		e.SchemaVersion = SchemaVersion
	}
}

// Kind returns the protocol half of the event's stream: rtp, rtcp, or sip.
func (e *ReportEvent) Kind() string {
	switch {
	case strings.HasPrefix(e.Stream, models.KindRTCP):
		return models.KindRTCP
	case strings.HasPrefix(e.Stream, models.KindRTP):
		return models.KindRTP
	case strings.HasPrefix(e.Stream, KindSIP):
		return KindSIP
	default:
		return ""
	}
}

// Topic returns the NATS subject for this event.
// Format: reports.<kind>.<stream>, for example reports.rtp.rtp_raw.
func (e *ReportEvent) Topic() string {
	return "reports." + e.Kind() + "." + e.Stream
}

// CallID returns the call identifier of the wrapped report.
func (e *ReportEvent) CallID() string {
	switch {
	case e.Media != nil:
		return e.Media.CallID
	case e.SIP != nil:
		return e.SIP.CallID
	default:
		return ""
	}
}

// Validate checks required envelope fields and stream/payload consistency.
func (e *ReportEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if !knownStream(e.Stream) {
		return &ValidationError{Field: "stream", Message: "unknown stream"}
	}
	if e.Media != nil && e.SIP != nil {
		return &ValidationError{Field: "media", Message: "event carries both media and sip payloads"}
	}

	switch e.Kind() {
	case models.KindRTP, models.KindRTCP:
		if e.Media == nil {
			return &ValidationError{Field: "media", Message: "required for media streams"}
		}
		if e.Media.CallID == "" {
			return &ValidationError{Field: "media.call_id", Message: "required"}
		}
	case KindSIP:
		if e.SIP == nil {
			return &ValidationError{Field: "sip", Message: "required for sip streams"}
		}
		if e.SIP.CallID == "" {
			return &ValidationError{Field: "sip.call_id", Message: "required"}
		}
	}
	return nil
}

func knownStream(stream string) bool {
	switch stream {
	case models.StreamRTPIndex, models.StreamRTPRaw,
		models.StreamRTCPIndex, models.StreamRTCPRaw,
		models.StreamSIPCall:
		return true
	}
	return false
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// TopicWildcard matches every report subject; consumers subscribe here.
const TopicWildcard = "reports.>"
