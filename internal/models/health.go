// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package models

// HealthStatus reports overall service health including database
// connectivity and stored record counts.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	NATSEnabled       bool    `json:"nats_enabled"`
	WALEnabled        bool    `json:"wal_enabled"`
	MediaReports      int64   `json:"media_reports"`
	SIPReports        int64   `json:"sip_reports"`
	Hosts             int64   `json:"hosts"`
	Uptime            float64 `json:"uptime_seconds"`
}
