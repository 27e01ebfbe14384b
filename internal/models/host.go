// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package models

import (
	"net"
	"strings"
	"time"
)

// Host maps a symbolic name to the network addresses and CIDR ranges it
// owns. Session detail responses resolve report endpoints against the host
// table so operators see gateway names instead of bare addresses.
type Host struct {
	Name      string    `json:"name"`
	Addresses []string  `json:"addr"`
	Networks  []string  `json:"cidr,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Normalize trims whitespace from the name and every address entry and
// drops empty entries. Import sources are hand-maintained JSON files, so
// stray whitespace is common.
func (h *Host) Normalize() {
	h.Name = strings.TrimSpace(h.Name)
	h.Addresses = normalizeList(h.Addresses)
	h.Networks = normalizeList(h.Networks)
}

func normalizeList(in []string) []string {
	out := in[:0]
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Valid reports whether the host has a name, at least one address or
// network, and every network entry parses as CIDR. Address entries may be
// bare IPs or IP:port pairs and are not resolved here.
func (h *Host) Valid() bool {
	if h.Name == "" {
		return false
	}
	if len(h.Addresses) == 0 && len(h.Networks) == 0 {
		return false
	}
	for _, c := range h.Networks {
		if _, _, err := net.ParseCIDR(c); err != nil {
			return false
		}
	}
	return true
}

// Matches reports whether addr (bare IP or IP:port) belongs to this host,
// either by exact address-list membership or by CIDR containment.
func (h *Host) Matches(addr string) bool {
	ip := addr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		ip = host
	}
	for _, a := range h.Addresses {
		if a == addr || a == ip {
			return true
		}
		if ha, _, err := net.SplitHostPort(a); err == nil && ha == ip {
			return true
		}
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, c := range h.Networks {
		if _, network, err := net.ParseCIDR(c); err == nil && network.Contains(parsed) {
			return true
		}
	}
	return false
}
