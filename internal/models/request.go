// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package models

import "fmt"

// SessionRequest is the external query descriptor for session endpoints.
// All three fields are required; pointers distinguish "absent" from a zero
// timestamp so that epoch-zero windows remain expressible.
type SessionRequest struct {
	CreatedAt    *int64   `json:"created_at"`
	TerminatedAt *int64   `json:"terminated_at"`
	CallID       []string `json:"call_id"`
}

// MissingFieldError reports a contract violation: a required request field
// was absent. Field carries the wire name of the missing field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field missing: %s", e.Field)
}

// Validate checks the required-field contract and returns a
// *MissingFieldError naming the first absent field, in wire order.
func (r *SessionRequest) Validate() error {
	if r.CreatedAt == nil {
		return &MissingFieldError{Field: "created_at"}
	}
	if r.TerminatedAt == nil {
		return &MissingFieldError{Field: "terminated_at"}
	}
	if len(r.CallID) == 0 {
		return &MissingFieldError{Field: "call_id"}
	}
	return nil
}

// Window returns the inclusive query time range implied by the request:
// [created_at, terminated_at + terminationTimeout]. The caller supplies the
// timeout explicitly; the request itself carries no configuration.
func (r *SessionRequest) Window(terminationTimeout int64) TimeRange {
	return TimeRange{
		From: *r.CreatedAt,
		To:   *r.TerminatedAt + terminationTimeout,
	}
}

// TimeRange is an inclusive [From, To] window in epoch milliseconds.
type TimeRange struct {
	From int64
	To   int64
}
