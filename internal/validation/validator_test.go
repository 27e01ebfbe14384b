// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package validation

import (
	"strings"
	"testing"
)

type sessionRequest struct {
	CreatedAt    *int64   `validate:"required,epochms"`
	TerminatedAt *int64   `validate:"required,epochms"`
	CallID       []string `validate:"required,min=1,dive,required"`
}

type hostRequest struct {
	Name     string   `validate:"required,min=1,max=255"`
	Networks []string `validate:"omitempty,dive,cidr"`
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestValidateStructPasses(t *testing.T) {
	req := sessionRequest{
		CreatedAt:    int64Ptr(1700000000000),
		TerminatedAt: int64Ptr(1700000060000),
		CallID:       []string{"call-1"},
	}

	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected valid struct, got: %v", err)
	}
}

func TestValidateStructMissingRequired(t *testing.T) {
	req := sessionRequest{
		CreatedAt: int64Ptr(1700000000000),
		CallID:    []string{"call-1"},
	}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for missing TerminatedAt")
	}

	errs := err.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
	}
	if errs[0].Field() != "TerminatedAt" {
		t.Errorf("expected TerminatedAt field, got %s", errs[0].Field())
	}
	if errs[0].Tag() != "required" {
		t.Errorf("expected required tag, got %s", errs[0].Tag())
	}
}

func TestValidateStructEpochMS(t *testing.T) {
	req := sessionRequest{
		CreatedAt:    int64Ptr(-5),
		TerminatedAt: int64Ptr(1700000060000),
		CallID:       []string{"call-1"},
	}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected epochms validation error for negative timestamp")
	}
	if !strings.Contains(err.Error(), "epoch-millisecond") {
		t.Errorf("expected epochms message, got: %v", err)
	}
}

func TestValidateStructEmptyCallIDList(t *testing.T) {
	req := sessionRequest{
		CreatedAt:    int64Ptr(1700000000000),
		TerminatedAt: int64Ptr(1700000060000),
		CallID:       []string{},
	}

	if err := ValidateStruct(&req); err == nil {
		t.Error("expected error for empty call ID list")
	}
}

func TestValidateStructCIDR(t *testing.T) {
	good := hostRequest{Name: "pbx-east", Networks: []string{"10.0.0.0/24"}}
	if err := ValidateStruct(&good); err != nil {
		t.Errorf("expected valid CIDR to pass, got: %v", err)
	}

	bad := hostRequest{Name: "pbx-east", Networks: []string{"10.0.0.0/99"}}
	if err := ValidateStruct(&bad); err == nil {
		t.Error("expected error for invalid CIDR")
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	req := hostRequest{Name: ""}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR code, got %s", apiErr.Code)
	}
	if apiErr.Details["field"] != "Name" {
		t.Errorf("expected Name field in details, got %v", apiErr.Details)
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	req := sessionRequest{}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if len(err.Errors()) < 2 {
		t.Fatalf("expected multiple errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR code, got %s", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("expected fields list in details, got %v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, ";") {
		t.Errorf("expected combined message, got %q", apiErr.Message)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 != v2 {
		t.Error("expected the same validator instance")
	}
}
