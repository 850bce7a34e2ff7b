// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

// Package models defines the HTTP transport types: the response envelope
// shared by every endpoint and the request and response DTOs that wrap the
// targeting engine's results.
package models

import (
	"time"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
)

// APIResponse is the envelope used by all HTTP endpoints.
//
//	{
//	  "status": "success",
//	  "data": {"product_group": "아모잘탄", "mode": "group", "recommendations": [...]},
//	  "metadata": {"timestamp": "2026-06-01T09:00:00Z", "query_time_ms": 12, "state_version": 3}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information for a response.
type Metadata struct {
	Timestamp    time.Time `json:"timestamp"`
	QueryTimeMS  int64     `json:"query_time_ms,omitempty"`
	Cached       bool      `json:"cached,omitempty"`
	StateVersion int64     `json:"state_version,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
}

// APIError is the structured error body.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewSuccess wraps data in a success envelope stamped with the current time.
func NewSuccess(data interface{}) *APIResponse {
	return &APIResponse{
		Status:   StatusSuccess,
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	}
}

// NewError builds an error envelope.
func NewError(code, message string, details map[string]interface{}) *APIResponse {
	return &APIResponse{
		Status:   StatusError,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error:    &APIError{Code: code, Message: message, Details: details},
	}
}
