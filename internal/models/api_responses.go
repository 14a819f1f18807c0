// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package models

import "time"

// APIResponse is the envelope for every JSON response.
//
//	{"status":"success","data":{...},"metadata":{"timestamp":"..."}}
//	{"status":"error","error":{"code":"NOT_FOUND","message":"..."},"metadata":{...}}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	Timestamp   time.Time       `json:"timestamp"`
	RequestID   string          `json:"request_id,omitempty"`
	QueryTimeMS int64           `json:"query_time_ms,omitempty"`
	Pagination  *PaginationInfo `json:"pagination,omitempty"`
}

// APIError is a machine-readable error code plus a human message.
//
// Codes used by the API:
//   - VALIDATION_ERROR: invalid input
//   - UNAUTHORIZED: missing, invalid or revoked token
//   - USERNAME_TAKEN: sign-up with an existing username
//   - NOT_FOUND: unknown result
//   - UNKNOWN_METRIC: metric key not in the catalog
//   - MISSING_METRIC_DATA: strict report over incomplete data
//   - BACKEND_UNAVAILABLE: inference backend down or circuit open
//   - BACKEND_ERROR: inference backend rejected the request
//   - DATABASE_ERROR, INTERNAL_ERROR
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo describes an offset-paginated list.
type PaginationInfo struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	TotalCount int  `json:"total_count"`
	HasMore    bool `json:"has_more"`
}
