// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
)

// maxJSONBodyBytes bounds JSON request bodies.
const maxJSONBodyBytes = 1 << 20

// CredentialsRequest is the sign-up and sign-in body.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,username"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// DatasetRunRequest selects named datasets to evaluate.
type DatasetRunRequest struct {
	DatasetNames []string `json:"dataset_names" validate:"required,min=1,max=5,unique,dive,required"`
}

// ListResultsRequest holds pagination parameters.
type ListResultsRequest struct {
	Limit  int    `json:"limit" validate:"min=1"`
	Offset int    `json:"offset" validate:"min=0"`
	Owner  string `json:"owner" validate:"omitempty,username"`
}

// AuditQuery filters the admin audit listing.
type AuditQuery struct {
	Limit   int    `json:"limit" validate:"min=1"`
	Offset  int    `json:"offset" validate:"min=0"`
	Type    string `json:"type" validate:"omitempty,oneof=auth.sign_up auth.sign_in auth.sign_out user.admin_bootstrap admin.access"`
	Outcome string `json:"outcome" validate:"omitempty,oneof=success failure"`
	Actor   string `json:"actor" validate:"omitempty,max=32"`
}

// VerifyRequest holds the typed text for /verify.
type VerifyRequest struct {
	RawText string `json:"raw_text" validate:"required,max=64,numeric"`
}

// RankMetricPath holds the {metric} path parameter. Legacy aliases pass.
type RankMetricPath struct {
	Metric string `json:"metric" validate:"required,metric"`
}

// RankingQuery holds report and rank query parameters.
type RankingQuery struct {
	Missing string `json:"missing" validate:"omitempty,oneof=last zero"`
	Policy  string `json:"policy" validate:"omitempty,oneof=fastest weighted"`
	Strict  bool   `json:"strict"`
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a size-limited JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// getIntParam extracts an integer query parameter with a default value.
// Malformed values return an error rather than the default.
func getIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// getBoolParam parses a boolean query parameter; absent means false.
func getBoolParam(r *http.Request, key string) (bool, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", key)
	}
	return b, nil
}
