// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package models

import "time"

// Result sources.
const (
	SourceImage   = "image"
	SourceDataset = "dataset"
	SourceZip     = "zip"
)

// ModelResult is one stored inference run. Data maps canonical model IDs
// to raw metric values exactly as returned by the backend.
type ModelResult struct {
	ID          string                    `json:"id"`
	Owner       string                    `json:"owner"`
	Source      string                    `json:"source"`
	DatasetType string                    `json:"dataset_type,omitempty"`
	NumImages   int                       `json:"num_images"`
	Data        map[string]map[string]any `json:"data"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// ResultSummary is a list entry without the metric payload.
type ResultSummary struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Source      string    `json:"source"`
	DatasetType string    `json:"dataset_type,omitempty"`
	NumImages   int       `json:"num_images"`
	ModelCount  int       `json:"model_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary drops the metric payload.
func (r *ModelResult) Summary() ResultSummary {
	return ResultSummary{
		ID:          r.ID,
		Owner:       r.Owner,
		Source:      r.Source,
		DatasetType: r.DatasetType,
		NumImages:   r.NumImages,
		ModelCount:  len(r.Data),
		CreatedAt:   r.CreatedAt,
	}
}
