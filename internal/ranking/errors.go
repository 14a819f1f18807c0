// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package ranking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingMetricData reports at least one absent or non-numeric value.
	ErrMissingMetricData = errors.New("missing metric data")

	// ErrEmptyResultSet reports an empty canonical model list.
	ErrEmptyResultSet = errors.New("empty result set")
)

// Reasons a value can be missing.
const (
	ReasonAbsent     = "absent"
	ReasonNonNumeric = "non_numeric"
	ReasonNoModel    = "model_absent"
)

// MissingPair identifies one model/metric combination without a measurement.
type MissingPair struct {
	ModelID string `json:"model_id" yaml:"model_id"`
	Metric  string `json:"metric" yaml:"metric"`
	Reason  string `json:"reason" yaml:"reason"`
}

// MissingMetricError lists every missing pair found by NormalizeStrict.
type MissingMetricError struct {
	Pairs []MissingPair
}

func (e *MissingMetricError) Error() string {
	if len(e.Pairs) == 1 {
		p := e.Pairs[0]
		return fmt.Sprintf("%s: model %q metric %q (%s)", ErrMissingMetricData, p.ModelID, p.Metric, p.Reason)
	}
	models := make(map[string]struct{})
	for _, p := range e.Pairs {
		models[p.ModelID] = struct{}{}
	}
	names := make([]string, 0, len(models))
	for _, p := range e.Pairs {
		if _, ok := models[p.ModelID]; ok {
			names = append(names, p.ModelID)
			delete(models, p.ModelID)
		}
	}
	return fmt.Sprintf("%s: %d values across models %s", ErrMissingMetricData, len(e.Pairs), strings.Join(names, ", "))
}

// Unwrap makes errors.Is(err, ErrMissingMetricData) hold.
func (e *MissingMetricError) Unwrap() error {
	return ErrMissingMetricData
}
