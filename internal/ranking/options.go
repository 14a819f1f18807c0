// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package ranking

import "fmt"

// MissingPolicy controls how Rank treats models without a measurement.
type MissingPolicy string

const (
	// MissingLast excludes missing values from the comparison and lists
	// those models after every measured one.
	MissingLast MissingPolicy = "last"

	// MissingAsZero ranks missing values as a measured 0.
	MissingAsZero MissingPolicy = "zero"
)

// RecommendPolicy selects how Recommend picks a model.
type RecommendPolicy string

const (
	// PolicyFastest picks the lowest measured latency.
	PolicyFastest RecommendPolicy = "fastest"

	// PolicyWeighted picks the highest weighted confidence/latency score.
	PolicyWeighted RecommendPolicy = "weighted"
)

// Weights for PolicyWeighted. Each metric is min-max scaled to [0,1] across
// the measured models before weighting, so the weights are relative.
type Weights struct {
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Latency    float64 `json:"latency" yaml:"latency"`
}

// Options configures Rank, Recommend and Analyze.
type Options struct {
	Missing MissingPolicy
	Policy  RecommendPolicy
	Weights Weights
}

// DefaultOptions returns MissingLast, PolicyFastest and equal weights.
func DefaultOptions() Options {
	return Options{
		Missing: MissingLast,
		Policy:  PolicyFastest,
		Weights: Weights{Confidence: 0.5, Latency: 0.5},
	}
}

// ParseMissingPolicy accepts "last", "zero" or "" (MissingLast).
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(s) {
	case "", MissingLast:
		return MissingLast, nil
	case MissingAsZero:
		return MissingAsZero, nil
	default:
		return "", fmt.Errorf("unknown missing policy %q (want %q or %q)", s, MissingLast, MissingAsZero)
	}
}

// ParseRecommendPolicy accepts "fastest", "weighted" or "" (PolicyFastest).
func ParseRecommendPolicy(s string) (RecommendPolicy, error) {
	switch RecommendPolicy(s) {
	case "", PolicyFastest:
		return PolicyFastest, nil
	case PolicyWeighted:
		return PolicyWeighted, nil
	default:
		return "", fmt.Errorf("unknown recommend policy %q (want %q or %q)", s, PolicyFastest, PolicyWeighted)
	}
}
