// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package ranking

import (
	"fmt"
	"strconv"
)

// Recommendation is the single model suggested for a result set.
type Recommendation struct {
	ModelID       string          `json:"model_id" yaml:"model_id"`
	Justification string          `json:"justification" yaml:"justification"`
	Policy        RecommendPolicy `json:"policy" yaml:"policy"`

	// Score is the weighted score under PolicyWeighted and the latency in
	// milliseconds under PolicyFastest.
	Score float64 `json:"score" yaml:"score"`
}

// Recommend picks one model from records according to opts.Policy. It
// returns false when no model has the measurements the policy needs.
//
// PolicyFastest selects the minimum latency_ms; ties go to the earlier
// record. PolicyWeighted scales confidence and latency to [0,1] across the
// models that have both, then maximises
//
//	w.Confidence*conf' + w.Latency*(1-lat')
//
// again breaking ties by record order.
func Recommend(records []Record, opts Options) (Recommendation, bool) {
	if opts.Policy == PolicyWeighted {
		return recommendWeighted(records, opts)
	}
	return recommendFastest(records, opts)
}

func recommendFastest(records []Record, opts Options) (Recommendation, bool) {
	latency := defaultCatalog.MustGet(MetricLatency)
	ranked := Rank(records, latency, Options{Missing: opts.Missing})
	if ranked.Best == "" {
		return Recommendation{}, false
	}
	ms := ranked.Entries[0].Value.Number
	return Recommendation{
		ModelID:       ranked.Best,
		Policy:        PolicyFastest,
		Score:         ms,
		Justification: fmt.Sprintf("Fastest model: lowest measured latency (%s ms per image).", formatNumber(ms)),
	}, true
}

type scored struct {
	id        string
	conf, lat float64
}

func recommendWeighted(records []Record, opts Options) (Recommendation, bool) {
	candidates := make([]scored, 0, len(records))
	for _, r := range records {
		c, l := r.Value(MetricConfidence), r.Value(MetricLatency)
		if opts.Missing == MissingAsZero {
			c, l = Of(c.Float()), Of(l.Float())
		}
		if c.IsMissing() || l.IsMissing() {
			continue
		}
		candidates = append(candidates, scored{id: r.ModelID, conf: c.Number, lat: l.Number})
	}
	if len(candidates) == 0 {
		return Recommendation{}, false
	}

	minC, maxC := candidates[0].conf, candidates[0].conf
	minL, maxL := candidates[0].lat, candidates[0].lat
	for _, s := range candidates[1:] {
		minC, maxC = min(minC, s.conf), max(maxC, s.conf)
		minL, maxL = min(minL, s.lat), max(maxL, s.lat)
	}

	w := opts.Weights
	bestIdx, bestScore := -1, 0.0
	for i, s := range candidates {
		score := w.Confidence*scale(s.conf, minC, maxC) + w.Latency*(1-scale(s.lat, minL, maxL))
		if bestIdx < 0 || score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	best := candidates[bestIdx]
	return Recommendation{
		ModelID: best.id,
		Policy:  PolicyWeighted,
		Score:   bestScore,
		Justification: fmt.Sprintf(
			"Best balance of speed and confidence: %s%% confidence at %s ms (score %s, weights confidence %s / latency %s).",
			formatNumber(best.conf), formatNumber(best.lat), formatNumber(bestScore),
			formatNumber(w.Confidence), formatNumber(w.Latency)),
	}, true
}

// scale maps v into [0,1] over [lo,hi]. A degenerate range maps to 1 so
// that identical values neither help nor hurt relative to each other.
func scale(v, lo, hi float64) float64 {
	if hi == lo {
		return 1
	}
	return (v - lo) / (hi - lo)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
