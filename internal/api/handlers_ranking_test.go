// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"errors"
	"net/http"
	"slices"
	"testing"

	"github.com/tomtom215/fincheck/internal/models"
	"github.com/tomtom215/fincheck/internal/ranking"
)

// workedExample has confidence for baseline and lrf only, latency for all.
func workedExample() map[string]map[string]any {
	return map[string]map[string]any{
		"baseline": {"confidence_percent": 90.0, "latency_ms": 120.0},
		"kd":       {"latency_ms": 80.0},
		"lrf":      {"confidence_percent": 70.0, "latency_ms": 200.0},
	}
}

func TestReport(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.store.addResult("alice", workedExample())
	token := env.token("alice", models.RoleUser)

	rec := env.get("/api/v1/results/"+id+"/report", token)
	expectStatus(t, rec, http.StatusOK)

	var resp ReportResponse
	decodeEnvelope(t, rec, &resp)
	report := resp.Report

	if report.SchemaVersion != ranking.SchemaVersion {
		t.Errorf("schema version = %q", report.SchemaVersion)
	}
	if len(report.Rankings) != ranking.DefaultCatalog().Len() {
		t.Fatalf("rankings = %d", len(report.Rankings))
	}

	conf := report.Rankings[0]
	if conf.Metric.Key != ranking.MetricConfidence {
		t.Fatalf("first ranking = %s", conf.Metric.Key)
	}
	if got := conf.ModelIDs(); !slices.Equal(got, []string{"baseline", "lrf", "kd"}) {
		t.Errorf("confidence order = %v", got)
	}
	if conf.Best != "baseline" || !conf.Significant {
		t.Errorf("best = %q significant = %v", conf.Best, conf.Significant)
	}
	if !conf.Entries[2].Value.IsMissing() {
		t.Errorf("kd confidence should stay missing, got %+v", conf.Entries[2].Value)
	}

	if report.Recommendation == nil || report.Recommendation.ModelID != "kd" {
		t.Errorf("recommendation = %+v", report.Recommendation)
	}
	if len(report.Missing) == 0 {
		t.Error("missing pairs not reported")
	}
}

func TestReport_MissingAsZero(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.store.addResult("alice", workedExample())

	rec := env.get("/api/v1/results/"+id+"/report?missing=zero", env.token("alice", models.RoleUser))
	expectStatus(t, rec, http.StatusOK)

	var resp ReportResponse
	decodeEnvelope(t, rec, &resp)
	if resp.Report.MissingPolicy != ranking.MissingAsZero {
		t.Errorf("missing policy = %q", resp.Report.MissingPolicy)
	}
	// ram_mb is missing everywhere; as zeros every model ties.
	ram, ok := resp.Report.Ranking(ranking.MetricMemory)
	if !ok || ram.Best != "baseline" || ram.Significant {
		t.Errorf("ram ranking = %+v", ram)
	}
}

func TestReport_Strict(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	partial := env.store.addResult("alice", workedExample())

	complete := map[string]map[string]any{}
	for _, m := range env.cfg.Ranking.Models {
		row := map[string]any{}
		for _, key := range ranking.DefaultCatalog().Keys() {
			row[key] = 1.0
		}
		complete[m] = row
	}
	full := env.store.addResult("alice", complete)
	token := env.token("alice", models.RoleUser)

	rec := env.get("/api/v1/results/"+partial+"/report?strict=true", token)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
	e := decodeEnvelope(t, rec, nil)
	if e.Error.Code != ErrCodeMissingMetricData {
		t.Fatalf("code = %q", e.Error.Code)
	}
	pairs, ok := e.Error.Details["missing"].([]interface{})
	if !ok || len(pairs) == 0 {
		t.Fatalf("details = %+v", e.Error.Details)
	}

	expectStatus(t, env.get("/api/v1/results/"+full+"/report?strict=true", token), http.StatusOK)
}

func TestReport_WeightedPolicy(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.store.addResult("alice", workedExample())

	rec := env.get("/api/v1/results/"+id+"/report?policy=weighted", env.token("alice", models.RoleUser))
	expectStatus(t, rec, http.StatusOK)
	var resp ReportResponse
	decodeEnvelope(t, rec, &resp)
	rec2 := resp.Report.Recommendation
	if rec2 == nil || rec2.Policy != ranking.PolicyWeighted {
		t.Fatalf("recommendation = %+v", rec2)
	}
	// Only baseline and lrf have both metrics; baseline wins on both.
	if rec2.ModelID != "baseline" {
		t.Errorf("weighted pick = %q, want baseline", rec2.ModelID)
	}
}

func TestReport_InvalidQuery(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.store.addResult("alice", workedExample())
	token := env.token("alice", models.RoleUser)

	for _, q := range []string{"missing=first", "policy=cheapest", "strict=maybe"} {
		t.Run(q, func(t *testing.T) {
			t.Parallel()
			rec := env.get("/api/v1/results/"+id+"/report?"+q, token)
			expectStatus(t, rec, http.StatusBadRequest)
			expectErrorCode(t, rec, ErrCodeValidation)
		})
	}
}

func TestRankMetric(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.store.addResult("alice", workedExample())
	token := env.token("alice", models.RoleUser)

	tests := []struct {
		name   string
		metric string
		order  []string
		best   string
	}{
		{"latency lower is better", "latency_ms", []string{"kd", "baseline", "lrf"}, "kd"},
		{"legacy alias", "confidence", []string{"baseline", "lrf", "kd"}, "baseline"},
		{"nothing measured", "cold_start_ms", []string{"baseline", "kd", "lrf"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := env.get("/api/v1/results/"+id+"/rank/"+tt.metric, token)
			expectStatus(t, rec, http.StatusOK)

			var resp RankResponse
			decodeEnvelope(t, rec, &resp)
			if got := resp.Ranking.ModelIDs(); !slices.Equal(got, tt.order) {
				t.Errorf("order = %v, want %v", got, tt.order)
			}
			if resp.Ranking.Best != tt.best {
				t.Errorf("best = %q, want %q", resp.Ranking.Best, tt.best)
			}
		})
	}

	t.Run("unknown metric", func(t *testing.T) {
		t.Parallel()
		rec := env.get("/api/v1/results/"+id+"/rank/accuracy", token)
		expectStatus(t, rec, http.StatusNotFound)
		expectErrorCode(t, rec, ErrCodeUnknownMetric)
	})

	t.Run("other owner", func(t *testing.T) {
		t.Parallel()
		rec := env.get("/api/v1/results/"+id+"/rank/latency_ms", env.token("bob", models.RoleUser))
		expectStatus(t, rec, http.StatusNotFound)
	})
}

func TestRankMetric_StrictChecksRankedMetricOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// Every model has latency; only baseline has confidence.
	doc := map[string]map[string]any{}
	for i, m := range env.cfg.Ranking.Models {
		doc[m] = map[string]any{"latency_ms": float64(100 + i)}
	}
	doc["baseline"]["confidence_percent"] = 90.0
	id := env.store.addResult("alice", doc)
	token := env.token("alice", models.RoleUser)

	rec := env.get("/api/v1/results/"+id+"/rank/latency_ms?strict=true", token)
	expectStatus(t, rec, http.StatusOK)
	var resp RankResponse
	decodeEnvelope(t, rec, &resp)
	if resp.Ranking.Best != env.cfg.Ranking.Models[0] {
		t.Errorf("best = %q, want %q", resp.Ranking.Best, env.cfg.Ranking.Models[0])
	}

	rec = env.get("/api/v1/results/"+id+"/rank/confidence_percent?strict=true", token)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
	e := decodeEnvelope(t, rec, nil)
	if e.Error.Code != ErrCodeMissingMetricData {
		t.Fatalf("code = %q", e.Error.Code)
	}
	pairs, ok := e.Error.Details["missing"].([]interface{})
	if !ok || len(pairs) != len(env.cfg.Ranking.Models)-1 {
		t.Fatalf("missing pairs = %+v, want %d", e.Error.Details["missing"], len(env.cfg.Ranking.Models)-1)
	}
	for _, p := range pairs {
		pair, _ := p.(map[string]interface{}) //nolint:errcheck
		if pair["metric"] != ranking.MetricConfidence {
			t.Errorf("pair %+v is not for %s", pair, ranking.MetricConfidence)
		}
	}
}

func TestMissingForMetric(t *testing.T) {
	t.Parallel()

	err := &ranking.MissingMetricError{Pairs: []ranking.MissingPair{
		{ModelID: "kd", Metric: ranking.MetricConfidence, Reason: ranking.ReasonAbsent},
		{ModelID: "kd", Metric: ranking.MetricColdStart, Reason: ranking.ReasonAbsent},
	}}
	if got := missingForMetric(err, ranking.MetricLatency); got != nil {
		t.Errorf("latency: got %v, want nil", got)
	}
	got := missingForMetric(err, ranking.MetricColdStart)
	var narrowed *ranking.MissingMetricError
	if !errors.As(got, &narrowed) || len(narrowed.Pairs) != 1 {
		t.Fatalf("cold start: got %v", got)
	}
	if missingForMetric(nil, ranking.MetricLatency) != nil {
		t.Error("nil error should stay nil")
	}
	if !errors.Is(missingForMetric(ranking.ErrEmptyResultSet, ranking.MetricLatency), ranking.ErrEmptyResultSet) {
		t.Error("empty result set should pass through")
	}
}

func TestMetricCatalog(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.get("/api/v1/metrics/catalog", "")
	expectStatus(t, rec, http.StatusOK)

	var resp CatalogResponse
	decodeEnvelope(t, rec, &resp)
	if resp.SchemaVersion != ranking.SchemaVersion || len(resp.Metrics) != 7 {
		t.Fatalf("catalog = %+v", resp)
	}
	if resp.Metrics[0].Key != ranking.MetricConfidence || resp.Metrics[0].Polarity != ranking.HigherIsBetter {
		t.Errorf("first metric = %+v", resp.Metrics[0])
	}
	if !slices.Equal(resp.Models, env.cfg.Ranking.Models) {
		t.Errorf("models = %v", resp.Models)
	}
}
