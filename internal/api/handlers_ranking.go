// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/tomtom215/fincheck/internal/logging"
	"github.com/tomtom215/fincheck/internal/metrics"
	"github.com/tomtom215/fincheck/internal/models"
	"github.com/tomtom215/fincheck/internal/ranking"
	"github.com/tomtom215/fincheck/internal/validation"
)

// CatalogResponse is the metric descriptor table.
type CatalogResponse struct {
	SchemaVersion string                    `json:"schema_version"`
	Models        []string                  `json:"models"`
	Metrics       []ranking.Descriptor      `json:"metrics"`
	Policies      []ranking.RecommendPolicy `json:"policies"`
}

// RankResponse is one metric's ranking for a stored result.
type RankResponse struct {
	ResultID      string                `json:"result_id"`
	MissingPolicy ranking.MissingPolicy `json:"missing_policy"`
	Ranking       ranking.Ranked        `json:"ranking"`
}

// ReportResponse wraps the full analysis of a stored result.
type ReportResponse struct {
	ResultID string         `json:"result_id"`
	Source   string         `json:"source"`
	Report   ranking.Report `json:"report"`
}

// rankingOptions applies ?missing= and ?policy= over the configured
// defaults. ok is false when a response has already been written.
func (h *Handler) rankingOptions(w http.ResponseWriter, r *http.Request) (opts ranking.Options, strict bool, ok bool) {
	q := RankingQuery{
		Missing: r.URL.Query().Get("missing"),
		Policy:  r.URL.Query().Get("policy"),
	}
	strictParam, err := getBoolParam(r, "strict")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return opts, false, false
	}
	q.Strict = strictParam

	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidation(w, r, verr)
		return opts, false, false
	}

	opts = h.options
	if q.Missing != "" {
		// oneof above guarantees the parse succeeds
		opts.Missing, _ = ranking.ParseMissingPolicy(q.Missing) //nolint:errcheck
	}
	if q.Policy != "" {
		opts.Policy, _ = ranking.ParseRecommendPolicy(q.Policy) //nolint:errcheck
	}
	return opts, q.Strict, true
}

func resultDocument(result *models.ModelResult) *ranking.Document {
	return &ranking.Document{Data: result.Data}
}

// Report ranks every catalog metric for a stored result and recommends one
// model. Each request recomputes from the stored document.
//
// GET /api/v1/results/{id}/report?missing=last|zero&strict=true&policy=fastest|weighted
//
// With strict=true, a result with any absent or non-numeric value is
// rejected with 422 MISSING_METRIC_DATA and the full list of pairs.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	opts, strict, ok := h.rankingOptions(w, r)
	if !ok {
		return
	}
	result, ok := h.loadResult(w, r)
	if !ok {
		return
	}

	start := time.Now()
	doc := resultDocument(result)
	if strict {
		if _, err := h.catalog.NormalizeStrict(doc, h.canonicalModels()); err != nil {
			h.respondMissingData(w, r, err)
			return
		}
	}

	report := h.catalog.Analyze(doc, h.canonicalModels(), opts)
	metrics.RecordRanking("report", len(report.Missing))
	if report.Recommendation != nil {
		metrics.RecordRecommendation(string(report.Recommendation.Policy), report.Recommendation.ModelID)
	}

	logging.Ctx(r.Context()).Debug().
		Str("result_id", result.ID).
		Int("missing", len(report.Missing)).
		Dur("duration", time.Since(start)).
		Msg("Report computed")
	respondSuccess(w, r, http.StatusOK, ReportResponse{
		ResultID: result.ID,
		Source:   result.Source,
		Report:   report,
	})
}

func (h *Handler) respondMissingData(w http.ResponseWriter, r *http.Request, err error) {
	var missing *ranking.MissingMetricError
	if errors.As(err, &missing) {
		respondErrorWithDetails(w, r, http.StatusUnprocessableEntity, ErrCodeMissingMetricData,
			"Result has missing metric data",
			map[string]interface{}{"missing": missing.Pairs}, nil)
		return
	}
	if errors.Is(err, ranking.ErrEmptyResultSet) {
		respondError(w, r, http.StatusUnprocessableEntity, ErrCodeMissingMetricData, "No models configured", nil)
		return
	}
	respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error", err)
}

// RankMetric ranks a stored result by one metric. Legacy metric names are
// accepted through the catalog's alias table.
//
// GET /api/v1/results/{id}/rank/{metric}?missing=last|zero&strict=true
//
// With strict=true, only gaps in the ranked metric are rejected.
func (h *Handler) RankMetric(w http.ResponseWriter, r *http.Request) {
	path := RankMetricPath{Metric: chi.URLParam(r, "metric")}
	descriptor, found := h.catalog.Get(path.Metric)
	if verr := validation.ValidateStruct(&path); verr != nil || !found {
		respondErrorWithDetails(w, r, http.StatusNotFound, ErrCodeUnknownMetric,
			"Unknown metric",
			map[string]interface{}{"metric": sanitizeLogValue(path.Metric), "known": h.catalog.Keys()}, nil)
		return
	}

	opts, strict, ok := h.rankingOptions(w, r)
	if !ok {
		return
	}
	result, ok := h.loadResult(w, r)
	if !ok {
		return
	}

	doc := resultDocument(result)
	var records ranking.Records
	if strict {
		var err error
		records, err = h.catalog.NormalizeStrict(doc, h.canonicalModels())
		if err = missingForMetric(err, descriptor.Key); err != nil {
			h.respondMissingData(w, r, err)
			return
		}
	} else {
		records = h.catalog.Normalize(doc, h.canonicalModels())
	}

	ranked := ranking.Rank(records, descriptor, opts)
	missing := 0
	for _, rec := range records {
		if rec.Value(descriptor.Key).IsMissing() {
			missing++
		}
	}
	metrics.RecordRanking("metric", missing)

	respondSuccess(w, r, http.StatusOK, RankResponse{
		ResultID:      result.ID,
		MissingPolicy: opts.Missing,
		Ranking:       ranked,
	})
}

// missingForMetric narrows a NormalizeStrict error to the pairs of one
// metric. It returns nil when that metric is fully measured.
func missingForMetric(err error, key string) error {
	var missing *ranking.MissingMetricError
	if !errors.As(err, &missing) {
		return err
	}
	pairs := lo.Filter(missing.Pairs, func(p ranking.MissingPair, _ int) bool {
		return p.Metric == key
	})
	if len(pairs) == 0 {
		return nil
	}
	return &ranking.MissingMetricError{Pairs: pairs}
}

// MetricCatalog returns the metric descriptors in display order.
//
// GET /api/v1/metrics/catalog
func (h *Handler) MetricCatalog(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, CatalogResponse{
		SchemaVersion: ranking.SchemaVersion,
		Models:        h.canonicalModels(),
		Metrics:       h.catalog.Descriptors(),
		Policies:      []ranking.RecommendPolicy{ranking.PolicyFastest, ranking.PolicyWeighted},
	})
}
