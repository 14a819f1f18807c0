// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

// Package metrics registers Fincheck's Prometheus collectors and exposes
// small Record* helpers so callers never touch label ordering directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Inference backend
	InferenceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_requests_total",
			Help: "Calls to the inference backend by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: ok, error, rejected
	)

	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_request_duration_seconds",
			Help:    "Duration of inference backend calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	InferenceBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inference_circuit_breaker_state",
			Help: "Inference circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Ranking
	RankingsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankings_computed_total",
			Help: "Reports and single-metric rankings computed",
		},
		[]string{"kind"}, // report, metric
	)

	RankingMissingValues = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_missing_values_total",
			Help: "Model/metric pairs without a measurement seen while ranking",
		},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Recommended models by policy and model id",
		},
		[]string{"policy", "model"},
	)

	// Results
	ResultsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "results_stored_total",
			Help: "Inference results stored by source",
		},
		[]string{"source"},
	)

	// Auth
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication attempts by operation and outcome",
		},
		[]string{"operation", "outcome"}, // sign_in/sign_up, success/failure
	)

	TokensRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_tokens_revoked_total",
			Help: "Tokens revoked by sign-out",
		},
	)
)

// RecordDBQuery records one DuckDB query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records one finished API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordInference records one inference backend call.
func RecordInference(operation, outcome string, duration time.Duration) {
	InferenceRequests.WithLabelValues(operation, outcome).Inc()
	if outcome != "rejected" {
		InferenceDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// SetBreakerState publishes the circuit breaker state.
func SetBreakerState(state int) {
	InferenceBreakerState.Set(float64(state))
}

// RecordRanking counts a computed ranking and the missing values it saw.
func RecordRanking(kind string, missing int) {
	RankingsComputed.WithLabelValues(kind).Inc()
	if missing > 0 {
		RankingMissingValues.Add(float64(missing))
	}
}

// RecordRecommendation counts a recommended model.
func RecordRecommendation(policy, model string) {
	Recommendations.WithLabelValues(policy, model).Inc()
}

// RecordResultStored counts a stored inference result.
func RecordResultStored(source string) {
	ResultsStored.WithLabelValues(source).Inc()
}

// RecordAuthAttempt counts a sign-in or sign-up attempt.
func RecordAuthAttempt(operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	AuthAttempts.WithLabelValues(operation, outcome).Inc()
}

// RecordTokenRevoked counts a sign-out revocation.
func RecordTokenRevoked() {
	TokensRevoked.Inc()
}
