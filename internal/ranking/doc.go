// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

// Package ranking turns stored per-model inference metrics into ranked,
// polarity-aware comparisons and a single recommended model.
//
// # Overview
//
// A results document maps model identifiers to raw metric values as produced
// by the inference backend:
//
//	{"data": {"baseline": {"confidence_percent": 98.1, "latency_ms": 0.42}, ...}}
//
// The package works in three pure steps:
//
//  1. Normalize: one Record per model in the canonical model list, in that
//     order. Absent or non-numeric values become Missing, never zero.
//  2. Rank: a stable, polarity-aware ordering per metric. Equal values keep
//     canonical order. Missing entries are placed last and are never Best.
//  3. Recommend: one model for the whole result set, by lowest measured
//     latency (PolicyFastest) or by a weighted confidence/latency score
//     (PolicyWeighted).
//
// # Missing Data
//
// Value distinguishes "measured zero" from "no data". The legacy zero-filled
// view is still available through Value.Float and MissingAsZero, which makes
// missing values compete as 0 the way the first dashboard did.
//
//	records := ranking.Normalize(doc, []string{"A", "B", "C"})
//	ranked := ranking.Rank(records, catalog.MustGet(ranking.MetricConfidence), ranking.DefaultOptions())
//	// ranked.Best == "A"
//
// # Metric Schema
//
// Metric keys follow SchemaVersion. Older documents that use "confidence" or
// "ram_delta_mb" are read through an explicit alias table; no other spelling
// is accepted.
//
// # Thread Safety
//
// Every function is pure and the Catalog is immutable after construction, so
// all of it is safe for concurrent use without locking.
package ranking
