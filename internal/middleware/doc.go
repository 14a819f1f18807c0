// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

/*
Package middleware provides the infrastructure HTTP middleware mounted on the
Fincheck router.

All middleware uses the standard func(http.Handler) http.Handler shape so it
plugs straight into chi:

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(middleware.PrometheusMetrics)

RequestID propagates or creates the X-Request-ID header and stores it in the
logging context. PrometheusMetrics records request counts and latencies keyed
by the chi route pattern rather than the raw path, which keeps result IDs out
of label values. AccessLog writes one structured line per request and warns on
slow ones.
*/
package middleware
