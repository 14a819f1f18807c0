// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

/*
Package api provides the HTTP layer of Fincheck: a chi router, request
validation, the JSON response envelope and the handlers for accounts,
inference uploads, stored results and metric rankings.

Routes (all under /api/v1):

	GET  /health                      liveness
	GET  /health/ready                database + inference backend
	GET  /metrics/catalog             metric descriptors and schema version
	GET  /datasets                    named evaluation datasets
	POST /auth/sign-up                create an account
	POST /auth/sign-in                issue a token (cookie + body)
	POST /auth/sign-out               revoke the current token
	GET  /auth/me                     current claims
	POST /upload                      run inference on one image
	POST /datasets/run                run named datasets or a zip upload
	POST /verify                      check typed digits against an image
	GET  /results                     list stored results, newest first
	GET  /results/{id}                one stored document
	GET  /results/{id}/report         full ranking report
	GET  /results/{id}/rank/{metric}  one metric ranking
	GET  /admin/results               every user's results (admin role)
	GET  /admin/audit                 security audit trail (admin role)

Prometheus metrics are served on GET /metrics.

Every response uses models.APIResponse. Errors carry a stable code
(VALIDATION_ERROR, UNAUTHORIZED, USERNAME_TAKEN, NOT_FOUND, UNKNOWN_METRIC,
MISSING_METRIC_DATA, BACKEND_UNAVAILABLE, ...). Rankings are computed per
request from the stored document; nothing is cached.
*/
package api
