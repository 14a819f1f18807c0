// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

/*
Package inference is the HTTP client for the external model inference
backend.

The backend runs every MNIST model variant over an uploaded image or a named
evaluation dataset and returns per-model metrics keyed by the model's weight
file name (e.g. "baseline_mnist.pth"). The client maps those keys to
canonical model IDs ("baseline") so stored documents line up with the
configured canonical model list.

Every call passes through a token-bucket limiter (golang.org/x/time/rate) and
a circuit breaker (sony/gobreaker). Transport failures and 5xx responses
count against the breaker; an open breaker fails fast with
ErrBackendUnavailable. Backend-reported input errors ({"error": "..."}) are
returned as *BackendError and do not trip the breaker.
*/
package inference
