// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/fincheck/internal/models"
)

// breakerReporter is implemented by backends guarded by a circuit breaker.
type breakerReporter interface {
	BreakerState() gobreaker.State
}

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 3 * time.Second

// Health handles liveness requests. It always answers 200; the status field
// is "degraded" when a dependency is down.
//
// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checks := h.runChecks(r.Context())

	status := models.HealthStatus{
		Status:            "healthy",
		Version:           Version,
		DatabaseConnected: checks[0].OK,
		BackendConnected:  checks[1].OK,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if b, ok := h.backend.(breakerReporter); ok {
		status.BreakerState = b.BreakerState().String()
	}
	if !status.DatabaseConnected || !status.BackendConnected {
		status.Status = "degraded"
	}
	respondSuccess(w, r, http.StatusOK, status)
}

// HealthReady handles readiness probes. It returns 503 unless both the
// database and the inference backend respond.
//
// GET /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks := h.runChecks(r.Context())

	ready := true
	for _, c := range checks {
		ready = ready && c.OK
	}

	if !ready {
		respondJSON(w, r, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     map[string]interface{}{"ready": false, "checks": checks},
			Metadata: metadata(r),
			Error: &models.APIError{
				Code:    "NOT_READY",
				Message: "Service is not ready",
			},
		})
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"ready": true, "checks": checks})
}

// runChecks probes the database and the backend concurrently. The result
// order is fixed: database first, then backend.
func (h *Handler) runChecks(ctx context.Context) []models.ReadinessCheck {
	checks := []models.ReadinessCheck{{Name: "database"}, {Name: "inference"}}

	var g errgroup.Group
	g.Go(func() error {
		checks[0] = probe(ctx, "database", h.store.Ping)
		return nil
	})
	g.Go(func() error {
		checks[1] = probe(ctx, "inference", func(ctx context.Context) error {
			_, err := h.backend.Health(ctx)
			return err
		})
		return nil
	})
	_ = g.Wait() //nolint:errcheck // probes never return errors

	return checks
}

func probe(parent context.Context, name string, fn func(context.Context) error) models.ReadinessCheck {
	ctx, cancel := context.WithTimeout(parent, readinessTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	check := models.ReadinessCheck{
		Name:    name,
		OK:      err == nil,
		Latency: time.Since(start).Milliseconds(),
	}
	if err != nil {
		check.Message = err.Error()
	}
	return check
}
