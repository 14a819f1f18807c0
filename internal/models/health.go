// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package models

// HealthStatus is the liveness document served by GET /api/v1/health.
type HealthStatus struct {
	Status            string  `json:"status"` // healthy or degraded
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	BackendConnected  bool    `json:"backend_connected"`
	BreakerState      string  `json:"breaker_state,omitempty"`
	Uptime            float64 `json:"uptime"`
}

// ReadinessCheck is one dependency probe in the readiness document.
type ReadinessCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms"`
}
