// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package services

import (
	"context"
	"time"

	"github.com/tomtom215/fincheck/internal/logging"
)

// MaintenanceTask is one periodic storage chore, such as badger value-log
// GC or a DuckDB checkpoint. Errors are logged; they never stop the loop.
type MaintenanceTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// MaintenanceService runs its tasks in order on every tick.
//
//	svc := services.NewMaintenanceService(5*time.Minute,
//	    services.MaintenanceTask{Name: "revocation-gc", Run: func(context.Context) error {
//	        return store.RunValueLogGC(0.5)
//	    }},
//	    services.MaintenanceTask{Name: "duckdb-checkpoint", Run: db.Checkpoint},
//	)
//	tree.AddDataService(svc)
type MaintenanceService struct {
	interval time.Duration
	tasks    []MaintenanceTask
	name     string
}

// NewMaintenanceService creates the service. A non-positive interval means
// 5 minutes.
func NewMaintenanceService(interval time.Duration, tasks ...MaintenanceTask) *MaintenanceService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &MaintenanceService{
		interval: interval,
		tasks:    tasks,
		name:     "storage-maintenance",
	}
}

// Serve implements suture.Service.
func (m *MaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.runOnce(ctx)
		}
	}
}

func (m *MaintenanceService) runOnce(ctx context.Context) {
	for _, task := range m.tasks {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		if err := task.Run(ctx); err != nil {
			logging.Warn().Err(err).Str("task", task.Name).Msg("Storage maintenance task failed")
			continue
		}
		logging.Debug().
			Str("task", task.Name).
			Dur("duration", time.Since(start)).
			Msg("Storage maintenance task completed")
	}
}

// String identifies the service in supervisor events.
func (m *MaintenanceService) String() string {
	return m.name
}
