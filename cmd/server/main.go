// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/fincheck/internal/api"
	"github.com/tomtom215/fincheck/internal/audit"
	"github.com/tomtom215/fincheck/internal/auth"
	"github.com/tomtom215/fincheck/internal/config"
	"github.com/tomtom215/fincheck/internal/database"
	"github.com/tomtom215/fincheck/internal/inference"
	"github.com/tomtom215/fincheck/internal/logging"
	"github.com/tomtom215/fincheck/internal/supervisor"
	"github.com/tomtom215/fincheck/internal/supervisor/services"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "fincheck",
	})
	api.Version = version

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("inference_url", cfg.Inference.BaseURL).
		Strs("models", cfg.Ranking.Models).
		Msg("Starting Fincheck")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Fincheck exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	revocations, err := auth.NewRevocationStore(&cfg.Security)
	if err != nil {
		return fmt.Errorf("open revocation store: %w", err)
	}
	defer func() {
		if err := revocations.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing revocation store")
		}
	}()

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize JWT manager: %w", err)
	}

	var auditLog *audit.Logger
	if cfg.Audit.Enabled {
		auditLog = audit.NewLogger(audit.NewDuckDBStore(db.Conn()), &audit.Config{
			Enabled:       true,
			RetentionDays: cfg.Audit.RetentionDays,
			BufferSize:    cfg.Audit.BufferSize,
			LogToStdout:   cfg.Audit.LogToStdout,
		})
		// Closed before the database so queued events are flushed.
		defer func() {
			if err := auditLog.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing audit logger")
			}
		}()
	}

	if err := bootstrapAdmin(context.Background(), db, &cfg.Security, auditLog); err != nil {
		return err
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	backend := inference.NewClient(&cfg.Inference)
	handler := api.NewHandler(db, backend, cfg, jwtManager, revocations)
	handler.SetAuditLogger(auditLog)
	router := api.NewRouter(
		handler,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)),
		auth.NewMiddleware(jwtManager, revocations),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewMaintenanceService(
		cfg.Database.MaintenanceInterval,
		maintenanceTasks(db, revocations, auditLog)...,
	))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}

// maintenanceTasks returns the periodic storage jobs. Badger GC is only
// scheduled when the revocation store is disk-backed.
func maintenanceTasks(db *database.DB, revocations auth.RevocationStore, auditLog *audit.Logger) []services.MaintenanceTask {
	tasks := []services.MaintenanceTask{
		{Name: "duckdb-checkpoint", Run: db.Checkpoint},
	}
	if badgerStore, ok := revocations.(*auth.BadgerRevocationStore); ok {
		tasks = append(tasks, services.MaintenanceTask{
			Name: "badger-value-log-gc",
			Run: func(context.Context) error {
				return badgerStore.RunValueLogGC(0.5)
			},
		})
	}
	if auditLog != nil {
		tasks = append(tasks, services.MaintenanceTask{Name: "audit-retention", Run: auditLog.Cleanup})
	}
	return tasks
}
