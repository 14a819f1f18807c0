// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/fincheck/internal/audit"
	"github.com/tomtom215/fincheck/internal/auth"
	"github.com/tomtom215/fincheck/internal/config"
	"github.com/tomtom215/fincheck/internal/inference"
	"github.com/tomtom215/fincheck/internal/models"
	"github.com/tomtom215/fincheck/internal/ranking"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// Store is the persistence the handlers need. *database.DB satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	InsertResult(ctx context.Context, result *models.ModelResult) (string, error)
	GetResult(ctx context.Context, id string) (*models.ModelResult, error)
	ListResults(ctx context.Context, owner string, limit, offset int) ([]models.ResultSummary, error)
	CountResults(ctx context.Context, owner string) (int, error)
}

// Backend is the inference service. *inference.Client satisfies it.
type Backend interface {
	Run(ctx context.Context, image []byte, filename string) (*inference.RunResult, error)
	RunDataset(ctx context.Context, req inference.DatasetRequest) (*inference.DatasetResult, error)
	Verify(ctx context.Context, image []byte, filename, rawText string) (*inference.VerifyResult, error)
	Health(ctx context.Context) (*inference.HealthStatus, error)
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_auth.go: sign-up, sign-in, sign-out, me
//   - handlers_results.go: uploads, dataset runs, stored results
//   - handlers_ranking.go: reports, single-metric rankings, catalog
//   - handlers_verify.go: typed-text verification proxy
//   - handlers_health.go: liveness and readiness
//   - handlers_audit.go: admin audit trail
type Handler struct {
	store       Store
	backend     Backend
	config      *config.Config
	jwtManager  *auth.JWTManager
	revocations auth.RevocationStore
	catalog     *ranking.Catalog
	options     ranking.Options
	policy      auth.PasswordPolicy
	audit       *audit.Logger
	startTime   time.Time
}

// NewHandler creates a new API handler. The ranking options and canonical
// model list come from cfg.Ranking.
func NewHandler(store Store, backend Backend, cfg *config.Config, jwtManager *auth.JWTManager, revocations auth.RevocationStore) *Handler {
	return &Handler{
		store:       store,
		backend:     backend,
		config:      cfg,
		jwtManager:  jwtManager,
		revocations: revocations,
		catalog:     ranking.DefaultCatalog(),
		options:     cfg.RankingOptions(),
		policy:      auth.DefaultPasswordPolicy(),
		startTime:   time.Now(),
	}
}

// SetAuditLogger enables the audit trail. Without one, account events are
// only logged.
func (h *Handler) SetAuditLogger(logger *audit.Logger) {
	h.audit = logger
}

// recordAudit queues an account event for r. Safe without an audit logger.
func (h *Handler) recordAudit(r *http.Request, eventType audit.EventType, outcome audit.Outcome, actor, reason string) {
	h.audit.Log(audit.NewEvent(eventType, outcome, actor).WithReason(reason).WithRequest(r))
}

// canonicalModels is the configured model list, in display order.
func (h *Handler) canonicalModels() []string {
	return h.config.Ranking.Models
}

// pageBounds clamps a requested page size to the configured maximum.
func (h *Handler) pageBounds(limit int) int {
	if maxSize := h.config.Server.MaxPageSize; maxSize > 0 && limit > maxSize {
		return maxSize
	}
	return limit
}
