// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"net/http"

	"github.com/tomtom215/fincheck/internal/audit"
	"github.com/tomtom215/fincheck/internal/models"
	"github.com/tomtom215/fincheck/internal/validation"
)

// AuditEvents lists the security audit trail, newest first.
//
// GET /api/v1/admin/audit?type=&outcome=&actor=&limit=&offset= (admin)
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	if !h.audit.Enabled() {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Audit logging is disabled", nil)
		return
	}

	limit, err := getIntParam(r, "limit", h.config.Server.DefaultPageSize)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	offset, err := getIntParam(r, "offset", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	q := r.URL.Query()
	req := AuditQuery{
		Limit:   limit,
		Offset:  offset,
		Type:    q.Get("type"),
		Outcome: q.Get("outcome"),
		Actor:   q.Get("actor"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}
	req.Limit = h.pageBounds(req.Limit)

	filter := audit.QueryFilter{
		Outcome: audit.Outcome(req.Outcome),
		Actor:   req.Actor,
	}
	if req.Type != "" {
		filter.Types = []audit.EventType{audit.EventType(req.Type)}
	}

	total, err := h.audit.Count(r.Context(), filter)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to query audit events", err)
		return
	}
	filter.Limit, filter.Offset = req.Limit, req.Offset
	events, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to query audit events", err)
		return
	}

	respondPage(w, r, events, &models.PaginationInfo{
		Limit:      req.Limit,
		Offset:     req.Offset,
		TotalCount: int(total),
		HasMore:    int64(req.Offset+len(events)) < total,
	})
}

// auditAdminAccess records every request that reaches an admin route. It
// runs after RequireRole, so only granted access is recorded here.
func (h *Handler) auditAdminAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := caller(r); ok {
			h.recordAudit(r, audit.EventAdminAccess, audit.OutcomeSuccess, claims.Username, "")
		}
		next.ServeHTTP(w, r)
	})
}
