// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/fincheck/internal/auth"
	"github.com/tomtom215/fincheck/internal/middleware"
	"github.com/tomtom215/fincheck/internal/models"
)

// slowRequestThreshold marks requests logged at warn level.
const slowRequestThreshold = 2 * time.Second

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authMW *auth.Middleware) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
		auth:          authMW,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog(slowRequestThreshold))
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(auth.SecurityHeaders)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(router.chiMiddleware.RateLimitAuth()).Post("/sign-up", router.handler.SignUp)
		r.With(router.chiMiddleware.RateLimitAuth()).Post("/sign-in", router.handler.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(router.auth.Authenticate)
			r.Post("/sign-out", router.handler.SignOut)
			r.Get("/me", router.handler.Me)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Get("/metrics/catalog", router.handler.MetricCatalog)
		r.Get("/datasets", router.handler.ListDatasets)

		r.Group(func(r chi.Router) {
			r.Use(router.auth.Authenticate)

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitInference())
				r.Post("/upload", router.handler.Upload)
				r.Post("/datasets/run", router.handler.DatasetsRun)
				r.Post("/verify", router.handler.Verify)
			})

			r.Get("/results", router.handler.ListResults)
			r.Get("/results/{id}", router.handler.GetResult)
			r.Get("/results/{id}/report", router.handler.Report)
			r.Get("/results/{id}/rank/{metric}", router.handler.RankMetric)

			r.Route("/admin", func(r chi.Router) {
				r.Use(router.auth.RequireRole(models.RoleAdmin))
				r.Use(router.handler.auditAdminAccess)
				r.Get("/results", router.handler.ListResults)
				r.Get("/audit", router.handler.AuditEvents)
			})
		})
	})

	return r
}
