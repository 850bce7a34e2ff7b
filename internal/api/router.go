// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/salesradar/internal/middleware"
	"github.com/tomtom215/salesradar/internal/models"
)

// Router binds the handler to its routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	adminAuth     *middleware.AdminAuth
	timeout       time.Duration
}

// NewRouter creates a router. adminAuth may be nil, in which case the admin
// routes answer 503. A zero timeout disables the request deadline.
func NewRouter(handler *Handler, mw *ChiMiddleware, adminAuth *middleware.AdminAuth, timeout time.Duration) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		adminAuth:     adminAuth,
		timeout:       timeout,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		// Admin reloads run for as long as training takes, so only the
		// query routes carry the request deadline.
		r.Group(func(r chi.Router) {
			if router.timeout > 0 {
				r.Use(chimiddleware.Timeout(router.timeout))
			}

			r.Get("/products", router.handler.ProductGroups)
			r.Get("/products/summary", router.handler.ProductSummaries)
			r.Get("/managers", router.handler.Managers)
			r.Get("/managers/{manager}/recommendations", router.handler.ManagerRecommendations)

			r.Post("/recommend", router.handler.RecommendGroup)
			r.Post("/recommend/product", router.handler.RecommendProduct)

			r.Get("/market/{group}", router.handler.MarketOpportunity)
			r.Get("/plan/{group}", router.handler.SalesPlan)

			r.Get("/segments", router.handler.Segments)
			r.Get("/churn", router.handler.ChurnRisks)
			r.Get("/cross-sell", router.handler.CrossSell)
			r.Get("/recommendations", router.handler.SalesRecommendations)
			r.Get("/action-plan", router.handler.ActionPlan)

			r.Get("/export/{file}", router.handler.Export)
		})

		r.Route("/admin", func(r chi.Router) {
			if router.adminAuth == nil {
				r.HandleFunc("/*", func(w http.ResponseWriter, _ *http.Request) {
					respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable,
						"admin endpoints are disabled", nil)
				})
				return
			}
			r.Use(router.adminAuth.Middleware)
			r.Post("/reload", router.handler.Reload)
		})
	})

	return r
}
