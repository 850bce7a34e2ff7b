// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package api

import (
	"context"
	"time"

	"github.com/tomtom215/salesradar/internal/cache"
	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/targeting"
)

// TargetingEngine is the part of *targeting.Engine the handlers use.
// Cached queries run against one State snapshot; report export and the
// list endpoints go through the engine.
type TargetingEngine interface {
	Status() targeting.Status
	State() (*targeting.State, error)
	RecommendTargetsForGroup(ctx context.Context, group string, opts targeting.RecommendOptions) ([]targeting.Recommendation, error)
	AnalyzeGroupMarketOpportunity(group string) (*targeting.MarketOpportunity, error)
	GenerateGroupSalesPlan(ctx context.Context, group string, months int) (*targeting.SalesPlan, error)
	ProductGroups() ([]string, error)
	Managers() ([]string, error)
}

// Reloader reloads the dataset on demand. It is implemented by
// services.ReloadService.
type Reloader interface {
	ReloadNow(ctx context.Context) (time.Duration, error)
	Path() string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: health and lists
//   - handlers_targeting.go: ranking, market, plan and account analytics
//   - handlers_playbook.go: product summary, sales playbook, action plan and
//     manager reports
//   - handlers_export.go: report downloads
//   - handlers_admin.go: admin reload
type Handler struct {
	engine    TargetingEngine
	cache     *cache.Cache
	reloader  Reloader
	audit     *logging.AuditLogger
	version   string
	startTime time.Time
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithCache enables result caching.
func WithCache(c *cache.Cache) HandlerOption {
	return func(h *Handler) { h.cache = c }
}

// WithReloader enables POST /api/admin/reload.
func WithReloader(r Reloader) HandlerOption {
	return func(h *Handler) { h.reloader = r }
}

// WithAuditLogger records admin actions.
func WithAuditLogger(a *logging.AuditLogger) HandlerOption {
	return func(h *Handler) { h.audit = a }
}

// WithVersion sets the build version reported by /health.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) { h.version = v }
}

// NewHandler creates the API handler for engine.
func NewHandler(engine TargetingEngine, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:    engine,
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ClearCache invalidates all cached results and returns the number removed.
func (h *Handler) ClearCache() int {
	if h.cache == nil {
		return 0
	}
	n := h.cache.Clear()
	logging.Debug().Int("entries", n).Msg("Result cache cleared")
	return n
}
