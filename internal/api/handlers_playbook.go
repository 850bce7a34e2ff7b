// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/metrics"
	"github.com/tomtom215/salesradar/internal/models"
	"github.com/tomtom215/salesradar/internal/targeting"
)

// ProductSummaries handles GET /api/products/summary.
func (h *Handler) ProductSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, meta, err := cachedCall(r.Context(), h, "product_summary", nil,
		func(_ context.Context, st *targeting.State) ([]targeting.ProductSummary, error) {
			start := time.Now()
			out := st.ProductSummaries()
			metrics.RecordTargeting("product_summary", "", time.Since(start), len(out), nil)
			return out, nil
		})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, summaries, meta)
}

// SalesRecommendations handles GET /api/recommendations, the sales playbook.
func (h *Handler) SalesRecommendations(w http.ResponseWriter, r *http.Request) {
	actions, meta, err := cachedCall(r.Context(), h, "playbook", nil,
		func(ctx context.Context, st *targeting.State) ([]targeting.SalesAction, error) {
			start := time.Now()
			a, err := st.SalesRecommendations(ctx)
			metrics.RecordTargeting("playbook", "", time.Since(start), len(a), err)
			return a, err
		})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, actions, meta)
}

// ActionPlan handles GET /api/action-plan?month=YYYY-MM. Without month the
// plan covers the period after the latest one in the dataset.
func (h *Handler) ActionPlan(w http.ResponseWriter, r *http.Request) {
	var month targeting.Period
	if raw := r.URL.Query().Get("month"); raw != "" {
		p, err := targeting.ParsePeriod(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
			return
		}
		month = p
	}

	plan, meta, err := cachedCall(r.Context(), h, "action_plan", month,
		func(ctx context.Context, st *targeting.State) (*targeting.ActionPlan, error) {
			start := time.Now()
			p, err := st.MonthlyActionPlan(ctx, month)
			metrics.RecordTargeting("action_plan", "", time.Since(start), 1, err)
			return p, err
		})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, plan, meta)
}

// ManagerRecommendations handles GET /api/managers/{manager}/recommendations.
// A manager with no accounts is a 404.
func (h *Handler) ManagerRecommendations(w http.ResponseWriter, r *http.Request) {
	manager := pathParam(r, "manager")
	if manager == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "manager is required", nil)
		return
	}

	report, meta, err := cachedCall(r.Context(), h, "manager_recommend", manager,
		func(ctx context.Context, st *targeting.State) (*targeting.ManagerRecommendations, error) {
			start := time.Now()
			out, err := st.RecommendForManager(ctx, manager)
			n := 0
			if out != nil {
				n = out.TotalProducts
			}
			metrics.RecordTargeting("manager_recommend", "", time.Since(start), n, err)
			return out, err
		})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	if len(report.Skipped) > 0 {
		logging.Ctx(r.Context()).Warn().
			Str("manager", sanitizeLogValue(manager)).
			Strs("product_groups", report.Skipped).
			Msg("skipped product groups in manager report")
	}
	respondSuccess(w, report, meta)
}
