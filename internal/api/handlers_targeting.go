// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/salesradar/internal/metrics"
	"github.com/tomtom215/salesradar/internal/models"
	"github.com/tomtom215/salesradar/internal/targeting"
)

// RecommendGroup handles POST /api/recommend with the group ranking.
// An unknown group or an empty ranking is a 404.
func (h *Handler) RecommendGroup(w http.ResponseWriter, r *http.Request) {
	req, ok := h.recommendRequest(w, r)
	if !ok {
		return
	}

	resp, meta, err := cachedCall(r.Context(), h, "recommend_group", req,
		func(ctx context.Context, st *targeting.State) (models.RecommendResponse, error) {
			start := time.Now()
			recs, err := st.RecommendTargetsForGroup(ctx, req.ProductGroup, req.Options())
			metrics.RecordTargeting("recommend_group", targeting.ModeGroup.String(), time.Since(start), len(recs), err)
			if err != nil {
				return models.RecommendResponse{}, err
			}
			return newRecommendResponse(req.ProductGroup, targeting.ModeGroup, recs), nil
		})
	h.writeRecommendations(w, resp, meta, err)
}

// RecommendProduct handles POST /api/recommend/product. It ranks with the
// trained models and falls back to the group ranking before training.
func (h *Handler) RecommendProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := h.recommendRequest(w, r)
	if !ok {
		return
	}

	resp, meta, err := cachedCall(r.Context(), h, "recommend_product", req,
		func(ctx context.Context, st *targeting.State) (models.RecommendResponse, error) {
			start := time.Now()
			recs, mode, err := st.Recommend(ctx, req.ProductGroup, req.Options())
			metrics.RecordTargeting("recommend_product", mode.String(), time.Since(start), len(recs), err)
			if err != nil {
				return models.RecommendResponse{}, err
			}
			return newRecommendResponse(req.ProductGroup, mode, recs), nil
		})
	h.writeRecommendations(w, resp, meta, err)
}

func (h *Handler) recommendRequest(w http.ResponseWriter, r *http.Request) (models.RecommendRequest, bool) {
	var req models.RecommendRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	req.Normalize()
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return req, false
	}
	return req, true
}

func (h *Handler) writeRecommendations(w http.ResponseWriter, resp models.RecommendResponse, meta models.Metadata, err error) {
	if err != nil {
		respondEngineError(w, err)
		return
	}
	if resp.Count == 0 {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound,
			"no target accounts found for "+resp.ProductGroup, nil)
		return
	}
	respondSuccess(w, resp, meta)
}

func newRecommendResponse(group string, mode targeting.RankingMode, recs []targeting.Recommendation) models.RecommendResponse {
	if recs == nil {
		recs = []targeting.Recommendation{}
	}
	return models.RecommendResponse{
		ProductGroup:    group,
		Mode:            mode,
		Count:           len(recs),
		Recommendations: recs,
	}
}

// MarketOpportunity handles GET /api/market/{group}?mode=group|product.
func (h *Handler) MarketOpportunity(w http.ResponseWriter, r *http.Request) {
	q := models.MarketQuery{Mode: r.URL.Query().Get("mode")}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}
	name := pathParam(r, "group")
	if name == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "product group is required", nil)
		return
	}

	params := struct{ Name, Mode string }{name, q.Mode}
	market, meta, err := cachedCall(r.Context(), h, "market", params,
		func(_ context.Context, st *targeting.State) (*targeting.MarketOpportunity, error) {
			start := time.Now()
			var (
				m   *targeting.MarketOpportunity
				err error
			)
			if q.Mode == models.ModeProduct {
				m, err = st.AnalyzeMarketOpportunity(name)
			} else {
				m, err = st.AnalyzeGroupMarketOpportunity(name)
			}
			metrics.RecordTargeting("market", modeLabel(q.Mode), time.Since(start), 1, err)
			return m, err
		})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, market, meta)
}

// SalesPlan handles GET /api/plan/{group}?months=N&mode=group|product.
func (h *Handler) SalesPlan(w http.ResponseWriter, r *http.Request) {
	months, err := parseIntQuery(r, "months")
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	q := models.PlanQuery{Months: months, Mode: r.URL.Query().Get("mode")}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}
	name := pathParam(r, "group")
	if name == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "product group is required", nil)
		return
	}

	params := struct {
		Name   string
		Months int
		Mode   string
	}{name, q.Months, q.Mode}
	plan, meta, err := cachedCall(r.Context(), h, "plan", params,
		func(ctx context.Context, st *targeting.State) (*targeting.SalesPlan, error) {
			start := time.Now()
			var (
				p   *targeting.SalesPlan
				err error
			)
			if q.Mode == models.ModeProduct {
				p, err = st.GenerateSalesPlan(ctx, name, q.Months)
			} else {
				p, err = st.GenerateGroupSalesPlan(ctx, name, q.Months)
			}
			metrics.RecordTargeting("plan", modeLabel(q.Mode), time.Since(start), 1, err)
			return p, err
		})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, plan, meta)
}

// Segments handles GET /api/segments.
func (h *Handler) Segments(w http.ResponseWriter, r *http.Request) {
	segments, meta, err := cachedCall(r.Context(), h, "segments", nil,
		func(ctx context.Context, st *targeting.State) ([]targeting.CustomerSegment, error) {
			start := time.Now()
			segs, err := st.Segments(ctx)
			metrics.RecordTargeting("segments", "", time.Since(start), len(segs), err)
			return segs, err
		})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, segments, meta)
}

// ChurnRisks handles GET /api/churn.
func (h *Handler) ChurnRisks(w http.ResponseWriter, r *http.Request) {
	risks, meta, err := cachedCall(r.Context(), h, "churn", nil,
		func(ctx context.Context, st *targeting.State) ([]targeting.ChurnRisk, error) {
			start := time.Now()
			c, err := st.ChurnRisks(ctx)
			metrics.RecordTargeting("churn", "", time.Since(start), len(c), err)
			return c, err
		})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, risks, meta)
}

// CrossSell handles GET /api/cross-sell.
func (h *Handler) CrossSell(w http.ResponseWriter, r *http.Request) {
	opps, meta, err := cachedCall(r.Context(), h, "cross_sell", nil,
		func(ctx context.Context, st *targeting.State) ([]targeting.CrossSell, error) {
			start := time.Now()
			c, err := st.CrossSellOpportunities(ctx)
			metrics.RecordTargeting("cross_sell", "", time.Since(start), len(c), err)
			return c, err
		})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, opps, meta)
}

func modeLabel(mode string) string {
	if mode == "" {
		return models.ModeGroup
	}
	return mode
}
