// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package models

import (
	"strings"
	"time"

	"github.com/tomtom215/salesradar/internal/targeting"
)

// Ranking modes accepted by the mode query parameter.
const (
	ModeGroup   = "group"
	ModeProduct = "product"
)

// RecommendRequest is the body of POST /api/recommend and /api/recommend/product.
// A zero TopN uses the configured default; ExcludeExisting defaults to true.
type RecommendRequest struct {
	ProductGroup    string `json:"product_group" validate:"notblank,max=200"`
	TopN            int    `json:"top_n" validate:"min=0,max=500"`
	Manager         string `json:"manager" validate:"max=100"`
	ExcludeExisting *bool  `json:"exclude_existing"`
}

// Normalize trims the free-text fields in place.
func (r *RecommendRequest) Normalize() {
	r.ProductGroup = strings.TrimSpace(r.ProductGroup)
	r.Manager = strings.TrimSpace(r.Manager)
}

// Options converts the request to engine options.
func (r *RecommendRequest) Options() targeting.RecommendOptions {
	opts := targeting.DefaultRecommendOptions()
	if r.TopN > 0 {
		opts.TopN = r.TopN
	}
	if r.ExcludeExisting != nil {
		opts.ExcludeExisting = *r.ExcludeExisting
	}
	opts.Manager = r.Manager
	return opts
}

// PlanQuery holds the query parameters of GET /api/plan/{group}.
type PlanQuery struct {
	Months int    `json:"months" validate:"min=0,max=24"`
	Mode   string `json:"mode" validate:"omitempty,oneof=group product"`
}

// MarketQuery holds the query parameters of GET /api/market/{group}.
type MarketQuery struct {
	Mode string `json:"mode" validate:"omitempty,oneof=group product"`
}

// RecommendResponse is the data of a recommendation call.
type RecommendResponse struct {
	ProductGroup    string                     `json:"product_group"`
	Mode            targeting.RankingMode      `json:"mode"`
	Count           int                        `json:"count"`
	Recommendations []targeting.Recommendation `json:"recommendations"`
}

// ListResponse wraps a plain list of names such as product groups or managers.
type ListResponse struct {
	Count int      `json:"count"`
	Items []string `json:"items"`
}

// NewListResponse builds a ListResponse, normalising nil to an empty list.
func NewListResponse(items []string) ListResponse {
	if items == nil {
		items = []string{}
	}
	return ListResponse{Count: len(items), Items: items}
}

// HealthResponse is the data of GET /health.
type HealthResponse struct {
	Status  string           `json:"status"`
	Uptime  string           `json:"uptime"`
	Version string           `json:"version"`
	Engine  targeting.Status `json:"engine"`
}

// ReloadResponse is the data of POST /api/admin/reload.
type ReloadResponse struct {
	Source   string           `json:"source"`
	Duration string           `json:"duration"`
	Engine   targeting.Status `json:"engine"`
}

// NewReloadResponse formats a finished reload.
func NewReloadResponse(source string, took time.Duration, st targeting.Status) ReloadResponse {
	return ReloadResponse{
		Source:   source,
		Duration: took.Round(time.Millisecond).String(),
		Engine:   st,
	}
}
