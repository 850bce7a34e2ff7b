// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/salesradar/internal/models"
)

// Health statuses.
const (
	HealthOK       = "healthy"
	HealthDegraded = "degraded"
)

// Health handles GET /health. It always answers 200; the status is
// "degraded" until a dataset has been prepared.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	st := h.engine.Status()
	status := HealthOK
	if !st.Prepared {
		status = HealthDegraded
	}

	respondSuccess(w, models.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Version: h.version,
		Engine:  st,
	}, models.Metadata{StateVersion: st.Version})
}

// ProductGroups handles GET /api/products.
func (h *Handler) ProductGroups(w http.ResponseWriter, _ *http.Request) {
	groups, err := h.engine.ProductGroups()
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, models.NewListResponse(groups), models.Metadata{StateVersion: h.engine.Status().Version})
}

// Managers handles GET /api/managers.
func (h *Handler) Managers(w http.ResponseWriter, _ *http.Request) {
	managers, err := h.engine.Managers()
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, models.NewListResponse(managers), models.Metadata{StateVersion: h.engine.Status().Version})
}
