// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/middleware"
	"github.com/tomtom215/salesradar/internal/models"
	"github.com/tomtom215/salesradar/internal/supervisor/services"
)

// Reload handles POST /api/admin/reload. It reloads the configured dataset
// synchronously and returns the new engine status.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "reload is not configured", nil)
		return
	}

	took, err := h.reloader.ReloadNow(r.Context())
	if h.audit != nil {
		h.audit.LogReload(middleware.AdminUser(r.Context()), middleware.ClientIP(r), h.reloader.Path(), err)
	}
	if err != nil {
		if errors.Is(err, services.ErrReloadRejected) {
			respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable,
				"dataset loading is suspended after repeated failures", err)
			return
		}
		respondEngineError(w, err)
		return
	}

	st := h.engine.Status()
	logging.Ctx(r.Context()).Info().
		Int64("version", st.Version).
		Dur("took", took).
		Msg("dataset reloaded by admin")
	respondSuccess(w, models.NewReloadResponse(h.reloader.Path(), took, st), models.Metadata{StateVersion: st.Version})
}
