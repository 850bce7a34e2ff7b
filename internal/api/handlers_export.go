// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package api

import (
	"bytes"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/tomtom215/salesradar/internal/export"
	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/models"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export handles GET /api/export/{file} where file is "<group>.xlsx" or
// "<group>.json". Query parameters top_n and months override the defaults.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	file := pathParam(r, "file")
	ext := strings.ToLower(path.Ext(file))
	group := strings.TrimSpace(strings.TrimSuffix(file, path.Ext(file)))
	if group == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "product group is required", nil)
		return
	}
	if ext != ".xlsx" && ext != ".json" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "export format must be .xlsx or .json", nil)
		return
	}

	opts := export.DefaultOptions()
	topN, err := parseIntQuery(r, "top_n")
	if err != nil || topN < 0 || topN > 500 {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "top_n must be between 0 and 500", nil)
		return
	}
	if topN > 0 {
		opts.TopN = topN
	}
	months, err := parseIntQuery(r, "months")
	if err != nil || months < 0 || months > 24 {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "months must be between 0 and 24", nil)
		return
	}
	if months > 0 {
		opts.Months = months
	}

	report, err := export.BuildReport(r.Context(), h.engine, group, opts)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	// Render before writing headers so a failure can still become a JSON error.
	var buf bytes.Buffer
	contentType := "application/json"
	if ext == ".xlsx" {
		contentType = contentTypeXLSX
		err = export.WriteXLSX(&buf, report)
	} else {
		err = export.WriteJSON(&buf, report)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "export failed", err)
		return
	}

	name := export.FileName(group, strings.TrimPrefix(ext, "."))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition",
		`attachment; filename="`+asciiFileName(name)+`"; filename*=UTF-8''`+url.PathEscape(name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("file", name).Msg("export write failed")
	}
}

// asciiFileName is the filename= fallback for clients without RFC 5987 support.
func asciiFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0x7E || r == '"' || r == '\\' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
