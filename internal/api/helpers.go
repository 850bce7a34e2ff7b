// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/salesradar/internal/cache"
	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/metrics"
	"github.com/tomtom215/salesradar/internal/middleware"
	"github.com/tomtom215/salesradar/internal/models"
	"github.com/tomtom215/salesradar/internal/targeting"
	"github.com/tomtom215/salesradar/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// sanitizeLogValue removes control characters from strings to prevent log injection.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	if response.Metadata.RequestID == "" {
		response.Metadata.RequestID = w.Header().Get(middleware.RequestIDHeader)
	}

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, data interface{}, meta models.Metadata) {
	resp := models.NewSuccess(data)
	meta.Timestamp = resp.Metadata.Timestamp
	resp.Metadata = meta
	respondJSON(w, http.StatusOK, resp)
}

// respondError sends an error response. err is logged, never returned to the client.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}
	respondJSON(w, status, models.NewError(code, message, nil))
}

// respondValidation sends a 400 for a failed validator check.
func respondValidation(w http.ResponseWriter, apiErr *models.APIError) {
	resp := models.NewError(apiErr.Code, apiErr.Message, apiErr.Details)
	respondJSON(w, http.StatusBadRequest, resp)
}

// respondEngineError maps targeting errors to status codes.
func respondEngineError(w http.ResponseWriter, err error) {
	var loadErr *targeting.DataLoadError
	switch {
	case targeting.IsUnknownEntity(err):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, targeting.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, targeting.ErrNotPrepared),
		errors.Is(err, targeting.ErrModelsNotTrained),
		targeting.IsInsufficientData(err):
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, err.Error(), nil)
	case errors.Is(err, targeting.ErrTrainingInProgress):
		respondError(w, http.StatusConflict, models.ErrCodeConflict, err.Error(), nil)
	case errors.As(err, &loadErr):
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "dataset could not be loaded", err)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal error", err)
	}
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// decodeJSON reads a JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "could not read request body", nil)
		return false
	}
	if len(body) > maxBodyBytes {
		respondError(w, http.StatusRequestEntityTooLarge, models.ErrCodeValidation, "request body too large", nil)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid JSON body", nil)
		return false
	}
	return true
}

// parseIntQuery returns the integer query parameter key, or 0 when absent.
func parseIntQuery(r *http.Request, key string) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// pathParam returns a decoded, trimmed chi URL parameter.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return strings.TrimSpace(raw)
}

// cacheKey pins params to the engine state version so a rebuild never
// serves an older result.
type cacheKey struct {
	Version int64       `json:"v"`
	Params  interface{} `json:"p"`
}

// cachedCall returns the cached result of op for params or computes and
// stores it. The state is loaded once, so the key version and the result
// always belong to the same snapshot. Errors are never cached.
func cachedCall[T any](ctx context.Context, h *Handler, op string, params interface{}, compute func(context.Context, *targeting.State) (T, error)) (T, models.Metadata, error) {
	start := time.Now()
	var zero T

	st, err := h.engine.State()
	if err != nil {
		return zero, models.Metadata{}, err
	}
	meta := models.Metadata{StateVersion: st.Version()}

	var key string
	if h.cache != nil {
		key = cache.GenerateKey(op, cacheKey{Version: meta.StateVersion, Params: params})
		if v, ok := h.cache.Get(key); ok {
			if result, ok := v.(T); ok {
				metrics.RecordCacheLookup(op, true)
				meta.Cached = true
				meta.QueryTimeMS = time.Since(start).Milliseconds()
				return result, meta, nil
			}
		}
		metrics.RecordCacheLookup(op, false)
	}

	result, err := compute(ctx, st)
	meta.QueryTimeMS = time.Since(start).Milliseconds()
	if err != nil {
		return result, meta, err
	}
	if h.cache != nil {
		h.cache.Set(key, result)
	}
	return result, meta, nil
}
