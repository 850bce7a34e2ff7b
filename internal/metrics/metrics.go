// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

// Package metrics defines the Prometheus collectors for Salesradar.
//
// Collectors are package-level and registered with the default registry
// through promauto; the HTTP layer exposes them on /metrics. The Record*
// helpers keep label sets consistent across callers.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "error_type"},
	)

	DatasetRowsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_rows_loaded",
			Help: "Transactions accepted from the most recent dataset load",
		},
	)

	DatasetRowsSkipped = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_rows_skipped",
			Help: "Rows rejected by the most recent dataset load",
		},
	)

	// Engine Metrics
	EngineRebuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_rebuild_duration_seconds",
			Help:    "Duration of engine rebuild phases in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"phase"}, // "prepare", "train"
	)

	EngineRebuildErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_rebuild_errors_total",
			Help: "Total number of failed engine rebuilds",
		},
		[]string{"error_type"},
	)

	EngineStateVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_state_version",
			Help: "Version of the currently published engine state",
		},
	)

	EngineModelsTrained = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_models_trained",
			Help: "1 when predictive models are trained, 0 when ranking falls back to group rules",
		},
	)

	EngineEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_entities",
			Help: "Number of entities in the published engine state",
		},
		[]string{"kind"}, // "accounts", "products", "transactions", "training_samples"
	)

	EngineLastRebuild = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_last_rebuild_timestamp",
			Help: "Unix timestamp of the last successful rebuild",
		},
	)

	// Targeting Metrics
	TargetingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "targeting_operation_duration_seconds",
			Help:    "Duration of targeting operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "mode"},
	)

	TargetingResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "targeting_results",
			Help:    "Number of items returned by targeting operations",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"operation"},
	)

	TargetingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "targeting_errors_total",
			Help: "Total number of failed targeting operations",
		},
		[]string{"operation", "error_type"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Total number of result cache hits",
		},
		[]string{"operation"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Total number of result cache misses",
		},
		[]string{"operation"},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_evictions_total",
			Help: "Total number of entries removed from the result cache",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Reload Metrics
	ReloadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_reloads_total",
			Help: "Total number of dataset reload attempts",
		},
		[]string{"trigger", "result"}, // trigger: "interval", "watch", "admin"; result: "success", "error", "rejected"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Event and Export Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published on the in-process bus",
		},
		[]string{"topic", "result"},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "export_duration_seconds",
			Help:    "Duration of report exports in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
)

// RecordDBQuery records a DuckDB query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, classifyError(err)).Inc()
	}
}

// RecordDatasetLoad records the row counts of a finished load.
func RecordDatasetLoad(loaded, skipped int) {
	DatasetRowsLoaded.Set(float64(loaded))
	DatasetRowsSkipped.Set(float64(skipped))
}

// RecordRebuildPhase records one engine rebuild phase.
func RecordRebuildPhase(phase string, duration time.Duration, err error) {
	EngineRebuildDuration.WithLabelValues(phase).Observe(duration.Seconds())
	if err != nil {
		EngineRebuildErrors.WithLabelValues(classifyError(err)).Inc()
	}
}

// EngineSnapshot is the subset of engine status exported as gauges.
type EngineSnapshot struct {
	Version         int64
	ModelsTrained   bool
	Accounts        int
	Products        int
	Transactions    int
	TrainingSamples int
	RebuiltAt       time.Time
}

// UpdateEngineState publishes the gauges for a newly published engine state.
func UpdateEngineState(s EngineSnapshot) {
	EngineStateVersion.Set(float64(s.Version))
	trained := 0.0
	if s.ModelsTrained {
		trained = 1
	}
	EngineModelsTrained.Set(trained)
	EngineEntities.WithLabelValues("accounts").Set(float64(s.Accounts))
	EngineEntities.WithLabelValues("products").Set(float64(s.Products))
	EngineEntities.WithLabelValues("transactions").Set(float64(s.Transactions))
	EngineEntities.WithLabelValues("training_samples").Set(float64(s.TrainingSamples))
	if !s.RebuiltAt.IsZero() {
		EngineLastRebuild.Set(float64(s.RebuiltAt.Unix()))
	}
}

// RecordTargeting records a targeting call with its result size.
func RecordTargeting(operation, mode string, duration time.Duration, results int, err error) {
	if mode == "" {
		mode = "none"
	}
	TargetingDuration.WithLabelValues(operation, mode).Observe(duration.Seconds())
	if err != nil {
		TargetingErrors.WithLabelValues(operation, classifyError(err)).Inc()
		return
	}
	TargetingResults.WithLabelValues(operation).Observe(float64(results))
}

// RecordCacheLookup records a result cache hit or miss.
func RecordCacheLookup(operation string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(operation).Inc()
	} else {
		CacheMisses.WithLabelValues(operation).Inc()
	}
}

// RecordCacheEvictions adds n evicted entries.
func RecordCacheEvictions(n int) {
	CacheEvictions.Add(float64(n))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordReload records a dataset reload attempt.
func RecordReload(trigger, result string) {
	ReloadTotal.WithLabelValues(trigger, result).Inc()
}

// SetCircuitBreakerState records a breaker state (0=closed, 1=half-open, 2=open).
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordEventPublished records a publish on the event bus.
func RecordEventPublished(topic string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordExport records a report export.
func RecordExport(format string, duration time.Duration) {
	ExportDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// classifyError maps an error to a bounded label value.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient"):
		return "insufficient_data"
	case strings.Contains(msg, "unknown"), strings.Contains(msg, "not found"):
		return "unknown_entity"
	case strings.Contains(msg, "not prepared"), strings.Contains(msg, "not trained"):
		return "not_ready"
	case strings.Contains(msg, "load"), strings.Contains(msg, "csv"), strings.Contains(msg, "duckdb"):
		return "data_load"
	case strings.Contains(msg, "progress"):
		return "busy"
	default:
		return "other"
	}
}
