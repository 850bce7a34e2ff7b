// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramSamples extracts the sample count and sum from a histogram.
func histogramSamples(t *testing.T, o prometheus.Observer) (uint64, float64) {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := o.(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.Canceled, "canceled"},
		{fmt.Errorf("train: %w", context.DeadlineExceeded), "timeout"},
		{errors.New("insufficient data: 3 samples, need 10"), "insufficient_data"},
		{errors.New("unknown product group \"x\""), "unknown_entity"},
		{errors.New("data load failed: no rows"), "data_load"},
		{errors.New("model training already in progress"), "busy"},
		{errors.New("product group \"x\" not found"), "unknown_entity"},
		{errors.New("targeting: predictive models not trained"), "not_ready"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("load_csv", "data_load"))
	RecordDBQuery("load_csv", 5*time.Millisecond, nil)
	RecordDBQuery("load_csv", 5*time.Millisecond, errors.New("duckdb: could not read csv"))
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("load_csv", "data_load")); got != before+1 {
		t.Errorf("errors = %v, want %v", got, before+1)
	}
}

func TestUpdateEngineState(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	UpdateEngineState(EngineSnapshot{
		Version:         7,
		ModelsTrained:   true,
		Accounts:        12,
		Products:        6,
		Transactions:    300,
		TrainingSamples: 72,
		RebuiltAt:       now,
	})

	if got := testutil.ToFloat64(EngineStateVersion); got != 7 {
		t.Errorf("version = %v, want 7", got)
	}
	if got := testutil.ToFloat64(EngineModelsTrained); got != 1 {
		t.Errorf("models trained = %v, want 1", got)
	}
	if got := testutil.ToFloat64(EngineEntities.WithLabelValues("accounts")); got != 12 {
		t.Errorf("accounts = %v, want 12", got)
	}
	if got := testutil.ToFloat64(EngineEntities.WithLabelValues("training_samples")); got != 72 {
		t.Errorf("training samples = %v, want 72", got)
	}
	if got := testutil.ToFloat64(EngineLastRebuild); got != float64(now.Unix()) {
		t.Errorf("last rebuild = %v", got)
	}

	UpdateEngineState(EngineSnapshot{Version: 8})
	if got := testutil.ToFloat64(EngineModelsTrained); got != 0 {
		t.Errorf("models trained = %v, want 0", got)
	}
}

func TestRecordTargeting(t *testing.T) {
	errCounter := TargetingErrors.WithLabelValues("recommend", "unknown_entity")
	before := testutil.ToFloat64(errCounter)

	RecordTargeting("recommend", "model", time.Millisecond, 10, nil)
	RecordTargeting("recommend", "", time.Millisecond, 0, errors.New("unknown product group"))

	if got := testutil.ToFloat64(errCounter); got != before+1 {
		t.Errorf("errors = %v, want %v", got, before+1)
	}
	if n := testutil.CollectAndCount(TargetingDuration); n < 2 {
		t.Errorf("duration series = %d, want at least 2", n)
	}
}

func TestRecordCache(t *testing.T) {
	hits := CacheHits.WithLabelValues("plan")
	misses := CacheMisses.WithLabelValues("plan")
	h0, m0 := testutil.ToFloat64(hits), testutil.ToFloat64(misses)
	e0 := testutil.ToFloat64(CacheEvictions)

	RecordCacheLookup("plan", true)
	RecordCacheLookup("plan", true)
	RecordCacheLookup("plan", false)
	RecordCacheEvictions(3)

	if got := testutil.ToFloat64(hits); got != h0+2 {
		t.Errorf("hits = %v, want %v", got, h0+2)
	}
	if got := testutil.ToFloat64(misses); got != m0+1 {
		t.Errorf("misses = %v, want %v", got, m0+1)
	}
	if got := testutil.ToFloat64(CacheEvictions); got != e0+3 {
		t.Errorf("evictions = %v, want %v", got, e0+3)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("POST", "/api/recommend", "404")
	before := testutil.ToFloat64(c)
	RecordAPIRequest("POST", "/api/recommend", 404, 20*time.Millisecond)
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("requests = %v, want %v", got, before+1)
	}

	active := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != active+1 {
		t.Errorf("active = %v, want %v", got, active+1)
	}
}

func TestReloadAndBreaker(t *testing.T) {
	c := ReloadTotal.WithLabelValues("watch", "rejected")
	before := testutil.ToFloat64(c)
	RecordReload("watch", "rejected")
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("reloads = %v, want %v", got, before+1)
	}

	SetCircuitBreakerState("dataset-loader", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("dataset-loader")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
}

func TestRecordEventPublished(t *testing.T) {
	ok := EventsPublished.WithLabelValues("dataset.rebuilt", "success")
	failed := EventsPublished.WithLabelValues("dataset.rebuilt", "error")
	ok0, failed0 := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordEventPublished("dataset.rebuilt", nil)
	RecordEventPublished("dataset.rebuilt", errors.New("closed"))

	if testutil.ToFloat64(ok) != ok0+1 || testutil.ToFloat64(failed) != failed0+1 {
		t.Error("publish counters not incremented")
	}
}

func TestRecordExport(t *testing.T) {
	obs := ExportDuration.WithLabelValues("xlsx")
	count0, sum0 := histogramSamples(t, obs)

	RecordExport("xlsx", 1500*time.Millisecond)

	count, sum := histogramSamples(t, obs)
	if count != count0+1 {
		t.Errorf("sample count = %d, want %d", count, count0+1)
	}
	if got := sum - sum0; got < 1.49 || got > 1.51 {
		t.Errorf("sample sum grew by %v, want 1.5", got)
	}
}
