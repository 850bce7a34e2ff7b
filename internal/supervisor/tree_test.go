// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/salesradar/internal/cache"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(nil, TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	data := newMockService("reload", 0)
	messaging := newMockService("events", 0)
	api := newMockService("http", 0)
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	time.Sleep(100 * time.Millisecond)

	for _, svc := range []*mockService{data, messaging, api} {
		if svc.starts.Load() < 1 {
			t.Errorf("%s was not started", svc)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("tree stopped with %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := newMockService("reload", 2)
	stable := newMockService("http", 0)
	tree.AddDataService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	errCh := tree.ServeBackground(ctx)
	time.Sleep(200 * time.Millisecond)

	if failing.starts.Load() < 3 {
		t.Errorf("failing service starts = %d, want at least 3", failing.starts.Load())
	}
	if stable.starts.Load() != 1 {
		t.Errorf("stable service starts = %d, want 1 (isolated from data layer)", stable.starts.Load())
	}
	cancel()
	<-errCh
}

func TestSupervisorTree_CacheJanitorStops(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	tree.AddMessagingService(cache.New(10, time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("cache janitor blocked shutdown")
	}
	if report, _ := tree.UnstoppedServiceReport(); len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}
