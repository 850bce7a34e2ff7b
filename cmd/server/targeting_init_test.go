// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salesradar/internal/cache"
	"github.com/tomtom215/salesradar/internal/config"
	"github.com/tomtom215/salesradar/internal/events"
	"github.com/tomtom215/salesradar/internal/targeting"
)

func TestBuildEngineConfig(t *testing.T) {
	t.Run("nil keeps defaults", func(t *testing.T) {
		got := buildEngineConfig(nil)
		want := targeting.DefaultConfig()
		if got.NeighborCount != want.NeighborCount || got.Plan != want.Plan || got.Weights != want.Weights {
			t.Errorf("buildEngineConfig(nil) = %+v", got)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		tc := &config.TargetingConfig{
			NeighborCount:     7,
			Seed:              9,
			WeightRevenue:     1,
			TierSmall:         5_000_000,
			ForestTrees:       12,
			BoostingRounds:    30,
			BoostingMaxDepth:  2,
			PlanHorizon:       12,
			PlanBucketSize:    4,
			TrainTimeout:      time.Minute,
			NegativeRatio:     2,
			MinSamples:        20,
			ForestMaxDepth:    5,
			PlanMaxMonths:     12,
			DefaultTopN:       20,
			MaxTopN:           100,
			WeightSpecialty:   0,
			WeightSimilarity:  0,
			WeightProbability: 0,
		}
		got := buildEngineConfig(tc)
		if got.NeighborCount != 7 || got.Seed != 9 || got.Forest.Seed != 9 {
			t.Errorf("neighbor/seed = %d/%d/%d", got.NeighborCount, got.Seed, got.Forest.Seed)
		}
		if got.Weights != (targeting.ScoreWeights{Revenue: 1}) {
			t.Errorf("weights = %+v", got.Weights)
		}
		if got.Tiers.Small != 5_000_000 || got.Tiers.Medium != targeting.DefaultConfig().Tiers.Medium {
			t.Errorf("tiers = %+v", got.Tiers)
		}
		if got.Forest.Trees != 12 || got.Forest.Tree.MaxDepth != 5 || got.Boosting.Rounds != 30 || got.Boosting.Tree.MaxDepth != 2 {
			t.Errorf("ensembles = %+v / %+v", got.Forest, got.Boosting)
		}
		if got.Plan.Horizon != 12 || got.Plan.BucketSize != 4 || got.Plan.MaxMonths != 12 {
			t.Errorf("plan = %+v", got.Plan)
		}
		if got.Training.Timeout != time.Minute || got.Training.NegativeRatio != 2 || got.Training.MinSamples != 20 {
			t.Errorf("training = %+v", got.Training)
		}
		if err := got.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestNewResultCache(t *testing.T) {
	if c := newResultCache(&config.CacheConfig{Enabled: false}); c != nil {
		t.Error("disabled cache was created")
	}
	if c := newResultCache(&config.CacheConfig{Enabled: true, TTL: time.Minute, MaxEntries: 10}); c == nil {
		t.Error("enabled cache not created")
	}
}

func TestWireRebuildEvents_ClearsCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := targeting.NewEngine(targeting.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	bus := events.NewBus(events.DefaultConfig(), zerolog.Nop())
	c := cache.New(10, time.Minute)
	c.Set("stale", 1)

	wireRebuildEvents(eng, bus, c, zerolog.Nop())
	go func() { _ = bus.Serve(ctx) }()
	select {
	case <-bus.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("event bus not ready")
	}

	var txns []targeting.Transaction
	for i, id := range []string{"A1", "A2", "A3"} {
		for _, g := range []string{"G1", "G2"} {
			txns = append(txns, targeting.Transaction{
				AccountID: id, AccountName: id + "내과의원", ProductGroup: g, ProductName: g,
				Period: targeting.NewPeriod(2024, time.Month(i+1)), Revenue: 100_000,
			})
		}
	}
	if err := eng.LoadAndPrepare(ctx, txns); err != nil {
		t.Fatalf("LoadAndPrepare() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for c.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("cache not cleared after rebuild")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
