// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salesradar/internal/cache"
	"github.com/tomtom215/salesradar/internal/config"
	"github.com/tomtom215/salesradar/internal/events"
	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/metrics"
	"github.com/tomtom215/salesradar/internal/targeting"
)

// buildEngineConfig overlays the configured targeting settings on the
// engine defaults. Zero values keep the default.
func buildEngineConfig(tc *config.TargetingConfig) *targeting.Config {
	cfg := targeting.DefaultConfig()
	if tc == nil {
		return cfg
	}

	setInt(&cfg.NeighborCount, tc.NeighborCount)
	setInt(&cfg.DefaultTopN, tc.DefaultTopN)
	setInt(&cfg.MaxTopN, tc.MaxTopN)
	cfg.Workers = tc.Workers
	if tc.Seed != 0 {
		cfg.Seed = tc.Seed
		cfg.Forest.Seed = tc.Seed
	}

	if w := tc.WeightRevenue + tc.WeightProbability + tc.WeightSimilarity + tc.WeightSpecialty; w > 0 {
		cfg.Weights = targeting.ScoreWeights{
			Revenue:     tc.WeightRevenue,
			Probability: tc.WeightProbability,
			Similarity:  tc.WeightSimilarity,
			Specialty:   tc.WeightSpecialty,
		}
	}
	setFloat(&cfg.Tiers.Small, tc.TierSmall)
	setFloat(&cfg.Tiers.Medium, tc.TierMedium)
	setFloat(&cfg.Tiers.Large, tc.TierLarge)

	setInt(&cfg.Training.MinSamples, tc.MinSamples)
	setFloat(&cfg.Training.NegativeRatio, tc.NegativeRatio)
	if tc.TrainTimeout > 0 {
		cfg.Training.Timeout = tc.TrainTimeout
	}

	setInt(&cfg.Forest.Trees, tc.ForestTrees)
	setInt(&cfg.Forest.Tree.MaxDepth, tc.ForestMaxDepth)
	setInt(&cfg.Boosting.Rounds, tc.BoostingRounds)
	setFloat(&cfg.Boosting.LearningRate, tc.BoostingLearningRate)
	setInt(&cfg.Boosting.Tree.MaxDepth, tc.BoostingMaxDepth)

	setInt(&cfg.Plan.Horizon, tc.PlanHorizon)
	setInt(&cfg.Plan.BucketSize, tc.PlanBucketSize)
	setInt(&cfg.Plan.MaxMonths, tc.PlanMaxMonths)
	return cfg
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

// newResultCache returns nil when caching is disabled.
func newResultCache(cfg *config.CacheConfig) *cache.Cache {
	if !cfg.Enabled {
		return nil
	}
	c := cache.New(cfg.MaxEntries, cfg.TTL)
	c.OnEvict(metrics.RecordCacheEvictions)
	return c
}

// wireRebuildEvents connects engine rebuilds to the metrics gauges and the
// event bus, and subscribes the result cache to rebuild events.
func wireRebuildEvents(eng *targeting.Engine, bus *events.Bus, resultCache *cache.Cache, logger zerolog.Logger) {
	if resultCache != nil {
		bus.Subscribe("cache-invalidate", func(_ context.Context, ev events.DatasetRebuilt) error {
			n := resultCache.Clear()
			logger.Debug().
				Int64("version", ev.Version).
				Int("entries", n).
				Msg("result cache cleared after rebuild")
			return nil
		})
	}

	eng.OnRebuilt(func(ctx context.Context, st targeting.Status) {
		ev := events.FromStatus(st)
		metrics.UpdateEngineState(metrics.EngineSnapshot{
			Version:         st.Version,
			ModelsTrained:   st.ModelsTrained,
			Accounts:        st.Accounts,
			Products:        st.Products,
			Transactions:    st.Transactions,
			TrainingSamples: st.TrainingSamples,
			RebuiltAt:       ev.RebuiltAt,
		})
		if err := bus.PublishRebuilt(ctx, ev); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64("version", st.Version).Msg("rebuild event not published")
		}
	})
}
