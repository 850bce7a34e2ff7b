// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package learn

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForestConfig contains parameters for the random-forest regressor.
type ForestConfig struct {
	// Trees is the number of trees in the ensemble.
	// Default: 100.
	Trees int `json:"trees"`

	// Tree controls growth of each member tree.
	Tree TreeConfig `json:"tree"`

	// Bootstrap resamples the training rows with replacement per tree.
	// Default: true.
	Bootstrap bool `json:"bootstrap"`

	// Seed makes training deterministic.
	Seed int64 `json:"seed"`

	// Workers bounds parallel tree construction. Zero means GOMAXPROCS.
	Workers int `json:"workers"`
}

// DefaultForestConfig returns the regressor defaults.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:     100,
		Tree:      TreeConfig{MaxDepth: 12, MinSamplesSplit: 2, MinSamplesLeaf: 1},
		Bootstrap: true,
		Seed:      42,
	}
}

// RandomForestRegressor averages bagged regression trees.
// A fitted regressor is immutable and safe for concurrent Predict calls.
type RandomForestRegressor struct {
	config ForestConfig
	trees  []*Tree
}

// NewRandomForestRegressor creates an unfitted regressor.
func NewRandomForestRegressor(cfg ForestConfig) *RandomForestRegressor {
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultForestConfig().Trees
	}
	return &RandomForestRegressor{config: cfg}
}

// Fit trains the forest. Trees are grown in parallel; tree i always uses
// the source seeded with Seed+i so the result does not depend on scheduling.
func (f *RandomForestRegressor) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 {
		return ErrEmptyDataset
	}
	if len(x) != len(y) {
		return fmt.Errorf("learn: %d rows but %d targets", len(x), len(y))
	}

	workers := f.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]*Tree, f.config.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(f.config.Seed + int64(i))) //nolint:gosec // deterministic model seeding
			idx := sampleRows(len(x), f.config.Bootstrap, rng)
			tree, err := FitTree(x, y, idx, f.config.Tree, rng, nil)
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			trees[i] = tree
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f.trees = trees
	return nil
}

// Predict returns the mean prediction of all trees.
func (f *RandomForestRegressor) Predict(x []float64) (float64, error) {
	if len(f.trees) == 0 {
		return 0, ErrNotFitted
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(f.trees)), nil
}

// Fitted reports whether Fit has completed successfully.
func (f *RandomForestRegressor) Fitted() bool {
	return len(f.trees) > 0
}

// Size returns the number of fitted trees.
func (f *RandomForestRegressor) Size() int {
	return len(f.trees)
}

func sampleRows(n int, bootstrap bool, rng *rand.Rand) []int {
	idx := make([]int, n)
	if !bootstrap {
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}
