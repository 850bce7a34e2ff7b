// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package learn

import (
	"context"
	"fmt"
	"math"
)

// BoostingConfig contains parameters for the gradient-boosted classifier.
type BoostingConfig struct {
	// Rounds is the number of boosting stages.
	// Default: 100.
	Rounds int `json:"rounds"`

	// LearningRate shrinks the contribution of each stage.
	// Default: 0.1.
	LearningRate float64 `json:"learning_rate"`

	// Tree controls growth of each stage tree.
	// Default: depth 3.
	Tree TreeConfig `json:"tree"`
}

// DefaultBoostingConfig returns the classifier defaults.
func DefaultBoostingConfig() BoostingConfig {
	return BoostingConfig{
		Rounds:       100,
		LearningRate: 0.1,
		Tree:         TreeConfig{MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1},
	}
}

// probability bounds for the initial log-odds
const (
	minProb = 1e-6
	maxProb = 1 - 1e-6
)

// GradientBoostingClassifier is a binary classifier trained with log-loss.
// A fitted classifier is immutable and safe for concurrent use.
type GradientBoostingClassifier struct {
	config BoostingConfig
	init   float64
	trees  []*Tree
	fitted bool
}

// NewGradientBoostingClassifier creates an unfitted classifier.
func NewGradientBoostingClassifier(cfg BoostingConfig) *GradientBoostingClassifier {
	def := DefaultBoostingConfig()
	if cfg.Rounds <= 0 {
		cfg.Rounds = def.Rounds
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	return &GradientBoostingClassifier{config: cfg}
}

// Fit trains on labels in {0, 1}. Each stage fits a regression tree to the
// negative gradient and sets leaf values with a single Newton step.
func (g *GradientBoostingClassifier) Fit(ctx context.Context, x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 {
		return ErrEmptyDataset
	}
	if n != len(y) {
		return fmt.Errorf("learn: %d rows but %d labels", n, len(y))
	}

	var positives float64
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("learn: label %d is %v, want 0 or 1", i, label)
		}
		positives += label
	}

	p := clamp(positives/float64(n), minProb, maxProb)
	init := math.Log(p / (1 - p))

	// Single-class data: the prior alone is the model.
	if positives == 0 || positives == float64(n) {
		g.init = init
		g.trees = nil
		g.fitted = true
		return nil
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = init
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	residual := make([]float64, n)
	hessian := make([]float64, n)
	leaf := func(members []int) float64 {
		var num, den float64
		for _, i := range members {
			num += residual[i]
			den += hessian[i]
		}
		if den < 1e-12 {
			return 0
		}
		return num / den
	}

	trees := make([]*Tree, 0, g.config.Rounds)
	for round := 0; round < g.config.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		for i := range residual {
			prob := sigmoid(scores[i])
			residual[i] = y[i] - prob
			hessian[i] = prob * (1 - prob)
		}

		tree, err := FitTree(x, residual, idx, g.config.Tree, nil, leaf)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		for i := range scores {
			scores[i] += g.config.LearningRate * tree.Predict(x[i])
		}
		trees = append(trees, tree)
	}

	g.init = init
	g.trees = trees
	g.fitted = true
	return nil
}

// PredictProba returns the probability of class 1.
func (g *GradientBoostingClassifier) PredictProba(x []float64) (float64, error) {
	if !g.fitted {
		return 0, ErrNotFitted
	}
	score := g.init
	for _, t := range g.trees {
		score += g.config.LearningRate * t.Predict(x)
	}
	return sigmoid(score), nil
}

// Fitted reports whether Fit has completed successfully.
func (g *GradientBoostingClassifier) Fitted() bool {
	return g.fitted
}

// Rounds returns the number of fitted stages.
func (g *GradientBoostingClassifier) Rounds() int {
	return len(g.trees)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
