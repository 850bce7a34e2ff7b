// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package learn

import (
	"context"
	"errors"
	"math"
	"testing"
)

// stepData is y = 10 when x0 > 5, else 1. x1 is noise-free filler.
func stepData() ([][]float64, []float64) {
	var x [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		v := float64(i % 10)
		x = append(x, []float64{v, float64(i)})
		if v > 5 {
			y = append(y, 10)
		} else {
			y = append(y, 1)
		}
	}
	return x, y
}

func TestFitTree(t *testing.T) {
	x, y := stepData()
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}

	tree, err := FitTree(x, y, idx, TreeConfig{MaxDepth: 3}, nil, nil)
	if err != nil {
		t.Fatalf("FitTree() error = %v", err)
	}

	tests := []struct {
		name string
		x    []float64
		want float64
	}{
		{name: "low side", x: []float64{2, 0}, want: 1},
		{name: "high side", x: []float64{8, 0}, want: 10},
		{name: "boundary goes left", x: []float64{5, 0}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tree.Predict(tt.x); got != tt.want {
				t.Errorf("Predict(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestFitTree_Errors(t *testing.T) {
	if _, err := FitTree(nil, nil, nil, TreeConfig{}, nil, nil); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("FitTree(empty) error = %v, want ErrEmptyDataset", err)
	}
	if _, err := FitTree([][]float64{{1}}, []float64{1, 2}, []int{0}, TreeConfig{}, nil, nil); err == nil {
		t.Error("FitTree(mismatched) expected error")
	}
}

func TestFitTree_MaxDepth(t *testing.T) {
	x, y := stepData()
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	tree, err := FitTree(x, y, idx, TreeConfig{MaxDepth: 1}, nil, nil)
	if err != nil {
		t.Fatalf("FitTree() error = %v", err)
	}
	if d := tree.Depth(); d > 1 {
		t.Errorf("Depth() = %d, want <= 1", d)
	}
}

func TestRandomForestRegressor(t *testing.T) {
	x, y := stepData()

	cfg := DefaultForestConfig()
	cfg.Trees = 20
	f := NewRandomForestRegressor(cfg)

	if _, err := f.Predict(x[0]); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Predict before Fit error = %v, want ErrNotFitted", err)
	}
	if err := f.Fit(context.Background(), x, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if f.Size() != 20 {
		t.Errorf("Size() = %d, want 20", f.Size())
	}

	high, _ := f.Predict([]float64{9, 0})
	low, _ := f.Predict([]float64{0, 0})
	if high <= low {
		t.Errorf("Predict(high) = %v, Predict(low) = %v, want high > low", high, low)
	}
	if high > 10 || low < 1 {
		t.Errorf("predictions outside target range: high=%v low=%v", high, low)
	}
}

func TestRandomForestRegressor_Deterministic(t *testing.T) {
	x, y := stepData()
	cfg := DefaultForestConfig()
	cfg.Trees = 10

	a := NewRandomForestRegressor(cfg)
	b := NewRandomForestRegressor(cfg)
	b.config.Workers = 1

	if err := a.Fit(context.Background(), x, y); err != nil {
		t.Fatalf("Fit(a) error = %v", err)
	}
	if err := b.Fit(context.Background(), x, y); err != nil {
		t.Fatalf("Fit(b) error = %v", err)
	}

	for _, row := range x {
		pa, _ := a.Predict(row)
		pb, _ := b.Predict(row)
		if pa != pb {
			t.Fatalf("Predict(%v) differs across runs: %v vs %v", row, pa, pb)
		}
	}
}

func TestRandomForestRegressor_Cancelled(t *testing.T) {
	x, y := stepData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewRandomForestRegressor(DefaultForestConfig())
	if err := f.Fit(ctx, x, y); !errors.Is(err, context.Canceled) {
		t.Errorf("Fit(cancelled) error = %v, want context.Canceled", err)
	}
	if f.Fitted() {
		t.Error("Fitted() = true after cancelled fit")
	}
}

func TestGradientBoostingClassifier(t *testing.T) {
	x, raw := stepData()
	y := make([]float64, len(raw))
	for i, v := range raw {
		if v > 5 {
			y[i] = 1
		}
	}

	g := NewGradientBoostingClassifier(DefaultBoostingConfig())
	if err := g.Fit(context.Background(), x, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pHigh, _ := g.PredictProba([]float64{9, 0})
	pLow, _ := g.PredictProba([]float64{1, 0})
	if pHigh < 0.9 {
		t.Errorf("PredictProba(positive) = %v, want >= 0.9", pHigh)
	}
	if pLow > 0.1 {
		t.Errorf("PredictProba(negative) = %v, want <= 0.1", pLow)
	}
}

func TestGradientBoostingClassifier_SingleClass(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{1, 1, 1}

	g := NewGradientBoostingClassifier(BoostingConfig{})
	if err := g.Fit(context.Background(), x, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	p, err := g.PredictProba([]float64{2})
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	if p < 0.99 || math.IsNaN(p) {
		t.Errorf("PredictProba() = %v, want ~1", p)
	}
	if g.Rounds() != 0 {
		t.Errorf("Rounds() = %d, want 0 for single-class data", g.Rounds())
	}
}

func TestGradientBoostingClassifier_InvalidLabel(t *testing.T) {
	g := NewGradientBoostingClassifier(DefaultBoostingConfig())
	err := g.Fit(context.Background(), [][]float64{{1}, {2}}, []float64{0, 2})
	if err == nil {
		t.Error("Fit() with label 2 expected error")
	}
}

func TestSigmoid(t *testing.T) {
	tests := []struct {
		z    float64
		want float64
	}{
		{0, 0.5},
		{1000, 1},
		{-1000, 0},
	}
	for _, tt := range tests {
		if got := sigmoid(tt.z); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("sigmoid(%v) = %v, want %v", tt.z, got, tt.want)
		}
	}
}
