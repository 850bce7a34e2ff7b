// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/tomtom215/salesradar/internal/targeting/learn"
)

// featureCount is the width of the model feature vector.
const featureCount = 10

// featureVector joins a customer and a product profile. The order is fixed;
// both models are trained and queried with it.
func featureVector(c *CustomerProfile, p *ProductProfile, regionalDemand float64) []float64 {
	multiCategory := 0.0
	if c.CategoryCount > 1 {
		multiCategory = 1
	}
	return []float64{
		c.TotalRevenue,
		c.GrowthRate,
		float64(c.ProductCount),
		c.SizeTier.Code(),
		p.Penetration,
		p.GrowthRate,
		p.AvgPrice,
		float64(p.Competition),
		multiCategory,
		regionalDemand,
	}
}

// Models holds the trained revenue and success models. It is immutable.
type Models struct {
	Revenue   *learn.RandomForestRegressor
	Success   *learn.GradientBoostingClassifier
	Samples   int
	Negatives int
	TrainedAt time.Time
}

// predict returns the predicted revenue and success probability for one pair.
func (m *Models) predict(x []float64) (revenue, probability float64, err error) {
	if revenue, err = m.Revenue.Predict(x); err != nil {
		return 0, 0, fmt.Errorf("predict revenue: %w", err)
	}
	if probability, err = m.Success.PredictProba(x); err != nil {
		return 0, 0, fmt.Errorf("predict success: %w", err)
	}
	return revenue, probability, nil
}

// trainingSet is the assembled model input.
type trainingSet struct {
	x        [][]float64
	revenue  []float64
	observed int

	// success covers the observed rows followed by the negative rows.
	successX [][]float64
	successY []float64
}

// buildTrainingSet joins profiles for every observed (account, product) pair
// in account-then-product order and appends seeded negative samples. The
// revenue target of a pair is its mean transaction revenue, so predictions
// stay on the scale of a single transaction however many periods a pair spans.
func buildTrainingSet(ctx context.Context, s *State) (*trainingSet, error) {
	ds := s.ds
	nP := len(ds.products)

	pairRevenue := make(map[int]float64)
	pairTxns := make(map[int]int)
	order := make([]int, 0)
	for a, rows := range ds.accountRows {
		for _, r := range rows {
			cell := a*nP + ds.productIndex[ds.txns[r].ProductGroup]
			if _, ok := pairRevenue[cell]; !ok {
				order = append(order, cell)
			}
			pairRevenue[cell] += ds.txns[r].Revenue
			pairTxns[cell]++
		}
	}

	// Order observed cells by account, then product column.
	sort.Ints(order)

	if len(order) < s.config.Training.MinSamples {
		return nil, &InsufficientDataError{Samples: len(order), Required: s.config.Training.MinSamples}
	}

	ts := &trainingSet{
		x:        make([][]float64, 0, len(order)),
		revenue:  make([]float64, 0, len(order)),
		observed: len(order),
	}
	for _, cell := range order {
		a, p := cell/nP, cell%nP
		x := s.pairFeatures(a, p)
		ts.x = append(ts.x, x)
		ts.revenue = append(ts.revenue, pairRevenue[cell]/float64(pairTxns[cell]))
	}

	negatives, err := sampleNegatives(ctx, pairRevenue, len(ds.accounts)*nP, s.config.Training.NegativeRatio, s.config.Seed)
	if err != nil {
		return nil, err
	}

	ts.successX = make([][]float64, 0, len(ts.x)+len(negatives))
	ts.successY = make([]float64, 0, len(ts.x)+len(negatives))
	ts.successX = append(ts.successX, ts.x...)
	for range ts.x {
		ts.successY = append(ts.successY, 1)
	}
	for _, cell := range negatives {
		ts.successX = append(ts.successX, s.pairFeatures(cell/nP, cell%nP))
		ts.successY = append(ts.successY, 0)
	}
	return ts, nil
}

// sampleNegatives draws unobserved cells with a seeded source. The result
// depends only on the observed set, the cell count, the ratio and the seed.
func sampleNegatives(ctx context.Context, observed map[int]float64, cells int, ratio float64, seed int64) ([]int, error) {
	unobserved := cells - len(observed)
	want := int(math.Round(float64(len(observed)) * ratio))
	if want <= 0 || unobserved <= 0 {
		return nil, nil
	}

	// Few free cells: take them all in cell order.
	if want >= unobserved {
		out := make([]int, 0, unobserved)
		for cell := 0; cell < cells; cell++ {
			if _, ok := observed[cell]; !ok {
				out = append(out, cell)
			}
		}
		return out, nil
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic sampling, not security
	picked := make(map[int]struct{}, want)
	out := make([]int, 0, want)
	for attempts := 0; len(out) < want; attempts++ {
		if attempts%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		cell := rng.Intn(cells)
		if _, ok := observed[cell]; ok {
			continue
		}
		if _, ok := picked[cell]; ok {
			continue
		}
		picked[cell] = struct{}{}
		out = append(out, cell)
	}
	return out, nil
}

// trainModels fits both models on the state's training set.
func trainModels(ctx context.Context, s *State) (*Models, error) {
	ts, err := buildTrainingSet(ctx, s)
	if err != nil {
		return nil, err
	}

	forestCfg := s.config.Forest
	if forestCfg.Workers == 0 {
		forestCfg.Workers = s.config.Workers
	}
	revenue := learn.NewRandomForestRegressor(forestCfg)
	if err := revenue.Fit(ctx, ts.x, ts.revenue); err != nil {
		return nil, fmt.Errorf("train revenue model: %w", err)
	}

	success := learn.NewGradientBoostingClassifier(s.config.Boosting)
	if err := success.Fit(ctx, ts.successX, ts.successY); err != nil {
		return nil, fmt.Errorf("train success model: %w", err)
	}

	return &Models{
		Revenue:   revenue,
		Success:   success,
		Samples:   ts.observed,
		Negatives: len(ts.successY) - ts.observed,
		TrainedAt: time.Now(),
	}, nil
}
