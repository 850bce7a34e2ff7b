// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"math"
)

// RecommendTargetsForGroup ranks accounts for a product group without the
// trained models. Similarity is the mean cosine between the account's
// profile vector and those of the group's other purchasers.
func (s *State) RecommendTargetsForGroup(ctx context.Context, group string, opts RecommendOptions) ([]Recommendation, error) {
	p, ok := s.ds.productIndex[group]
	if !ok {
		return []Recommendation{}, &UnknownEntityError{Kind: "product group", Name: group}
	}

	prod := &s.products[p]
	gc := s.config.Group

	purchasers := make([]int, 0, prod.AccountCount)
	for a := range s.customers {
		if s.purchased(a, p) {
			purchasers = append(purchasers, a)
		}
	}
	vectors := make([][]float64, len(s.customers))
	for a := range s.customers {
		vectors[a] = groupVector(&s.customers[a])
	}

	candidates := s.candidates(p, opts)
	scored := make([]scoredAccount, len(candidates))

	err := parallelFor(ctx, len(candidates), s.config.Workers, func(i int) error {
		a := candidates[i]
		c := &s.customers[a]

		similarity := gc.NoPeerSimilarity
		var sum float64
		peers := 0
		for _, other := range purchasers {
			if other == a {
				continue
			}
			sum += cosine(vectors[a], vectors[other])
			peers++
		}
		if peers > 0 {
			similarity = sum / float64(peers)
		}

		specialty := SpecialtyMatchScore(prod.Category, c.Specialty)
		probability := clampFloat(
			similarity*gc.SimilarityWeight+specialty*gc.SpecialtyWeight+c.GrowthRate/100*gc.GrowthWeight,
			gc.MinProbability, gc.MaxProbability,
		)
		expected := math.Floor(prod.MeanRowRevenue * probability * (c.SizeTier.Code() + 1) / 2)
		composite := specialty*gc.SortSpecialtyWeight + probability*gc.SortProbabilityWeight

		scored[i] = scoredAccount{
			order: a,
			rec:   s.recommendation(c, expected, probability, similarity, specialty, composite),
		}
		return nil
	})
	if err != nil {
		return []Recommendation{}, err
	}

	return rank(scored, s.resolveTopN(opts.TopN)), nil
}

// groupVector is the account vector of the group path:
// revenue, product count, growth, recent activity and size tier code.
func groupVector(c *CustomerProfile) []float64 {
	recent := 0.0
	if c.RecentlyActive {
		recent = 1
	}
	return []float64{c.TotalRevenue, float64(c.ProductCount), c.GrowthRate, recent, c.SizeTier.Code()}
}

// Recommend ranks with the trained models when they exist and with the
// group path otherwise. The returned mode records which path ran.
func (s *State) Recommend(ctx context.Context, product string, opts RecommendOptions) ([]Recommendation, RankingMode, error) {
	if s.models != nil {
		recs, err := s.RecommendTargets(ctx, product, opts)
		return recs, ModeModel, err
	}
	recs, err := s.RecommendTargetsForGroup(ctx, product, opts)
	return recs, ModeGroup, err
}
