// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"sort"
)

// scoredAccount is an intermediate ranking row; order is the account index.
type scoredAccount struct {
	order int
	rec   Recommendation
}

// RecommendTargets ranks accounts for a product group with the trained
// models. Unknown products yield an empty slice and an UnknownEntityError.
func (s *State) RecommendTargets(ctx context.Context, product string, opts RecommendOptions) ([]Recommendation, error) {
	if s.models == nil {
		return []Recommendation{}, ErrModelsNotTrained
	}
	p, ok := s.ds.productIndex[product]
	if !ok {
		return []Recommendation{}, &UnknownEntityError{Kind: "product", Name: product}
	}

	prod := &s.products[p]
	candidates := s.candidates(p, opts)
	scored := make([]scoredAccount, len(candidates))

	err := parallelFor(ctx, len(candidates), s.config.Workers, func(i int) error {
		a := candidates[i]
		c := &s.customers[a]

		revenue, probability, err := s.models.predict(s.pairFeatures(a, p))
		if err != nil {
			return err
		}
		similarity := s.neighborScore(a, p)
		specialty := SpecialtyMatchScore(prod.Category, c.Specialty)

		scored[i] = scoredAccount{
			order: a,
			rec:   s.recommendation(c, revenue, probability, similarity, specialty, s.composite(revenue, probability, similarity, specialty)),
		}
		return nil
	})
	if err != nil {
		return []Recommendation{}, err
	}

	return rank(scored, s.resolveTopN(opts.TopN)), nil
}

// composite is the weighted score of the model path. The probability and
// specialty terms are scaled into revenue-comparable units.
func (s *State) composite(revenue, probability, similarity, specialty float64) float64 {
	w, sc := s.config.Weights, s.config.Scales
	return revenue*w.Revenue +
		probability*sc.Probability*w.Probability +
		similarity*w.Similarity +
		specialty*sc.Specialty*w.Specialty
}

// neighborScore averages sim(a, n) x cell(n, p) over the nearest accounts.
func (s *State) neighborScore(a, p int) float64 {
	neighbors := topK(s.matrix.accountSim, s.matrix.accounts, a, s.config.NeighborCount)
	if len(neighbors) == 0 {
		return 0
	}
	var sum float64
	for _, n := range neighbors {
		sum += n.Similarity * s.matrix.valueAt(n.Index, p)
	}
	return sum / float64(len(neighbors))
}

// candidates returns account indexes eligible for product p, in account order.
func (s *State) candidates(p int, opts RecommendOptions) []int {
	out := make([]int, 0, len(s.customers))
	for a := range s.customers {
		if opts.ExcludeExisting && s.purchased(a, p) {
			continue
		}
		if opts.Manager != "" && s.customers[a].Manager != opts.Manager {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *State) recommendation(c *CustomerProfile, revenue, probability, similarity, specialty, composite float64) Recommendation {
	return Recommendation{
		AccountID:           c.AccountID,
		AccountName:         c.AccountName,
		Region:              c.Region,
		Manager:             c.Manager,
		PredictedRevenue:    revenue,
		SuccessProbability:  probability,
		SimilarityScore:     similarity,
		SpecialtyMatchScore: specialty,
		CompositeScore:      composite,
		ReasonTags:          reasonTags(c, probability, specialty),
		SizeTier:            c.SizeTier,
		Facility:            c.Facility,
		Specialty:           c.Specialty,
		ProductCount:        c.ProductCount,
		GrowthRate:          c.GrowthRate,
	}
}

// rank sorts by composite score descending, ties by account order, and
// returns at most n recommendations.
func rank(scored []scoredAccount, n int) []Recommendation {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].rec.CompositeScore != scored[j].rec.CompositeScore {
			return scored[i].rec.CompositeScore > scored[j].rec.CompositeScore
		}
		return scored[i].order < scored[j].order
	})
	if n < len(scored) {
		scored = scored[:n]
	}
	out := make([]Recommendation, len(scored))
	for i := range scored {
		out[i] = scored[i].rec
	}
	return out
}

// Reason tag thresholds.
const (
	highProbability = 0.7
	highGrowth      = 10.0
	manyProducts    = 5
)

func reasonTags(c *CustomerProfile, probability, specialty float64) []string {
	tags := make([]string, 0, 4)
	if tag := specialtyTag(specialty); tag != "" {
		tags = append(tags, tag)
	}
	if probability > highProbability {
		tags = append(tags, "높은 성공 확률")
	}
	if c.GrowthRate > highGrowth {
		tags = append(tags, "고성장 거래처")
	}
	if c.ProductCount > manyProducts {
		tags = append(tags, "다품목 취급")
	}
	if c.SizeTier == TierLarge || c.SizeTier == TierMedium {
		tags = append(tags, "중대형 거래처")
	}
	if c.RecentlyActive {
		tags = append(tags, "최근 활발한 거래")
	}
	if len(tags) == 0 {
		tags = append(tags, "표준 추천")
	}
	return tags
}
