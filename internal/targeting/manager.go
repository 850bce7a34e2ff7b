// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"errors"
)

// Manager report limits.
const (
	ManagerProductLimit = 10
	ManagerTopN         = 5
)

// GroupRecommendations is the ranked result for one product group.
type GroupRecommendations struct {
	ProductGroup    string           `json:"product_group"`
	Mode            RankingMode      `json:"mode"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ManagerRecommendations bundles target accounts across a manager's
// product groups.
type ManagerRecommendations struct {
	Manager       string                 `json:"manager"`
	TotalProducts int                    `json:"total_products"`
	Products      []GroupRecommendations `json:"products"`
	// Skipped lists groups whose ranking failed.
	Skipped []string `json:"skipped,omitempty"`
}

// ManagerProductGroups returns the product groups the manager's accounts
// buy, in product order.
func (s *State) ManagerProductGroups(manager string) []string {
	bought := make([]bool, len(s.ds.products))
	for a := range s.customers {
		if s.customers[a].Manager != manager {
			continue
		}
		for p := range bought {
			if !bought[p] && s.purchased(a, p) {
				bought[p] = true
			}
		}
	}
	out := make([]string, 0)
	for p, ok := range bought {
		if ok {
			out = append(out, s.ds.products[p])
		}
	}
	return out
}

// RecommendForManager ranks the manager's own accounts for each of the first
// ManagerProductLimit product groups they sell, ManagerTopN per group, with
// the models when trained. Groups with no result are left out and groups
// whose ranking fails are listed in Skipped; cancellation aborts the run.
func (s *State) RecommendForManager(ctx context.Context, manager string) (*ManagerRecommendations, error) {
	groups := s.ManagerProductGroups(manager)
	if len(groups) == 0 {
		return &ManagerRecommendations{Manager: manager, Products: []GroupRecommendations{}},
			&UnknownEntityError{Kind: "manager", Name: manager}
	}
	if len(groups) > ManagerProductLimit {
		groups = groups[:ManagerProductLimit]
	}

	opts := RecommendOptions{TopN: ManagerTopN, ExcludeExisting: true, Manager: manager}
	out := &ManagerRecommendations{Manager: manager, Products: make([]GroupRecommendations, 0, len(groups))}
	for _, g := range groups {
		recs, mode, err := s.Recommend(ctx, g, opts)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			out.Skipped = append(out.Skipped, g)
			continue
		}
		if len(recs) == 0 {
			continue
		}
		out.Products = append(out.Products, GroupRecommendations{ProductGroup: g, Mode: mode, Recommendations: recs})
	}
	out.TotalProducts = len(out.Products)
	return out, nil
}
