// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import "context"

const (
	crossSellNeighbors   = 5
	crossSellSuggestions = 5
)

// CrossSellOpportunities suggests, per account, product groups its most
// similar accounts buy and it does not. Accounts without a suggestion are
// omitted.
func (s *State) CrossSellOpportunities(ctx context.Context) ([]CrossSell, error) {
	slots := make([]*CrossSell, len(s.customers))
	err := parallelFor(ctx, len(s.customers), s.config.Workers, func(a int) error {
		slots[a] = s.crossSell(a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]CrossSell, 0)
	for _, cs := range slots {
		if cs != nil {
			out = append(out, *cs)
		}
	}
	return out, nil
}

func (s *State) crossSell(a int) *CrossSell {
	nP := len(s.ds.products)
	seen := make(map[int]struct{})
	suggested := make([]string, 0, crossSellSuggestions)

	for _, n := range topK(s.matrix.accountSim, s.matrix.accounts, a, crossSellNeighbors) {
		for p := 0; p < nP && len(suggested) < crossSellSuggestions; p++ {
			if !s.purchased(n.Index, p) || s.purchased(a, p) {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			suggested = append(suggested, s.ds.products[p])
		}
	}
	if len(suggested) == 0 {
		return nil
	}

	c := &s.customers[a]
	return &CrossSell{
		AccountID:    c.AccountID,
		AccountName:  c.AccountName,
		ProductCount: c.ProductCount,
		Suggested:    suggested,
	}
}
