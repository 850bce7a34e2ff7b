// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import "math"

// Strategy thresholds.
const (
	expansionThreshold   = 10
	momentumThreshold    = 15.0
	firstMoverThreshold  = 5
	premiumThreshold     = 1.2
	portfolioThreshold   = 3
	groupGrowthMinPeriod = 6
)

// AnalyzeMarketOpportunity estimates untapped accounts for a product group
// from the mean penetration of products in the same category.
func (s *State) AnalyzeMarketOpportunity(product string) (*MarketOpportunity, error) {
	p, ok := s.ds.productIndex[product]
	if !ok {
		return &MarketOpportunity{Product: product, Strategies: []string{}}, &UnknownEntityError{Kind: "product", Name: product}
	}
	prod := &s.products[p]

	var penetrations []float64
	for i := range s.products {
		if s.products[i].Category == prod.Category {
			penetrations = append(penetrations, s.products[i].Penetration)
		}
	}

	m := s.opportunity(prod, mean(penetrations))
	m.MarketGrowthRate = prod.GrowthRate
	m.Strategies = productStrategies(prod, m.GrowthPotential)
	return m, nil
}

// AnalyzeGroupMarketOpportunity is the group-path analysis. Average
// penetration counts, per product group, the accounts buying rows of the
// group's category; growth compares the last three periods with the three
// before them.
func (s *State) AnalyzeGroupMarketOpportunity(group string) (*MarketOpportunity, error) {
	p, ok := s.ds.productIndex[group]
	if !ok {
		return &MarketOpportunity{Product: group, Strategies: []string{}}, &UnknownEntityError{Kind: "product group", Name: group}
	}
	prod := &s.products[p]

	m := s.opportunity(prod, s.categoryPenetration(prod.Category))
	m.ProductCount = prod.ProductNames

	byPeriod := make(map[Period]float64)
	for _, r := range s.ds.productRows[p] {
		t := &s.ds.txns[r]
		byPeriod[t.Period] += t.Revenue
	}
	if periods := sortedPeriods(byPeriod); len(periods) >= groupGrowthMinPeriod {
		m.MarketGrowthRate, _, _ = trailingGrowth(periods, byPeriod)
	}

	m.Strategies = groupStrategies(prod.Category, m.GrowthPotential, m.ProductCount)
	return m, nil
}

// opportunity fills the fields shared by both analyses.
func (s *State) opportunity(prod *ProductProfile, avgPenetration float64) *MarketOpportunity {
	total := len(s.customers)
	current := prod.AccountCount

	potential := max(int(math.Floor(float64(total)*avgPenetration)), current)
	growth := max(0, potential-current)

	return &MarketOpportunity{
		Product:            prod.Product,
		Category:           prod.Category,
		CurrentAccounts:    current,
		TotalAccounts:      total,
		CurrentPenetration: ratio(float64(current), float64(total)),
		TargetPenetration:  avgPenetration,
		PotentialAccounts:  potential,
		GrowthPotential:    growth,
		CurrentRevenue:     prod.TotalRevenue,
		IncrementalRevenue: math.Floor(float64(growth) * prod.MeanRowRevenue),
		Competition:        prod.Competition,
	}
}

// categoryPenetration is the mean, over product groups with rows in the
// category, of distinct buying accounts divided by all accounts.
func (s *State) categoryPenetration(category string) float64 {
	buyers := make(map[string]map[string]struct{})
	for r := range s.ds.txns {
		if s.ds.categories[r] != category {
			continue
		}
		t := &s.ds.txns[r]
		set, ok := buyers[t.ProductGroup]
		if !ok {
			set = make(map[string]struct{})
			buyers[t.ProductGroup] = set
		}
		set[t.AccountID] = struct{}{}
	}
	if len(buyers) == 0 {
		return 0
	}
	var sum float64
	for _, set := range buyers {
		sum += float64(len(set))
	}
	return sum / float64(len(buyers)) / float64(len(s.customers))
}

func productStrategies(prod *ProductProfile, growthPotential int) []string {
	strategies := make([]string, 0, 4)
	if growthPotential > expansionThreshold {
		strategies = append(strategies, "적극적 신규 개발")
	}
	if prod.GrowthRate > momentumThreshold {
		strategies = append(strategies, "성장 모멘텀 활용")
	}
	if prod.Competition < firstMoverThreshold {
		strategies = append(strategies, "선점 기회 활용")
	}
	if prod.PricePositioning > premiumThreshold {
		strategies = append(strategies, "프리미엄 포지셔닝")
	} else {
		strategies = append(strategies, "가격 경쟁력 강화")
	}
	return strategies
}

func groupStrategies(category string, growthPotential, productCount int) []string {
	strategies := make([]string, 0, 4)
	if growthPotential > expansionThreshold {
		strategies = append(strategies, "적극적 신규 개발")
	}
	if productCount > portfolioThreshold {
		strategies = append(strategies, "다품목 포트폴리오 활용")
	}
	switch category {
	case CategoryHypertension, CategoryDyslipidemia:
		strategies = append(strategies, "내과/가정의학과 중점 공략")
	case CategoryOrthopedics:
		strategies = append(strategies, "정형외과 전문병원 집중")
	case CategoryOphthalmology, CategoryENT, CategoryDermatology:
		strategies = append(strategies, "전문과 타겟팅")
	default:
		strategies = append(strategies, "일반의원 대상 확산")
	}
	return append(strategies, "진료과 매칭도 우선 고려")
}
