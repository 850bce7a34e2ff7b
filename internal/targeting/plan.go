// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"fmt"
)

var (
	productPlanStrategies = []string{
		"높은 성공확률 거래처 우선 공략",
		"지역별 순차적 확산",
		"성장률 높은 거래처 집중",
		"유사 고객 레퍼런스 활용",
	}
	groupPlanStrategies = []string{
		"진료과 매칭도 우선 고려",
		"높은 성공확률 거래처 우선 공략",
		"지역별 순차적 확산",
		"성장률 높은 거래처 집중",
		"품목군 내 다품목 크로스셀링",
	}
)

// GenerateSalesPlan phases the top recommendations for a product into
// monthly buckets. It ranks with the models when trained and with the
// group path otherwise. months 0 uses the configured default.
func (s *State) GenerateSalesPlan(ctx context.Context, product string, months int) (*SalesPlan, error) {
	months, err := s.planMonths(months)
	if err != nil {
		return nil, err
	}

	opts := RecommendOptions{TopN: s.config.Plan.Horizon, ExcludeExisting: true}
	recs, mode, err := s.Recommend(ctx, product, opts)
	if err != nil {
		if IsUnknownEntity(err) {
			return emptyPlan(product, mode), err
		}
		return nil, err
	}

	var market *MarketOpportunity
	if mode == ModeModel {
		market, err = s.AnalyzeMarketOpportunity(product)
	} else {
		market, err = s.AnalyzeGroupMarketOpportunity(product)
	}
	if err != nil {
		return nil, err
	}

	strategies := productPlanStrategies
	if mode == ModeGroup {
		strategies = groupPlanStrategies
	}
	return s.buildPlan(product, mode, months, recs, market, strategies), nil
}

// GenerateGroupSalesPlan is GenerateSalesPlan on the group path only.
func (s *State) GenerateGroupSalesPlan(ctx context.Context, group string, months int) (*SalesPlan, error) {
	months, err := s.planMonths(months)
	if err != nil {
		return nil, err
	}

	opts := RecommendOptions{TopN: s.config.Plan.Horizon, ExcludeExisting: true}
	recs, err := s.RecommendTargetsForGroup(ctx, group, opts)
	if err != nil {
		if IsUnknownEntity(err) {
			return emptyPlan(group, ModeGroup), err
		}
		return nil, err
	}
	market, err := s.AnalyzeGroupMarketOpportunity(group)
	if err != nil {
		return nil, err
	}
	return s.buildPlan(group, ModeGroup, months, recs, market, groupPlanStrategies), nil
}

func (s *State) planMonths(months int) (int, error) {
	if months == 0 {
		return s.config.Plan.DefaultMonths, nil
	}
	if months < 1 || months > s.config.Plan.MaxMonths {
		return 0, fmt.Errorf("%w: months must be between 1 and %d, got %d", ErrInvalidArgument, s.config.Plan.MaxMonths, months)
	}
	return months, nil
}

func (s *State) buildPlan(target string, mode RankingMode, months int, recs []Recommendation, market *MarketOpportunity, strategies []string) *SalesPlan {
	if len(recs) > s.config.Plan.Horizon {
		recs = recs[:s.config.Plan.Horizon]
	}

	plan := &SalesPlan{
		Target:        target,
		Mode:          mode,
		PeriodMonths:  months,
		TotalAccounts: len(recs),
		Buckets:       make([]PlanBucket, 0, months),
		Market:        market,
		KeyStrategies: append([]string(nil), strategies...),
	}
	for _, r := range recs {
		plan.ExpectedRevenue += r.PredictedRevenue
	}

	size := s.config.Plan.BucketSize
	for month := 1; month <= months; month++ {
		start := min((month-1)*size, len(recs))
		end := min(month*size, len(recs))
		plan.Buckets = append(plan.Buckets, planBucket(month, recs[start:end]))
	}
	return plan
}

func emptyPlan(target string, mode RankingMode) *SalesPlan {
	return &SalesPlan{Target: target, Mode: mode, Buckets: []PlanBucket{}, KeyStrategies: []string{}}
}

func planBucket(month int, recs []Recommendation) PlanBucket {
	b := PlanBucket{
		Month:        month,
		AccountCount: len(recs),
		Accounts:     make([]string, 0, len(recs)),
		AccountIDs:   make([]string, 0, len(recs)),
	}
	var probability float64
	for _, r := range recs {
		b.ExpectedRevenue += r.PredictedRevenue
		b.Accounts = append(b.Accounts, r.AccountName)
		b.AccountIDs = append(b.AccountIDs, r.AccountID)
		probability += r.SuccessProbability
	}
	if len(recs) > 0 {
		b.SuccessProbability = probability / float64(len(recs))
	}
	return b
}
