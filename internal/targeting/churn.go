// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"fmt"
	"sort"
)

// ChurnRisks scores every account for churn and returns those at RiskLow
// or above, highest score first. Equal scores keep account order.
func (s *State) ChurnRisks(ctx context.Context) ([]ChurnRisk, error) {
	segments, err := s.Segments(ctx)
	if err != nil {
		return nil, err
	}

	risks := make([]ChurnRisk, 0)
	for i := range segments {
		if r := churnRisk(&segments[i]); r.Level != RiskSafe {
			risks = append(risks, r)
		}
	}
	sort.SliceStable(risks, func(i, j int) bool { return risks[i].Score > risks[j].Score })
	return risks, nil
}

func churnRisk(seg *CustomerSegment) ChurnRisk {
	score := 0
	factors := make([]string, 0, 4)

	switch {
	case seg.DaysSinceLast > 90:
		score += 30
		factors = append(factors, "최근 구매 없음 (90일 이상)")
	case seg.DaysSinceLast > 60:
		score += 15
		factors = append(factors, "구매 간격 증가 (60일 이상)")
	}

	switch {
	case seg.GrowthRate < -20:
		score += 25
		factors = append(factors, fmt.Sprintf("매출 급감 (%.1f%%)", seg.GrowthRate))
	case seg.GrowthRate < -10:
		score += 15
		factors = append(factors, fmt.Sprintf("매출 감소 (%.1f%%)", seg.GrowthRate))
	}

	if seg.Frequency < 0.3 {
		score += 20
		factors = append(factors, "활동 빈도 낮음")
	}
	if seg.ProductCount <= 3 && seg.TotalRevenue > 5_000_000 {
		score += 10
		factors = append(factors, "품목 집중도 높음")
	}

	return ChurnRisk{
		AccountID:     seg.AccountID,
		AccountName:   seg.AccountName,
		Manager:       seg.Manager,
		Score:         score,
		Level:         riskLevel(score),
		Factors:       factors,
		TotalRevenue:  seg.TotalRevenue,
		RecentRevenue: seg.RecentRevenue,
		GrowthRate:    seg.GrowthRate,
	}
}

func riskLevel(score int) RiskLevel {
	switch {
	case score >= 50:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	case score >= 15:
		return RiskLow
	default:
		return RiskSafe
	}
}
