// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Sales playbook thresholds.
const (
	highGrowthRate      = 20.0
	highGrowthProducts  = 5
	crossSellHighlights = 10
	planActionsPerItem  = 2
	priorityUrgent      = 1
	prioritySecondary   = 2
)

// Recommendation kinds of the sales playbook.
const (
	KindSegmentStrategy = "세그먼트별 전략"
	KindGrowthProducts  = "성장 품목 집중"
	KindCrossSell       = "교차판매 기회"
	KindChurnRisk       = "위험 고객 관리"
)

// ProductSummary is the portfolio view of one product group.
type ProductSummary struct {
	Product       string  `json:"product"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalQuantity float64 `json:"total_quantity"`
	AccountCount  int     `json:"account_count"`
	AvgPrice      float64 `json:"avg_price"`
	RecentRevenue float64 `json:"recent_revenue"`
	PriorRevenue  float64 `json:"prior_revenue"`
	GrowthRate    float64 `json:"growth_rate"`
	Seasonality   float64 `json:"seasonality"`
	// MarketShare is the percentage of all revenue.
	MarketShare float64 `json:"market_share"`
}

// SalesAction is one entry of the sales playbook.
type SalesAction struct {
	Kind           string   `json:"kind"`
	Target         string   `json:"target"`
	Strategy       string   `json:"strategy"`
	Actions        []string `json:"actions"`
	Priority       int      `json:"priority"`
	ExpectedImpact string   `json:"expected_impact"`
	Accounts       int      `json:"accounts"`
	Revenue        float64  `json:"revenue"`
}

// ActionItem is a playbook entry condensed for a monthly plan.
type ActionItem struct {
	Title          string   `json:"title"`
	Target         string   `json:"target"`
	Actions        []string `json:"actions"`
	ExpectedImpact string   `json:"expected_impact"`
}

// ActionPlan groups the playbook by urgency for one month.
type ActionPlan struct {
	Month     Period       `json:"month"`
	Goals     []string     `json:"goals"`
	Urgent    []ActionItem `json:"urgent"`
	Secondary []ActionItem `json:"secondary"`
	LongTerm  []ActionItem `json:"long_term"`
}

var wonPrinter = message.NewPrinter(language.Korean)

type segmentPlay struct {
	strategy string
	actions  []string
}

var segmentPlaybook = map[Segment]segmentPlay{
	SegmentChampions:         {"VIP 관리 강화", []string{"전담 서비스 제공", "신제품 우선 소개", "특별 할인 혜택", "정기 방문 일정 수립"}},
	SegmentLoyal:             {"관계 심화", []string{"교차판매 기회 탐색", "로열티 프로그램 참여", "정기 소통 강화", "맞춤 솔루션 제안"}},
	SegmentPotentialLoyalist: {"충성도 향상", []string{"추가 구매 유도", "서비스 품질 개선", "맞춤 상품 추천", "피드백 수집"}},
	SegmentNew:               {"관계 구축", []string{"온보딩 프로그램 실행", "제품 교육 제공", "초기 할인 혜택", "정기 체크인"}},
	SegmentAtRisk:            {"재활성화", []string{"즉시 연락", "문제점 파악", "맞춤 솔루션 제공", "특별 오퍼 제안"}},
	SegmentCannotLose:        {"관계 회복", []string{"고위급 미팅", "서비스 재검토", "맞춤 혜택 제공", "장기 계약 논의"}},
	SegmentLost:              {"재유치", []string{"win-back 캠페인", "경쟁사 분석", "가격 재검토", "새로운 가치 제안"}},
}

// ProductSummaries returns every product group ordered by revenue, highest
// first. Equal revenue keeps product order. Recent and prior revenue cover
// the last three dataset periods and the three before them.
func (s *State) ProductSummaries() []ProductSummary {
	out := make([]ProductSummary, len(s.products))
	for i := range s.products {
		p := &s.products[i]
		byPeriod := make(map[Period]float64)
		for _, r := range s.ds.productRows[i] {
			t := &s.ds.txns[r]
			byPeriod[t.Period] += t.Revenue
		}
		growth, recent, prior := trailingGrowth(s.ds.periods, byPeriod)
		out[i] = ProductSummary{
			Product:       p.Product,
			TotalRevenue:  p.TotalRevenue,
			TotalQuantity: p.TotalQuantity,
			AccountCount:  p.AccountCount,
			AvgPrice:      p.AvgPrice,
			RecentRevenue: recent,
			PriorRevenue:  prior,
			GrowthRate:    growth,
			Seasonality:   p.Seasonality,
			MarketShare:   p.MarketShare * 100,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalRevenue > out[j].TotalRevenue })
	return out
}

// SalesRecommendations builds the sales playbook: one strategy per populated
// segment, then high-growth products, cross-sell leaders and churn defence.
// Entries are ordered by priority; equal priorities keep that build order.
func (s *State) SalesRecommendations(ctx context.Context) ([]SalesAction, error) {
	segments, err := s.Segments(ctx)
	if err != nil {
		return nil, err
	}
	out := segmentActions(segments)

	if a := growthAction(s.ProductSummaries()); a != nil {
		out = append(out, *a)
	}

	cross, err := s.CrossSellOpportunities(ctx)
	if err != nil {
		return nil, err
	}
	if a := crossSellAction(cross); a != nil {
		out = append(out, *a)
	}

	risks, err := s.ChurnRisks(ctx)
	if err != nil {
		return nil, err
	}
	if a := churnAction(risks); a != nil {
		out = append(out, *a)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func segmentActions(segments []CustomerSegment) []SalesAction {
	counts := make(map[Segment]int)
	revenue := make(map[Segment]float64)
	for i := range segments {
		counts[segments[i].Segment]++
		revenue[segments[i].Segment] += segments[i].TotalRevenue
	}

	out := make([]SalesAction, 0, len(segmentPlaybook)+3)
	for seg := SegmentChampions; seg <= SegmentLost; seg++ {
		n := counts[seg]
		if n == 0 {
			continue
		}
		play := segmentPlaybook[seg]
		out = append(out, SalesAction{
			Kind:           KindSegmentStrategy,
			Target:         fmt.Sprintf("%s (%d개 거래처)", seg, n),
			Strategy:       play.strategy,
			Actions:        append([]string(nil), play.actions...),
			Priority:       seg.Priority(),
			ExpectedImpact: fmt.Sprintf("매출 %s원 영향", formatWon(revenue[seg])),
			Accounts:       n,
			Revenue:        revenue[seg],
		})
	}
	return out
}

// growthAction takes up to five products growing over 20%, in revenue order.
func growthAction(summaries []ProductSummary) *SalesAction {
	var rates []float64
	var revenue float64
	for i := range summaries {
		if summaries[i].GrowthRate > highGrowthRate && len(rates) < highGrowthProducts {
			rates = append(rates, summaries[i].GrowthRate)
			revenue += summaries[i].TotalRevenue
		}
	}
	if len(rates) == 0 {
		return nil
	}
	return &SalesAction{
		Kind:           KindGrowthProducts,
		Target:         fmt.Sprintf("%d개 고성장 품목", len(rates)),
		Strategy:       "성장 모멘텀 활용",
		Actions:        []string{"고성장 품목 재고 확보", "관련 고객 우선 방문", "경쟁사 대비 우위점 강조", "번들 상품 제안"},
		Priority:       priorityUrgent,
		ExpectedImpact: fmt.Sprintf("성장률 평균 %.1f%%", mean(rates)),
		Revenue:        revenue,
	}
}

// crossSellAction highlights the ten accounts with the most suggestions.
func crossSellAction(cross []CrossSell) *SalesAction {
	if len(cross) == 0 {
		return nil
	}
	ranked := append([]CrossSell(nil), cross...)
	sort.SliceStable(ranked, func(i, j int) bool { return len(ranked[i].Suggested) > len(ranked[j].Suggested) })
	if len(ranked) > crossSellHighlights {
		ranked = ranked[:crossSellHighlights]
	}
	counts := make([]float64, len(ranked))
	for i := range ranked {
		counts[i] = float64(len(ranked[i].Suggested))
	}
	return &SalesAction{
		Kind:           KindCrossSell,
		Target:         fmt.Sprintf("%d개 우수 거래처", len(ranked)),
		Strategy:       "품목 다각화",
		Actions:        []string{"유사 고객 성공사례 공유", "번들 할인 제안", "샘플 제품 제공", "단계적 도입 계획 수립"},
		Priority:       prioritySecondary,
		ExpectedImpact: fmt.Sprintf("평균 %.1f개 품목 확장 가능", mean(counts)),
		Accounts:       len(ranked),
	}
}

// churnAction covers accounts at RiskMedium or above.
func churnAction(risks []ChurnRisk) *SalesAction {
	n := 0
	var revenue float64
	for i := range risks {
		if risks[i].Level >= RiskMedium {
			n++
			revenue += risks[i].TotalRevenue
		}
	}
	if n == 0 {
		return nil
	}
	return &SalesAction{
		Kind:           KindChurnRisk,
		Target:         fmt.Sprintf("%d개 위험 거래처", n),
		Strategy:       "이탈 방지",
		Actions:        []string{"즉시 고객 접촉", "불만사항 청취", "맞춤 솔루션 제안", "관계 복원 노력"},
		Priority:       priorityUrgent,
		ExpectedImpact: fmt.Sprintf("매출 %s원 보호", formatWon(revenue)),
		Accounts:       n,
		Revenue:        revenue,
	}
}

// MonthlyActionPlan condenses the playbook into urgent, secondary and
// long-term items for month. A zero month plans for the period after the
// latest one in the dataset.
func (s *State) MonthlyActionPlan(ctx context.Context, month Period) (*ActionPlan, error) {
	if month == 0 {
		month = s.ds.periods[len(s.ds.periods)-1].Next()
	}
	actions, err := s.SalesRecommendations(ctx)
	if err != nil {
		return nil, err
	}
	segments, err := s.Segments(ctx)
	if err != nil {
		return nil, err
	}

	plan := &ActionPlan{
		Month:     month,
		Urgent:    make([]ActionItem, 0),
		Secondary: make([]ActionItem, 0),
		LongTerm:  make([]ActionItem, 0),
	}
	for i := range actions {
		a := &actions[i]
		item := ActionItem{
			Title:          a.Kind,
			Target:         a.Target,
			Actions:        append([]string(nil), a.Actions[:min(planActionsPerItem, len(a.Actions))]...),
			ExpectedImpact: a.ExpectedImpact,
		}
		switch a.Priority {
		case priorityUrgent:
			plan.Urgent = append(plan.Urgent, item)
		case prioritySecondary:
			plan.Secondary = append(plan.Secondary, item)
		default:
			plan.LongTerm = append(plan.LongTerm, item)
		}
	}

	var atStake float64
	for i := range segments {
		if segments[i].Priority <= prioritySecondary {
			atStake += segments[i].TotalRevenue
		}
	}
	plan.Goals = []string{
		fmt.Sprintf("위험 고객 이탈 방지 (매출 영향: %s원)", formatWon(atStake)),
		"교차판매를 통한 거래당 평균 매출 10% 증대",
		"신규 고객 관계 구축 및 재구매율 향상",
		"성장 품목 집중 공략으로 전체 성장률 개선",
	}
	return plan, nil
}

// formatWon renders an amount rounded to whole won with thousands separators.
func formatWon(v float64) string {
	return wonPrinter.Sprintf("%.0f", v)
}
