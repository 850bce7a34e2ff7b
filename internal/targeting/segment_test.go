// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestClassifySegment(t *testing.T) {
	tests := []struct {
		name                         string
		recency, frequency, monetary float64
		want                         Segment
	}{
		{"champion", 1, 0.6, 0.3, SegmentChampions},
		{"loyal without spend", 1, 0.6, 0.1, SegmentLoyal},
		{"loyal", 1, 0.4, 0, SegmentLoyal},
		{"potential loyalist", 1, 0.1, 0.2, SegmentPotentialLoyalist},
		{"new", 1, 0.1, 0.1, SegmentNew},
		{"at risk", 0.5, 0.4, 0.2, SegmentAtRisk},
		{"cannot lose", 0.5, 0.3, 0.1, SegmentCannotLose},
		{"lost", 0, 0.2, 1, SegmentLost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifySegment(tt.recency, tt.frequency, tt.monetary); got != tt.want {
				t.Errorf("classifySegment(%v, %v, %v) = %v, want %v", tt.recency, tt.frequency, tt.monetary, got, tt.want)
			}
		})
	}
}

func TestSegmentPriority(t *testing.T) {
	tests := []struct {
		segment Segment
		want    int
	}{
		{SegmentChampions, 1},
		{SegmentLoyal, 2},
		{SegmentAtRisk, 2},
		{SegmentPotentialLoyalist, 3},
		{SegmentCannotLose, 3},
		{SegmentNew, 4},
		{SegmentLost, 5},
	}
	for _, tt := range tests {
		if got := tt.segment.Priority(); got != tt.want {
			t.Errorf("%v.Priority() = %d, want %d", tt.segment, got, tt.want)
		}
	}
}

func TestSegments(t *testing.T) {
	s := prepareFixture(t)
	segments, err := s.Segments(context.Background())
	if err != nil {
		t.Fatalf("Segments() error = %v", err)
	}
	if len(segments) != len(fixtureAccounts) {
		t.Fatalf("len(Segments()) = %d, want %d", len(segments), len(fixtureAccounts))
	}

	for i, seg := range segments {
		if seg.AccountID != fixtureAccounts[i].id {
			t.Errorf("segments[%d] = %s, want account order", i, seg.AccountID)
		}
		if seg.RFM < 0 || seg.RFM > 1 {
			t.Errorf("%s RFM = %v out of range", seg.AccountID, seg.RFM)
		}
		if seg.Priority != seg.Segment.Priority() {
			t.Errorf("%s Priority = %d, want %d", seg.AccountID, seg.Priority, seg.Segment.Priority())
		}
	}

	// C001 buys every month with tens of millions in revenue.
	if c := segments[0]; c.Segment != SegmentChampions || c.DaysSinceLast != 0 || c.Frequency != 1 || c.Monetary != 1 {
		t.Errorf("C001 = %+v, want a champion", c)
	}
	// C004 stopped after March: 92 days before the June cutoff.
	c := segments[3]
	if c.DaysSinceLast != 92 || c.Recency != 0.5 || c.Frequency != 0.5 {
		t.Errorf("C004 days = %d, recency = %v, frequency = %v, want 92, 0.5, 0.5", c.DaysSinceLast, c.Recency, c.Frequency)
	}
	if c.Segment != SegmentAtRisk {
		t.Errorf("C004 segment = %v, want At Risk", c.Segment)
	}
	if c.RecentRevenue != 0 || c.GrowthRate != -100 {
		t.Errorf("C004 recent = %v, growth = %v, want 0 and -100", c.RecentRevenue, c.GrowthRate)
	}
}

func TestSegments_Cancelled(t *testing.T) {
	s := prepareFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Segments(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Segments() error = %v, want context.Canceled", err)
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{0, RiskSafe},
		{14, RiskSafe},
		{15, RiskLow},
		{29, RiskLow},
		{30, RiskMedium},
		{49, RiskMedium},
		{50, RiskHigh},
		{85, RiskHigh},
	}
	for _, tt := range tests {
		if got := riskLevel(tt.score); got != tt.want {
			t.Errorf("riskLevel(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestChurnRisk(t *testing.T) {
	tests := []struct {
		name        string
		seg         CustomerSegment
		wantScore   int
		wantFactors []string
	}{
		{
			name:        "healthy",
			seg:         CustomerSegment{DaysSinceLast: 0, GrowthRate: 5, Frequency: 1, ProductCount: 6, TotalRevenue: 1e8},
			wantScore:   0,
			wantFactors: []string{},
		},
		{
			name:        "every factor",
			seg:         CustomerSegment{DaysSinceLast: 120, GrowthRate: -35, Frequency: 0.1, ProductCount: 2, TotalRevenue: 6e6},
			wantScore:   85,
			wantFactors: []string{"최근 구매 없음 (90일 이상)", "매출 급감 (-35.0%)", "활동 빈도 낮음", "품목 집중도 높음"},
		},
		{
			name:        "softer signals",
			seg:         CustomerSegment{DaysSinceLast: 61, GrowthRate: -12.5, Frequency: 0.5, ProductCount: 3, TotalRevenue: 5e6},
			wantScore:   30,
			wantFactors: []string{"구매 간격 증가 (60일 이상)", "매출 감소 (-12.5%)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := churnRisk(&tt.seg)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Level != riskLevel(tt.wantScore) {
				t.Errorf("Level = %v, want %v", got.Level, riskLevel(tt.wantScore))
			}
			if !reflect.DeepEqual(got.Factors, tt.wantFactors) {
				t.Errorf("Factors = %q, want %q", got.Factors, tt.wantFactors)
			}
		})
	}
}

func TestChurnRisks(t *testing.T) {
	s := prepareFixture(t)
	risks, err := s.ChurnRisks(context.Background())
	if err != nil {
		t.Fatalf("ChurnRisks() error = %v", err)
	}

	// Only the accounts that stopped after March are at risk, and they tie.
	want := []string{"C004", "C008", "C012"}
	if len(risks) != len(want) {
		t.Fatalf("ChurnRisks() returned %d, want %d: %+v", len(risks), len(want), risks)
	}
	for i, r := range risks {
		if r.AccountID != want[i] {
			t.Errorf("risks[%d] = %s, want %s", i, r.AccountID, want[i])
		}
		if r.Score != 55 || r.Level != RiskHigh {
			t.Errorf("%s score = %d, level = %v, want 55 high", r.AccountID, r.Score, r.Level)
		}
	}
}

func TestChurnRisks_SortedByScore(t *testing.T) {
	txns := []Transaction{
		// A buys every month and grows.
		tx("A", "G1", "p", 202401, 100), tx("A", "G1", "p", 202402, 100), tx("A", "G1", "p", 202403, 100),
		tx("A", "G1", "p", 202404, 200), tx("A", "G1", "p", 202405, 200), tx("A", "G1", "p", 202406, 200),
		// B buys once at the start.
		tx("B", "G1", "p", 202401, 100),
		// C buys twice, the last time in April.
		tx("C", "G1", "p", 202401, 100), tx("C", "G1", "p", 202404, 10),
	}
	s, err := Prepare(context.Background(), testConfig(), txns)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	risks, err := s.ChurnRisks(context.Background())
	if err != nil {
		t.Fatalf("ChurnRisks() error = %v", err)
	}
	for i := 1; i < len(risks); i++ {
		if risks[i-1].Score < risks[i].Score {
			t.Errorf("risks not sorted: %d before %d", risks[i-1].Score, risks[i].Score)
		}
	}
	for _, r := range risks {
		if r.AccountID == "A" {
			t.Errorf("A is at risk: %+v", r)
		}
		if r.Factors == nil {
			t.Errorf("%s Factors = nil", r.AccountID)
		}
	}
	if len(risks) == 0 || risks[0].AccountID != "B" {
		t.Errorf("risks = %+v, want B first", risks)
	}
}

func TestCrossSellOpportunities(t *testing.T) {
	s := prepareFixture(t)
	out, err := s.CrossSellOpportunities(context.Background())
	if err != nil {
		t.Fatalf("CrossSellOpportunities() error = %v", err)
	}
	if len(out) == 0 {
		t.Fatal("CrossSellOpportunities() returned nothing")
	}

	for _, cs := range out {
		if len(cs.Suggested) == 0 || len(cs.Suggested) > crossSellSuggestions {
			t.Errorf("%s has %d suggestions", cs.AccountID, len(cs.Suggested))
		}
		neighbors := s.matrix.TopKSimilar(cs.AccountID, crossSellNeighbors)
		seen := make(map[string]bool)
		for _, p := range cs.Suggested {
			if seen[p] {
				t.Errorf("%s suggests %s twice", cs.AccountID, p)
			}
			seen[p] = true

			buyers := purchasersOf(s, p)
			if buyers[cs.AccountID] {
				t.Errorf("%s already buys suggested %s", cs.AccountID, p)
			}
			found := false
			for _, n := range neighbors {
				if buyers[n.ID] {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("%s suggestion %s is not bought by any neighbour", cs.AccountID, p)
			}
		}
	}
}

func TestCrossSellOpportunities_Order(t *testing.T) {
	s, err := Prepare(context.Background(), testConfig(), []Transaction{
		tx("A", "G1", "p", 202401, 10),
		tx("B", "G1", "p", 202401, 10),
		tx("B", "G2", "p", 202401, 10),
		tx("C", "G3", "p", 202401, 10),
	})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	out, err := s.CrossSellOpportunities(context.Background())
	if err != nil {
		t.Fatalf("CrossSellOpportunities() error = %v", err)
	}

	// Neighbours are taken by similarity, then product groups in column order.
	want := map[string][]string{
		"A": {"G2", "G3"},
		"B": {"G3"},
		"C": {"G1", "G2"},
	}
	if len(out) != len(want) {
		t.Fatalf("CrossSellOpportunities() returned %d, want %d", len(out), len(want))
	}
	for _, cs := range out {
		if !reflect.DeepEqual(cs.Suggested, want[cs.AccountID]) {
			t.Errorf("%s Suggested = %v, want %v", cs.AccountID, cs.Suggested, want[cs.AccountID])
		}
	}
}
