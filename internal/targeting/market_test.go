// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"reflect"
	"slices"
	"testing"
)

func TestAnalyzeMarketOpportunity_NoCompetition(t *testing.T) {
	s := prepareFixture(t)

	// 레보투스 is the only 일반내과 product in the fixture.
	m, err := s.AnalyzeMarketOpportunity("레보투스")
	if err != nil {
		t.Fatalf("AnalyzeMarketOpportunity() error = %v", err)
	}
	if m == nil {
		t.Fatal("AnalyzeMarketOpportunity() = nil")
	}
	if m.Competition != 0 {
		t.Errorf("Competition = %d, want 0", m.Competition)
	}
	if m.PotentialAccounts < m.CurrentAccounts {
		t.Errorf("PotentialAccounts = %d < CurrentAccounts = %d", m.PotentialAccounts, m.CurrentAccounts)
	}
	if m.GrowthPotential != 0 {
		t.Errorf("GrowthPotential = %d, want 0 with itself as the only peer", m.GrowthPotential)
	}
	if m.TotalAccounts != len(fixtureAccounts) {
		t.Errorf("TotalAccounts = %d, want %d", m.TotalAccounts, len(fixtureAccounts))
	}
	if !slices.Contains(m.Strategies, "선점 기회 활용") {
		t.Errorf("Strategies = %v, want first-mover", m.Strategies)
	}
	if slices.Contains(m.Strategies, "적극적 신규 개발") {
		t.Errorf("Strategies = %v, want no expansion without growth potential", m.Strategies)
	}
}

func TestAnalyzeMarketOpportunity_CategoryPeers(t *testing.T) {
	txns := []Transaction{
		tx("A", "G1", "아모잘탄정", 202401, 100),
		tx("B", "G2", "혈압약", 202401, 100),
		tx("C", "G2", "혈압약", 202401, 100),
		tx("D", "G2", "혈압약", 202401, 100),
	}
	s, err := Prepare(context.Background(), testConfig(), txns)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	m, err := s.AnalyzeMarketOpportunity("G1")
	if err != nil {
		t.Fatalf("AnalyzeMarketOpportunity() error = %v", err)
	}
	// Mean penetration of G1 (1/4) and G2 (3/4) is 1/2: potential 2, growth 1.
	if m.PotentialAccounts != 2 || m.GrowthPotential != 1 {
		t.Errorf("potential = %d, growth = %d, want 2 and 1", m.PotentialAccounts, m.GrowthPotential)
	}
	if m.IncrementalRevenue != 100 {
		t.Errorf("IncrementalRevenue = %v, want 100", m.IncrementalRevenue)
	}
	if m.CurrentPenetration != 0.25 || m.TargetPenetration != 0.5 {
		t.Errorf("penetration = %v -> %v, want 0.25 -> 0.5", m.CurrentPenetration, m.TargetPenetration)
	}
	if m.Competition != 1 {
		t.Errorf("Competition = %d, want 1", m.Competition)
	}

	g, err := s.AnalyzeGroupMarketOpportunity("G1")
	if err != nil {
		t.Fatalf("AnalyzeGroupMarketOpportunity() error = %v", err)
	}
	if g.MarketGrowthRate != 0 {
		t.Errorf("group MarketGrowthRate = %v, want 0 with fewer than six periods", g.MarketGrowthRate)
	}
}

func TestAnalyzeMarketOpportunity_Unknown(t *testing.T) {
	s := prepareFixture(t)

	m, err := s.AnalyzeMarketOpportunity("없는품목")
	if !IsUnknownEntity(err) {
		t.Errorf("error = %v, want UnknownEntityError", err)
	}
	if m == nil {
		t.Error("result is nil, want empty opportunity")
	}

	m, err = s.AnalyzeGroupMarketOpportunity("없는품목")
	if !IsUnknownEntity(err) || m == nil {
		t.Errorf("group analysis = (%v, %v), want empty result and UnknownEntityError", m, err)
	}
}

func TestAnalyzeGroupMarketOpportunity(t *testing.T) {
	var txns []Transaction
	// Six periods: revenue 100 for three months, then 150.
	for m := Period(202401); m <= 202406; m++ {
		revenue := 100.0
		if m > 202403 {
			revenue = 150
		}
		txns = append(txns, tx("A", "G1", "아모잘탄정", m, revenue))
	}
	txns = append(txns,
		tx("B", "G1", "아모잘탄플러스", 202401, 10),
		tx("B", "G1", "아모잘탄엑스큐", 202402, 10),
		tx("B", "G1", "아모잘탄큐", 202402, 10),
		tx("C", "G2", "레보투스정", 202401, 10),
	)

	s, err := Prepare(context.Background(), testConfig(), txns)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	m, err := s.AnalyzeGroupMarketOpportunity("G1")
	if err != nil {
		t.Fatalf("AnalyzeGroupMarketOpportunity() error = %v", err)
	}

	if m.ProductCount != 4 {
		t.Errorf("ProductCount = %d, want 4", m.ProductCount)
	}
	// Periods 01..03 sum 330, 04..06 sum 450.
	want := (450.0 - 330.0) / 330.0 * 100
	if diff := m.MarketGrowthRate - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("MarketGrowthRate = %v, want %v", m.MarketGrowthRate, want)
	}
	wantStrategies := []string{"다품목 포트폴리오 활용", "내과/가정의학과 중점 공략", "진료과 매칭도 우선 고려"}
	if !reflect.DeepEqual(m.Strategies, wantStrategies) {
		t.Errorf("Strategies = %v, want %v", m.Strategies, wantStrategies)
	}
}

func TestAnalyzeGroupMarketOpportunity_TrailingGrowth(t *testing.T) {
	s := prepareFixture(t)
	m, err := s.AnalyzeGroupMarketOpportunity("아모잘탄")
	if err != nil {
		t.Fatalf("AnalyzeGroupMarketOpportunity() error = %v", err)
	}
	if len(s.Periods()) != 6 {
		t.Fatalf("fixture has %d periods, want 6", len(s.Periods()))
	}
	if m.MarketGrowthRate == 0 {
		t.Error("MarketGrowthRate = 0, want trailing growth for six periods")
	}
}

func TestProductStrategies(t *testing.T) {
	tests := []struct {
		name    string
		profile ProductProfile
		growth  int
		want    []string
	}{
		{
			name:    "all signals",
			profile: ProductProfile{GrowthRate: 20, Competition: 2, PricePositioning: 1.5},
			growth:  11,
			want:    []string{"적극적 신규 개발", "성장 모멘텀 활용", "선점 기회 활용", "프리미엄 포지셔닝"},
		},
		{
			name:    "price competitiveness",
			profile: ProductProfile{GrowthRate: 5, Competition: 8, PricePositioning: 1.0},
			growth:  10,
			want:    []string{"가격 경쟁력 강화"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := productStrategies(&tt.profile, tt.growth); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("productStrategies() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGroupStrategies(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{CategoryHypertension, "내과/가정의학과 중점 공략"},
		{CategoryDyslipidemia, "내과/가정의학과 중점 공략"},
		{CategoryOrthopedics, "정형외과 전문병원 집중"},
		{CategoryOphthalmology, "전문과 타겟팅"},
		{CategoryENT, "전문과 타겟팅"},
		{CategoryDermatology, "전문과 타겟팅"},
		{CategoryDigestive, "일반의원 대상 확산"},
	}
	for _, tt := range tests {
		got := groupStrategies(tt.category, 0, 1)
		if len(got) != 2 || got[0] != tt.want || got[1] != "진료과 매칭도 우선 고려" {
			t.Errorf("groupStrategies(%q) = %v", tt.category, got)
		}
	}

	got := groupStrategies(CategoryDigestive, 11, 4)
	want := []string{"적극적 신규 개발", "다품목 포트폴리오 활용", "일반의원 대상 확산", "진료과 매칭도 우선 고려"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("groupStrategies() = %v, want %v", got, want)
	}
}
