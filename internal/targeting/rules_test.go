// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import "testing"

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name    string
		product string
		want    string
	}{
		{"brand hypertension", "아모잘탄정5/50mg", CategoryHypertension},
		{"brand dyslipidemia", "로수젯정10/5mg", CategoryDyslipidemia},
		{"brand urology", "팔팔정50mg", CategoryUrology},
		{"brand thrombosis", "피도글정", CategoryThrombosis},
		{"brand ophthalmology", "히알루미니점안액", CategoryOphthalmology},
		{"generic keyword", "로수바스타틴정", CategoryDyslipidemia},
		{"generic diabetes", "메트포르민서방정", CategoryEndocrine},
		{"generic digestive", "ESOMEPRAZOLE 위산", CategoryDigestive},
		{"no match defaults", "레보투스정", CategoryInternal},
		{"empty defaults", "", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferCategory(tt.product); got != tt.want {
				t.Errorf("InferCategory(%q) = %q, want %q", tt.product, got, tt.want)
			}
		})
	}
}

func TestInferCategory_BrandPrecedence(t *testing.T) {
	// "로수젯" is checked before the generic "콜레스테롤" and "심" keywords.
	if got := InferCategory("로수젯 심혈관 콜레스테롤"); got != CategoryDyslipidemia {
		t.Errorf("InferCategory() = %q, want %q", got, CategoryDyslipidemia)
	}
	// Among generic rules the earlier table entry wins.
	if got := InferCategory("혈압 콜레스테롤"); got != CategoryHypertension {
		t.Errorf("InferCategory() = %q, want %q", got, CategoryHypertension)
	}
}

func TestInferSpecialty(t *testing.T) {
	tests := []struct {
		account string
		want    string
	}{
		{"서울내과의원", SpecialtyInternal},
		{"밝은안과의원", "안과"},
		{"튼튼정형외과의원", "정형외과"},
		{"맑은이비인후과", "이비인후과"},
		{"아이소아과의원", "소아청소년과"},
		{"마음신경과", "정신과/신경과"},
		{"행복가정의학과의원", SpecialtyFamily},
		{"연세클리닉", SpecialtyGeneralClinic},
		{"중앙병원", SpecialtyHospital},
		{"온누리약국", SpecialtyUnknown},
		{"", SpecialtyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			if got := InferSpecialty(tt.account); got != tt.want {
				t.Errorf("InferSpecialty(%q) = %q, want %q", tt.account, got, tt.want)
			}
		})
	}
}

func TestInferFacility(t *testing.T) {
	tests := []struct {
		account string
		want    FacilityType
	}{
		{"중앙병원", FacilityHospital},
		{"지방의료원", FacilityHospital},
		{"건강검진센터", FacilityHospital},
		{"서울내과의원", FacilityClinic},
		{"연세클리닉", FacilityClinic},
		{"온누리약국", FacilityPharmacy},
		{"주식회사 메디", FacilityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			if got := InferFacility(tt.account); got != tt.want {
				t.Errorf("InferFacility(%q) = %v, want %v", tt.account, got, tt.want)
			}
		})
	}
}

func TestRuleTable_Match(t *testing.T) {
	table := RuleTable{
		{Keywords: []string{"abc"}, Value: "first"},
		{Keywords: []string{"ABC", "xyz"}, Value: "second"},
	}

	if v, ok := table.Match("xxABCxx"); !ok || v != "first" {
		t.Errorf("Match() = (%q, %v), want (first, true)", v, ok)
	}
	if v, ok := table.Match("XYZ"); !ok || v != "second" {
		t.Errorf("Match() = (%q, %v), want (second, true)", v, ok)
	}
	if _, ok := table.Match("nothing"); ok {
		t.Error("Match() matched unexpected text")
	}
}

func TestSpecialtyMatchScore(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		specialty string
		want      float64
	}{
		{"best", CategoryHypertension, SpecialtyInternal, MatchBest},
		{"second", CategoryHypertension, SpecialtyFamily, MatchGood},
		{"elsewhere", CategoryHypertension, SpecialtyGeneralClinic, MatchSuitable},
		{"known not listed", CategoryHypertension, "안과", MatchPoor},
		{"unknown specialty", CategoryHypertension, SpecialtyUnknown, MatchPoor},
		{"pharmacy name", CategoryHypertension, InferSpecialty("온누리약국"), MatchPoor},
		{"empty specialty", CategoryUrology, "", MatchPoor},
		{"unknown specialty unmapped category", "희귀질환", SpecialtyUnknown, MatchNeutral},
		{"unmapped category", "희귀질환", SpecialtyInternal, MatchNeutral},
		{"ophthalmology best", CategoryOphthalmology, "안과", MatchBest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpecialtyMatchScore(tt.category, tt.specialty); got != tt.want {
				t.Errorf("SpecialtyMatchScore(%q, %q) = %v, want %v", tt.category, tt.specialty, got, tt.want)
			}
		})
	}
}

func TestSpecialtyMatchScore_Total(t *testing.T) {
	valid := map[float64]bool{MatchPoor: true, MatchNeutral: true, MatchSuitable: true, MatchGood: true, MatchBest: true}

	categories := []string{"", "unmapped"}
	for c := range SpecialtyMap {
		categories = append(categories, c)
	}
	specialties := []string{"", SpecialtyUnknown, "심장내과"}
	for _, r := range SpecialtyRules {
		specialties = append(specialties, r.Value)
	}

	for _, c := range categories {
		for _, sp := range specialties {
			if got := SpecialtyMatchScore(c, sp); !valid[got] {
				t.Errorf("SpecialtyMatchScore(%q, %q) = %v, not a valid score", c, sp, got)
			}
		}
	}
}

func TestSpecialtyTag(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{MatchBest, "최적 진료과 매칭"},
		{MatchGood, "우수 진료과 매칭"},
		{MatchSuitable, "적합 진료과"},
		{MatchNeutral, ""},
		{MatchPoor, "진료과 부적합"},
	}
	for _, tt := range tests {
		if got := specialtyTag(tt.score); got != tt.want {
			t.Errorf("specialtyTag(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
