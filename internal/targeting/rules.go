// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import "strings"

// Category and specialty labels shared by the rule tables.
const (
	CategoryHypertension  = "고혈압/심혈관"
	CategoryDyslipidemia  = "이상지질혈증"
	CategoryDigestive     = "소화기계"
	CategoryRespiratory   = "호흡기계"
	CategoryOrthopedics   = "정형외과"
	CategoryNeuroPsych    = "정신과/신경과"
	CategoryInfection     = "감염내과"
	CategoryEndocrine     = "내분비내과"
	CategoryUrology       = "비뇨기과"
	CategoryDermatology   = "피부과"
	CategoryOphthalmology = "안과"
	CategoryENT           = "이비인후과"
	CategoryObGyn         = "산부인과"
	CategoryPediatrics    = "소아청소년과"
	CategoryThrombosis    = "심혈관/혈전"
	CategoryInternal      = "일반내과"

	SpecialtyInternal      = "일반내과"
	SpecialtyFamily        = "가정의학과"
	SpecialtyGeneralClinic = "일반의원"
	SpecialtyHospital      = "종합병원"
	SpecialtyUnknown       = "기타"
)

// Rule maps any of its keywords to a value.
type Rule struct {
	Keywords []string
	Value    string
}

// RuleTable is evaluated in order; the first rule with a matching keyword wins.
type RuleTable []Rule

// Match returns the value of the first rule whose keyword is a
// case-insensitive substring of text.
func (t RuleTable) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, r := range t {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return r.Value, true
			}
		}
	}
	return "", false
}

// BrandCategoryRules recognise house brands before the generic keywords.
var BrandCategoryRules = RuleTable{
	{Keywords: []string{"아모잘탄"}, Value: CategoryHypertension},
	{Keywords: []string{"로수젯"}, Value: CategoryDyslipidemia},
	{Keywords: []string{"팔팔", "한미탐스"}, Value: CategoryUrology},
	{Keywords: []string{"에소메졸"}, Value: CategoryDigestive},
	{Keywords: []string{"피도글"}, Value: CategoryThrombosis},
	{Keywords: []string{"졸피드"}, Value: CategoryNeuroPsych},
	{Keywords: []string{"히알루미니"}, Value: CategoryOphthalmology},
}

// GenericCategoryRules classify products by therapeutic keywords.
var GenericCategoryRules = RuleTable{
	{Keywords: []string{"심", "혈압", "고혈압", "심장", "아모디핀", "발사르탄", "로사르탄"}, Value: CategoryHypertension},
	{Keywords: []string{"콜레스테롤", "지질", "스타틴", "로수바스타틴", "아토르바스타틴"}, Value: CategoryDyslipidemia},
	{Keywords: []string{"위", "소화", "장", "위산", "제산", "오메프라졸", "란소프라졸"}, Value: CategoryDigestive},
	{Keywords: []string{"폐", "기침", "천식", "호흡", "알레르기", "비염"}, Value: CategoryRespiratory},
	{Keywords: []string{"뼈", "관절", "류마티스", "근육", "정형외과"}, Value: CategoryOrthopedics},
	{Keywords: []string{"뇌", "신경", "우울", "불안", "수면", "졸피뎀"}, Value: CategoryNeuroPsych},
	{Keywords: []string{"감염", "항생", "바이러스", "세균", "아목시실린"}, Value: CategoryInfection},
	{Keywords: []string{"당뇨", "혈당", "인슐린", "메트포르민"}, Value: CategoryEndocrine},
	{Keywords: []string{"신장", "요로", "방광", "전립선", "비뇨기"}, Value: CategoryUrology},
	{Keywords: []string{"피부", "알레르기", "아토피", "습진"}, Value: CategoryDermatology},
	{Keywords: []string{"안과", "점안", "녹내장", "히알루론산"}, Value: CategoryOphthalmology},
	{Keywords: []string{"이비인후", "귀", "코", "목"}, Value: CategoryENT},
	{Keywords: []string{"산부인과", "부인과", "임신"}, Value: CategoryObGyn},
	{Keywords: []string{"소아", "어린이"}, Value: CategoryPediatrics},
}

// SpecialtyRules infer an account's clinical specialty from its name.
var SpecialtyRules = RuleTable{
	{Keywords: []string{"내과"}, Value: SpecialtyInternal},
	{Keywords: []string{"이비인후과"}, Value: "이비인후과"},
	{Keywords: []string{"피부과"}, Value: "피부과"},
	{Keywords: []string{"안과"}, Value: "안과"},
	{Keywords: []string{"비뇨기과"}, Value: "비뇨기과"},
	{Keywords: []string{"정형외과"}, Value: "정형외과"},
	{Keywords: []string{"산부인과"}, Value: "산부인과"},
	{Keywords: []string{"소아청소년과", "소아과"}, Value: "소아청소년과"},
	{Keywords: []string{"정신과", "신경과"}, Value: "정신과/신경과"},
	{Keywords: []string{"가정의학과"}, Value: SpecialtyFamily},
	{Keywords: []string{"의원", "클리닉"}, Value: SpecialtyGeneralClinic},
	{Keywords: []string{"병원"}, Value: SpecialtyHospital},
}

// FacilityRules infer an account's facility type from its name.
var FacilityRules = []struct {
	Keywords []string
	Type     FacilityType
}{
	{Keywords: []string{"병원", "의료원", "센터"}, Type: FacilityHospital},
	{Keywords: []string{"의원", "클리닉"}, Type: FacilityClinic},
	{Keywords: []string{"약국"}, Type: FacilityPharmacy},
}

// SpecialtyMap lists suitable account specialties per product category, best first.
var SpecialtyMap = map[string][]string{
	CategoryHypertension:  {SpecialtyInternal, SpecialtyFamily, "심장내과", SpecialtyHospital, SpecialtyGeneralClinic},
	CategoryDyslipidemia:  {SpecialtyInternal, SpecialtyFamily, "심장내과", SpecialtyHospital, SpecialtyGeneralClinic},
	CategoryDigestive:     {SpecialtyInternal, SpecialtyFamily, "소화기내과", SpecialtyHospital, SpecialtyGeneralClinic},
	CategoryRespiratory:   {"이비인후과", SpecialtyInternal, SpecialtyFamily, "호흡기내과", SpecialtyHospital},
	CategoryOrthopedics:   {"정형외과", "재활의학과", SpecialtyHospital},
	CategoryNeuroPsych:    {"정신과/신경과", "신경과", "정신건강의학과", SpecialtyHospital},
	CategoryInfection:     {SpecialtyInternal, SpecialtyFamily, "감염내과", SpecialtyHospital, SpecialtyGeneralClinic},
	CategoryEndocrine:     {SpecialtyInternal, SpecialtyFamily, "내분비내과", SpecialtyHospital, SpecialtyGeneralClinic},
	CategoryUrology:       {"비뇨기과", SpecialtyHospital},
	CategoryDermatology:   {"피부과", SpecialtyHospital},
	CategoryOphthalmology: {"안과", SpecialtyHospital},
	CategoryENT:           {"이비인후과", SpecialtyHospital},
	CategoryObGyn:         {"산부인과", SpecialtyHospital},
	CategoryPediatrics:    {"소아청소년과", SpecialtyHospital},
	CategoryInternal:      {SpecialtyInternal, SpecialtyFamily, SpecialtyHospital, SpecialtyGeneralClinic},
}

// InferCategory classifies a product name. Brand rules take precedence over
// generic keywords; unmatched names fall back to general internal medicine.
func InferCategory(productName string) string {
	if v, ok := BrandCategoryRules.Match(productName); ok {
		return v
	}
	if v, ok := GenericCategoryRules.Match(productName); ok {
		return v
	}
	return CategoryInternal
}

// InferSpecialty extracts the clinical specialty from an account name.
func InferSpecialty(accountName string) string {
	if v, ok := SpecialtyRules.Match(accountName); ok {
		return v
	}
	return SpecialtyUnknown
}

// InferFacility classifies an account by facility keywords in its name.
func InferFacility(accountName string) FacilityType {
	lower := strings.ToLower(accountName)
	for _, r := range FacilityRules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Type
			}
		}
	}
	return FacilityUnknown
}
