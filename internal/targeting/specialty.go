// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

// Specialty match scores.
const (
	MatchBest     = 2.0
	MatchGood     = 1.5
	MatchSuitable = 1.2
	MatchNeutral  = 1.0
	MatchPoor     = 0.5
)

// SpecialtyMatchScore scores how well an account specialty suits a product
// category. It is total: an unmapped category scores MatchNeutral, and a
// specialty missing from the category's list (including an unknown or empty
// one) scores MatchPoor.
func SpecialtyMatchScore(category, specialty string) float64 {
	suitable, ok := SpecialtyMap[category]
	if !ok {
		return MatchNeutral
	}
	for i, s := range suitable {
		if s != specialty {
			continue
		}
		switch i {
		case 0:
			return MatchBest
		case 1:
			return MatchGood
		default:
			return MatchSuitable
		}
	}
	return MatchPoor
}

// specialtyTag returns the reason tag for a match score, or "".
func specialtyTag(score float64) string {
	switch {
	case score >= MatchBest:
		return "최적 진료과 매칭"
	case score >= MatchGood:
		return "우수 진료과 매칭"
	case score >= MatchSuitable:
		return "적합 진료과"
	case score <= MatchPoor:
		return "진료과 부적합"
	default:
		return ""
	}
}
