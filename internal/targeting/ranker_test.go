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

func purchasersOf(s *State, product string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range s.ds.txns {
		if t.ProductGroup == product {
			out[t.AccountID] = true
		}
	}
	return out
}

func assertSorted(t *testing.T, recs []Recommendation) {
	t.Helper()
	for i := 1; i < len(recs); i++ {
		if recs[i].CompositeScore > recs[i-1].CompositeScore {
			t.Fatalf("recs[%d].CompositeScore = %v > recs[%d].CompositeScore = %v",
				i, recs[i].CompositeScore, i-1, recs[i-1].CompositeScore)
		}
	}
}

func TestRecommendTargets(t *testing.T) {
	s := trainedFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		product string
		opts    RecommendOptions
		wantMax int
	}{
		{"defaults", "아모잘탄", DefaultRecommendOptions(), 10},
		{"include existing", "로수젯", RecommendOptions{TopN: 12}, 12},
		{"top 3", "히알루미니", RecommendOptions{TopN: 3, ExcludeExisting: true}, 3},
		{"manager filter", "팔팔", RecommendOptions{TopN: 20, Manager: "김영업"}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.RecommendTargets(ctx, tt.product, tt.opts)
			if err != nil {
				t.Fatalf("RecommendTargets() error = %v", err)
			}
			if len(recs) == 0 || len(recs) > tt.wantMax {
				t.Fatalf("RecommendTargets() returned %d recommendations, want 1..%d", len(recs), tt.wantMax)
			}
			assertSorted(t, recs)

			existing := purchasersOf(s, tt.product)
			for _, r := range recs {
				if tt.opts.ExcludeExisting && existing[r.AccountID] {
					t.Errorf("existing purchaser %s returned with ExcludeExisting", r.AccountID)
				}
				if tt.opts.Manager != "" && r.Manager != tt.opts.Manager {
					t.Errorf("account %s has manager %q, want %q", r.AccountID, r.Manager, tt.opts.Manager)
				}
				if r.SuccessProbability < 0 || r.SuccessProbability > 1 {
					t.Errorf("SuccessProbability = %v out of [0, 1]", r.SuccessProbability)
				}
				if len(r.ReasonTags) == 0 {
					t.Errorf("account %s has no reason tags", r.AccountID)
				}
			}
		})
	}
}

func TestRecommendTargets_Idempotent(t *testing.T) {
	ctx := context.Background()
	opts := RecommendOptions{TopN: 12}

	first, err := trainedFixture(t).RecommendTargets(ctx, "에소메졸", opts)
	if err != nil {
		t.Fatalf("RecommendTargets() error = %v", err)
	}
	second, err := trainedFixture(t).RecommendTargets(ctx, "에소메졸", opts)
	if err != nil {
		t.Fatalf("RecommendTargets() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two identical rebuilds produced different rankings")
	}
}

func TestRecommendTargets_Errors(t *testing.T) {
	ctx := context.Background()

	recs, err := prepareFixture(t).RecommendTargets(ctx, "아모잘탄", DefaultRecommendOptions())
	if !errors.Is(err, ErrModelsNotTrained) {
		t.Errorf("untrained error = %v, want ErrModelsNotTrained", err)
	}
	if recs == nil {
		t.Error("untrained result is nil, want empty slice")
	}

	recs, err = trainedFixture(t).RecommendTargets(ctx, "없는품목", DefaultRecommendOptions())
	if !IsUnknownEntity(err) {
		t.Errorf("unknown product error = %v, want UnknownEntityError", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("unknown product result = %v, want empty slice", recs)
	}
}

func TestComposite_RevenueDominatesWhenOtherTermsEqual(t *testing.T) {
	s := &State{config: DefaultConfig()}

	// A is a 120M Large account, B a 5M Micro account.
	a := s.composite(120_000_000, 0.6, 0.3, MatchGood)
	b := s.composite(5_000_000, 0.6, 0.3, MatchGood)
	if a <= b {
		t.Errorf("composite(A) = %v, composite(B) = %v, want A > B", a, b)
	}

	// 0.30*1000 + 0.5*1e6*0.25 + 0.2*0.20 + 2*1e5*0.25
	want := 300 + 125_000 + 0.04 + 50_000
	if got := s.composite(1000, 0.5, 0.2, MatchBest); got-want > 1e-6 || want-got > 1e-6 {
		t.Errorf("composite() = %v, want %v", got, want)
	}
}

func TestRank_StableTieBreak(t *testing.T) {
	scored := []scoredAccount{
		{order: 2, rec: Recommendation{AccountID: "c", CompositeScore: 5}},
		{order: 0, rec: Recommendation{AccountID: "a", CompositeScore: 5}},
		{order: 3, rec: Recommendation{AccountID: "d", CompositeScore: 9}},
		{order: 1, rec: Recommendation{AccountID: "b", CompositeScore: 5}},
	}

	got := rank(scored, 3)
	want := []string{"d", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("rank() returned %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].AccountID != want[i] {
			t.Errorf("rank()[%d] = %s, want %s", i, got[i].AccountID, want[i])
		}
	}
}

func TestReasonTags(t *testing.T) {
	tests := []struct {
		name        string
		profile     CustomerProfile
		probability float64
		specialty   float64
		want        []string
	}{
		{
			name:      "standard",
			profile:   CustomerProfile{SizeTier: TierMicro},
			specialty: MatchNeutral,
			want:      []string{"표준 추천"},
		},
		{
			name: "all tags",
			profile: CustomerProfile{
				GrowthRate:     25,
				ProductCount:   6,
				SizeTier:       TierLarge,
				RecentlyActive: true,
			},
			probability: 0.9,
			specialty:   MatchBest,
			want:        []string{"최적 진료과 매칭", "높은 성공 확률", "고성장 거래처", "다품목 취급", "중대형 거래처", "최근 활발한 거래"},
		},
		{
			name:      "poor specialty only",
			profile:   CustomerProfile{SizeTier: TierSmall},
			specialty: MatchPoor,
			want:      []string{"진료과 부적합"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reasonTags(&tt.profile, tt.probability, tt.specialty)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("reasonTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecommendTargetsForGroup(t *testing.T) {
	s := prepareFixture(t)
	ctx := context.Background()

	recs, err := s.RecommendTargetsForGroup(ctx, "아모잘탄", RecommendOptions{TopN: 20, ExcludeExisting: true})
	if err != nil {
		t.Fatalf("RecommendTargetsForGroup() error = %v", err)
	}
	existing := purchasersOf(s, "아모잘탄")
	if want := len(s.Customers()) - len(existing); len(recs) != want {
		t.Fatalf("returned %d, want %d non-purchasers", len(recs), want)
	}
	assertSorted(t, recs)

	gc := s.Config().Group
	for _, r := range recs {
		if existing[r.AccountID] {
			t.Errorf("existing purchaser %s returned", r.AccountID)
		}
		if r.SuccessProbability < gc.MinProbability || r.SuccessProbability > gc.MaxProbability {
			t.Errorf("probability %v outside [%v, %v]", r.SuccessProbability, gc.MinProbability, gc.MaxProbability)
		}
		wantComposite := r.SpecialtyMatchScore*gc.SortSpecialtyWeight + r.SuccessProbability*gc.SortProbabilityWeight
		if r.CompositeScore != wantComposite {
			t.Errorf("CompositeScore = %v, want %v", r.CompositeScore, wantComposite)
		}
		if r.PredictedRevenue < 0 {
			t.Errorf("PredictedRevenue = %v, want >= 0", r.PredictedRevenue)
		}
	}
}

func TestRecommendTargetsForGroup_NoComparableAccounts(t *testing.T) {
	s, err := Prepare(context.Background(), testConfig(), []Transaction{
		tx("A", "G1", "p", 202401, 100),
		tx("A", "G2", "p", 202401, 100),
		tx("B", "G2", "p", 202401, 100),
	})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	// Every account already buys G2.
	recs, err := s.RecommendTargetsForGroup(context.Background(), "G2", RecommendOptions{ExcludeExisting: true})
	if err != nil {
		t.Fatalf("RecommendTargetsForGroup() error = %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("RecommendTargetsForGroup() = %v, want empty slice", recs)
	}

	// B has no peers in G1 other than A, so its similarity comes from A.
	recs, err = s.RecommendTargetsForGroup(context.Background(), "G1", RecommendOptions{ExcludeExisting: true})
	if err != nil {
		t.Fatalf("RecommendTargetsForGroup() error = %v", err)
	}
	if len(recs) != 1 || recs[0].AccountID != "B" {
		t.Fatalf("RecommendTargetsForGroup() = %v, want [B]", recs)
	}
}

func TestRecommendTargetsForGroup_NoPeers(t *testing.T) {
	s, err := Prepare(context.Background(), testConfig(), []Transaction{
		tx("A", "G1", "p", 202401, 100),
		tx("B", "G2", "p", 202401, 100),
	})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	// A is G1's only buyer, so including it leaves A without peers.
	recs, err := s.RecommendTargetsForGroup(context.Background(), "G1", RecommendOptions{TopN: 5})
	if err != nil {
		t.Fatalf("RecommendTargetsForGroup() error = %v", err)
	}
	for _, r := range recs {
		if r.AccountID == "A" && r.SimilarityScore != s.Config().Group.NoPeerSimilarity {
			t.Errorf("A SimilarityScore = %v, want %v", r.SimilarityScore, s.Config().Group.NoPeerSimilarity)
		}
	}
}

func TestRecommendTargetsForGroup_Unknown(t *testing.T) {
	recs, err := prepareFixture(t).RecommendTargetsForGroup(context.Background(), "없는품목군", DefaultRecommendOptions())
	var unknown *UnknownEntityError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want *UnknownEntityError", err)
	}
	if unknown.Name != "없는품목군" {
		t.Errorf("Name = %q", unknown.Name)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("recs = %v, want empty slice", recs)
	}
}

func TestRecommend_Fallback(t *testing.T) {
	ctx := context.Background()

	_, mode, err := prepareFixture(t).Recommend(ctx, "아모잘탄", DefaultRecommendOptions())
	if err != nil || mode != ModeGroup {
		t.Errorf("untrained Recommend() = (%v, %v), want (ModeGroup, nil)", mode, err)
	}

	_, mode, err = trainedFixture(t).Recommend(ctx, "아모잘탄", DefaultRecommendOptions())
	if err != nil || mode != ModeModel {
		t.Errorf("trained Recommend() = (%v, %v), want (ModeModel, nil)", mode, err)
	}
}

func TestResolveTopN(t *testing.T) {
	s := &State{config: DefaultConfig()}
	tests := []struct{ in, want int }{
		{0, 10},
		{-3, 10},
		{25, 25},
		{10_000, 500},
	}
	for _, tt := range tests {
		if got := s.resolveTopN(tt.in); got != tt.want {
			t.Errorf("resolveTopN(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
