// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"errors"
	"math"
	"testing"
)

func buildMatrix(t *testing.T, txns []Transaction) *InteractionMatrix {
	t.Helper()
	ds, err := indexTransactions(txns)
	if err != nil {
		t.Fatalf("indexTransactions() error = %v", err)
	}
	m, err := buildInteractionMatrix(context.Background(), ds, 3)
	if err != nil {
		t.Fatalf("buildInteractionMatrix() error = %v", err)
	}
	return m
}

func TestInteractionMatrix_Normalised(t *testing.T) {
	m := buildMatrix(t, []Transaction{
		tx("A", "G1", "p", 202401, 50),
		tx("A", "G1", "p", 202402, 50),
		tx("A", "G2", "p", 202401, 25),
		tx("B", "G2", "p", 202401, 10),
	})

	tests := []struct {
		account, product string
		want             float64
	}{
		{"A", "G1", 1},
		{"A", "G2", 0.25},
		{"B", "G1", 0},
		{"B", "G2", 1},
		{"missing", "G1", 0},
		{"A", "missing", 0},
	}
	for _, tt := range tests {
		if got := m.Value(tt.account, tt.product); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Value(%s, %s) = %v, want %v", tt.account, tt.product, got, tt.want)
		}
	}
}

func TestInteractionMatrix_SimilarityProperties(t *testing.T) {
	s := prepareFixture(t)
	m := s.Matrix()
	accounts := m.Accounts()

	for _, a := range accounts {
		if got := m.Similarity(a, a); math.Abs(got-1) > 1e-12 {
			t.Errorf("Similarity(%s, %s) = %v, want 1", a, a, got)
		}
		for _, b := range accounts {
			ab, ba := m.Similarity(a, b), m.Similarity(b, a)
			if ab != ba {
				t.Errorf("Similarity(%s, %s) = %v but Similarity(%s, %s) = %v", a, b, ab, b, a, ba)
			}
			if ab < -1e-12 || ab > 1+1e-12 {
				t.Errorf("Similarity(%s, %s) = %v out of range", a, b, ab)
			}
		}
	}

	for _, p := range m.Products() {
		for _, q := range m.Products() {
			if m.ProductSimilarity(p, q) != m.ProductSimilarity(q, p) {
				t.Errorf("ProductSimilarity(%s, %s) not symmetric", p, q)
			}
		}
	}
}

func TestInteractionMatrix_Unknown(t *testing.T) {
	m := buildMatrix(t, []Transaction{tx("A", "G1", "p", 202401, 1)})
	if got := m.Similarity("A", "missing"); got != 0 {
		t.Errorf("Similarity(A, missing) = %v, want 0", got)
	}
	if got := m.TopKSimilar("missing", 3); got != nil {
		t.Errorf("TopKSimilar(missing) = %v, want nil", got)
	}
	if got := m.TopKSimilar("A", 3); len(got) != 0 {
		t.Errorf("TopKSimilar(A) on a single account = %v, want empty", got)
	}
}

func TestTopKSimilar(t *testing.T) {
	// B and D buy exactly what A buys; C is orthogonal; E matches partially.
	m := buildMatrix(t, []Transaction{
		tx("A", "G1", "p", 202401, 10),
		tx("B", "G1", "p", 202401, 30),
		tx("C", "G2", "p", 202401, 10),
		tx("D", "G1", "p", 202401, 5),
		tx("E", "G1", "p", 202401, 10),
		tx("E", "G2", "p", 202401, 10),
	})

	got := m.TopKSimilar("A", 3)
	want := []string{"B", "D", "E"}
	if len(got) != len(want) {
		t.Fatalf("TopKSimilar() returned %d, want %d", len(got), len(want))
	}
	for i, n := range got {
		if n.ID != want[i] {
			t.Errorf("TopKSimilar()[%d] = %s, want %s (ties keep row order)", i, n.ID, want[i])
		}
	}
	if math.Abs(got[2].Similarity-1/math.Sqrt2) > 1e-12 {
		t.Errorf("E similarity = %v, want 1/sqrt(2)", got[2].Similarity)
	}

	if all := m.TopKSimilar("A", 100); len(all) != 4 {
		t.Errorf("TopKSimilar(k > n) returned %d, want 4", len(all))
	}
	if none := m.TopKSimilar("A", 0); len(none) != 0 {
		t.Errorf("TopKSimilar(k = 0) returned %d, want 0", len(none))
	}
}

func TestSimilarityMatrix_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := similarityMatrix(ctx, [][]float64{{1}, {2}}, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("similarityMatrix() error = %v, want context.Canceled", err)
	}
}
