// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"math"
	"sort"
)

// InteractionMatrix is the account x product revenue table, row-max
// normalised to [0, 1], with cosine similarity over rows and columns.
// It is immutable once built.
type InteractionMatrix struct {
	accounts     []string
	accountIndex map[string]int
	products     []string
	productIndex map[string]int

	// values is row-major: values[a*len(products)+p].
	values []float64

	// accountSim is len(accounts)^2, productSim is len(products)^2.
	accountSim []float64
	productSim []float64
}

func buildInteractionMatrix(ctx context.Context, ds *dataset, workers int) (*InteractionMatrix, error) {
	nA, nP := len(ds.accounts), len(ds.products)
	m := &InteractionMatrix{
		accounts:     ds.accounts,
		accountIndex: ds.accountIndex,
		products:     ds.products,
		productIndex: ds.productIndex,
		values:       make([]float64, nA*nP),
	}

	for _, t := range ds.txns {
		a := ds.accountIndex[t.AccountID]
		p := ds.productIndex[t.ProductGroup]
		m.values[a*nP+p] += t.Revenue
	}

	for a := 0; a < nA; a++ {
		row := m.values[a*nP : (a+1)*nP]
		var rowMax float64
		for _, v := range row {
			rowMax = math.Max(rowMax, v)
		}
		if rowMax == 0 {
			continue
		}
		for p := range row {
			row[p] /= rowMax
		}
	}

	rows := make([][]float64, nA)
	for a := range rows {
		rows[a] = m.values[a*nP : (a+1)*nP]
	}
	cols := make([][]float64, nP)
	for p := range cols {
		col := make([]float64, nA)
		for a := 0; a < nA; a++ {
			col[a] = m.values[a*nP+p]
		}
		cols[p] = col
	}

	var err error
	if m.accountSim, err = similarityMatrix(ctx, rows, workers); err != nil {
		return nil, err
	}
	if m.productSim, err = similarityMatrix(ctx, cols, workers); err != nil {
		return nil, err
	}
	return m, nil
}

// similarityMatrix computes pairwise cosine similarity. Each worker owns
// whole output rows; the diagonal is 1 for non-zero vectors.
func similarityMatrix(ctx context.Context, vectors [][]float64, workers int) ([]float64, error) {
	n := len(vectors)
	norms := make([]float64, n)
	for i, v := range vectors {
		var ss float64
		for _, x := range v {
			ss += x * x
		}
		norms[i] = math.Sqrt(ss)
	}

	sim := make([]float64, n*n)
	err := parallelFor(ctx, n, workers, func(i int) error {
		out := sim[i*n : (i+1)*n]
		if norms[i] == 0 {
			return nil
		}
		vi := vectors[i]
		for j := 0; j < n; j++ {
			if j == i {
				out[j] = 1
				continue
			}
			if norms[j] == 0 {
				continue
			}
			var dot float64
			vj := vectors[j]
			for k := range vi {
				dot += vi[k] * vj[k]
			}
			out[j] = dot / (norms[i] * norms[j])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sim, nil
}

// Accounts returns the row labels in iteration order.
func (m *InteractionMatrix) Accounts() []string { return m.accounts }

// Products returns the column labels in iteration order.
func (m *InteractionMatrix) Products() []string { return m.products }

// Value returns the normalised cell for an account and product, or 0.
func (m *InteractionMatrix) Value(accountID, product string) float64 {
	a, ok := m.accountIndex[accountID]
	if !ok {
		return 0
	}
	p, ok := m.productIndex[product]
	if !ok {
		return 0
	}
	return m.values[a*len(m.products)+p]
}

func (m *InteractionMatrix) valueAt(a, p int) float64 {
	return m.values[a*len(m.products)+p]
}

// Similarity returns the cosine similarity between two accounts, or 0.
func (m *InteractionMatrix) Similarity(a, b string) float64 {
	i, ok := m.accountIndex[a]
	if !ok {
		return 0
	}
	j, ok := m.accountIndex[b]
	if !ok {
		return 0
	}
	return m.accountSim[i*len(m.accounts)+j]
}

// ProductSimilarity returns the cosine similarity between two products, or 0.
func (m *InteractionMatrix) ProductSimilarity(p, q string) float64 {
	i, ok := m.productIndex[p]
	if !ok {
		return 0
	}
	j, ok := m.productIndex[q]
	if !ok {
		return 0
	}
	return m.productSim[i*len(m.products)+j]
}

// TopKSimilar returns the k accounts most similar to accountID, excluding
// itself. Ties keep matrix row order. Unknown accounts yield nil.
func (m *InteractionMatrix) TopKSimilar(accountID string, k int) []Neighbor {
	i, ok := m.accountIndex[accountID]
	if !ok {
		return nil
	}
	return topK(m.accountSim, m.accounts, i, k)
}

// TopKSimilarProducts is the column-wise counterpart of TopKSimilar.
func (m *InteractionMatrix) TopKSimilarProducts(product string, k int) []Neighbor {
	i, ok := m.productIndex[product]
	if !ok {
		return nil
	}
	return topK(m.productSim, m.products, i, k)
}

func topK(sim []float64, labels []string, i, k int) []Neighbor {
	n := len(labels)
	if k <= 0 || n <= 1 {
		return []Neighbor{}
	}
	row := sim[i*n : (i+1)*n]

	neighbors := make([]Neighbor, 0, n-1)
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		neighbors = append(neighbors, Neighbor{ID: labels[j], Index: j, Similarity: row[j]})
	}
	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].Similarity > neighbors[b].Similarity
	})
	if k < len(neighbors) {
		neighbors = neighbors[:k]
	}
	return neighbors
}
