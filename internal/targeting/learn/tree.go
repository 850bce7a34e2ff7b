// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package learn

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

var (
	// ErrEmptyDataset is returned when Fit is called without samples.
	ErrEmptyDataset = errors.New("learn: empty dataset")

	// ErrNotFitted is returned when predicting with an untrained model.
	ErrNotFitted = errors.New("learn: model not fitted")
)

// TreeConfig controls the growth of a single regression tree.
type TreeConfig struct {
	// MaxDepth limits tree depth. Zero means unlimited.
	MaxDepth int `json:"max_depth"`

	// MinSamplesSplit is the minimum node size considered for a split.
	// Default: 2.
	MinSamplesSplit int `json:"min_samples_split"`

	// MinSamplesLeaf is the minimum number of samples in each child.
	// Default: 1.
	MinSamplesLeaf int `json:"min_samples_leaf"`

	// MaxFeatures is the number of features sampled per split.
	// Zero or a value >= the feature count means all features.
	MaxFeatures int `json:"max_features"`
}

func (c TreeConfig) withDefaults() TreeConfig {
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = 2
	}
	if c.MinSamplesLeaf < 1 {
		c.MinSamplesLeaf = 1
	}
	return c
}

// node is a flattened tree node. Leaves have feature == -1.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// Tree is a fitted regression tree.
type Tree struct {
	nodes []node
}

// Predict walks the tree for a single feature vector.
func (t *Tree) Predict(x []float64) float64 {
	if t == nil || len(t.nodes) == 0 {
		return 0
	}
	i := 0
	for {
		n := &t.nodes[i]
		if n.feature < 0 {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// Depth returns the depth of the tree (a single leaf has depth 0).
func (t *Tree) Depth() int {
	if t == nil || len(t.nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.feature < 0 {
			return 0
		}
		l, r := walk(n.left), walk(n.right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return walk(0)
}

// LeafFunc computes a leaf value from the sample indices that reach it.
type LeafFunc func(idx []int) float64

// treeBuilder grows one tree over a fixed design matrix.
type treeBuilder struct {
	x         [][]float64
	target    []float64
	cfg       TreeConfig
	rng       *rand.Rand
	leafValue LeafFunc
	nFeatures int
	nodes     []node
}

// FitTree grows a regression tree on the rows of x selected by idx.
// Splits minimise squared error against target. When leafValue is nil the
// leaf value is the mean target of its samples.
func FitTree(x [][]float64, target []float64, idx []int, cfg TreeConfig, rng *rand.Rand, leafValue LeafFunc) (*Tree, error) {
	if len(idx) == 0 || len(x) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(x) != len(target) {
		return nil, fmt.Errorf("learn: %d rows but %d targets", len(x), len(target))
	}

	b := &treeBuilder{
		x:         x,
		target:    target,
		cfg:       cfg.withDefaults(),
		rng:       rng,
		leafValue: leafValue,
		nFeatures: len(x[0]),
	}
	if b.leafValue == nil {
		b.leafValue = b.meanTarget
	}

	work := make([]int, len(idx))
	copy(work, idx)
	b.grow(work, 0)

	return &Tree{nodes: b.nodes}, nil
}

func (b *treeBuilder) meanTarget(idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += b.target[i]
	}
	return sum / float64(len(idx))
}

// grow appends the subtree for idx and returns its node index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	self := len(b.nodes)
	b.nodes = append(b.nodes, node{feature: -1})

	if b.isLeaf(idx, depth) {
		b.nodes[self].value = b.leafValue(idx)
		return self
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		b.nodes[self].value = b.leafValue(idx)
		return self
	}

	// Partition in place: left keeps x <= threshold.
	lo, hi := 0, len(idx)-1
	for lo <= hi {
		if b.x[idx[lo]][feature] <= threshold {
			lo++
		} else {
			idx[lo], idx[hi] = idx[hi], idx[lo]
			hi--
		}
	}

	if lo == 0 || lo == len(idx) {
		b.nodes[self].value = b.leafValue(idx)
		return self
	}

	left := b.grow(idx[:lo], depth+1)
	right := b.grow(idx[lo:], depth+1)

	b.nodes[self].feature = feature
	b.nodes[self].threshold = threshold
	b.nodes[self].left = left
	b.nodes[self].right = right
	return self
}

func (b *treeBuilder) isLeaf(idx []int, depth int) bool {
	if b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth {
		return true
	}
	if len(idx) < b.cfg.MinSamplesSplit || len(idx) < 2*b.cfg.MinSamplesLeaf {
		return true
	}
	first := b.target[idx[0]]
	for _, i := range idx[1:] {
		if b.target[i] != first {
			return false
		}
	}
	return true
}

// candidateFeatures returns the features examined at one split.
func (b *treeBuilder) candidateFeatures() []int {
	k := b.cfg.MaxFeatures
	if k <= 0 || k >= b.nFeatures || b.rng == nil {
		all := make([]int, b.nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return b.rng.Perm(b.nFeatures)[:k]
}

// bestSplit maximises sum_l^2/n_l + sum_r^2/n_r, which is equivalent to
// minimising the children's summed squared error.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	n := len(idx)
	var total float64
	for _, i := range idx {
		total += b.target[i]
	}
	parentScore := total * total / float64(n)

	bestFeature := -1
	bestThreshold := 0.0
	bestScore := parentScore + 1e-12

	sorted := make([]int, n)
	minLeaf := b.cfg.MinSamplesLeaf

	for _, f := range b.candidateFeatures() {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool {
			return b.x[sorted[a]][f] < b.x[sorted[c]][f]
		})

		var leftSum float64
		for k := 0; k < n-1; k++ {
			leftSum += b.target[sorted[k]]
			nl := k + 1
			nr := n - nl
			if nl < minLeaf {
				continue
			}
			if nr < minLeaf {
				break
			}
			cur, next := b.x[sorted[k]][f], b.x[sorted[k+1]][f]
			if cur == next {
				continue
			}
			rightSum := total - leftSum
			score := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr)
			if score > bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
				if bestThreshold >= next {
					bestThreshold = cur
				}
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}
