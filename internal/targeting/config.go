// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"fmt"
	"time"

	"github.com/tomtom215/salesradar/internal/targeting/learn"
)

// Config contains all configuration for the targeting engine.
type Config struct {
	// Weights defines the contribution of each factor to the composite score.
	Weights ScoreWeights `json:"weights"`

	// Scales converts the non-monetary factors into revenue-comparable units.
	Scales ScoreScales `json:"scales"`

	// Tiers holds the revenue thresholds for account size tiers.
	Tiers TierThresholds `json:"tiers"`

	// Group contains the model-free group ranking blend.
	Group GroupConfig `json:"group"`

	// Plan contains sales plan bucketing.
	Plan PlanConfig `json:"plan"`

	// Training contains model training parameters.
	Training TrainingConfig `json:"training"`

	// Forest configures the revenue model.
	Forest learn.ForestConfig `json:"forest"`

	// Boosting configures the success model.
	Boosting learn.BoostingConfig `json:"boosting"`

	// NeighborCount is the number of similar accounts used for the similarity score.
	// Default: 10.
	NeighborCount int `json:"neighbor_count"`

	// DefaultTopN is the result size when a request does not set one.
	// Default: 10.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN caps the result size.
	// Default: 500.
	MaxTopN int `json:"max_top_n"`

	// Workers bounds parallel profile and similarity work. Zero means GOMAXPROCS.
	Workers int `json:"workers"`

	// Seed is the random seed for model training and negative sampling.
	// Default: 42.
	Seed int64 `json:"seed"`
}

// ScoreWeights weights the composite score terms.
type ScoreWeights struct {
	// Revenue weights the predicted revenue.
	// Default: 0.30.
	Revenue float64 `json:"revenue"`

	// Probability weights the scaled success probability.
	// Default: 0.25.
	Probability float64 `json:"probability"`

	// Similarity weights the neighbour similarity score.
	// Default: 0.20.
	Similarity float64 `json:"similarity"`

	// Specialty weights the scaled specialty match.
	// Default: 0.25.
	Specialty float64 `json:"specialty"`
}

// ScoreScales are calibration constants, not derived values.
type ScoreScales struct {
	// Probability multiplies the success probability.
	// Default: 1e6.
	Probability float64 `json:"probability"`

	// Specialty multiplies the specialty match score.
	// Default: 1e5.
	Specialty float64 `json:"specialty"`
}

// TierThresholds are lower revenue bounds for each size tier.
type TierThresholds struct {
	// Small is the lower bound of TierSmall. Default: 10,000,000.
	Small float64 `json:"small"`
	// Medium is the lower bound of TierMedium. Default: 50,000,000.
	Medium float64 `json:"medium"`
	// Large is the lower bound of TierLarge. Default: 100,000,000.
	Large float64 `json:"large"`
}

// Classify returns the tier for a revenue total.
func (t TierThresholds) Classify(revenue float64) SizeTier {
	switch {
	case revenue >= t.Large:
		return TierLarge
	case revenue >= t.Medium:
		return TierMedium
	case revenue >= t.Small:
		return TierSmall
	default:
		return TierMicro
	}
}

// GroupConfig contains the weights of the model-free group ranking.
type GroupConfig struct {
	// SimilarityWeight, SpecialtyWeight and GrowthWeight blend the derived probability.
	// Defaults: 0.4, 0.3, 0.3.
	SimilarityWeight float64 `json:"similarity_weight"`
	SpecialtyWeight  float64 `json:"specialty_weight"`
	GrowthWeight     float64 `json:"growth_weight"`

	// MinProbability and MaxProbability clamp the derived probability.
	// Defaults: 0.1, 0.98.
	MinProbability float64 `json:"min_probability"`
	MaxProbability float64 `json:"max_probability"`

	// NoPeerSimilarity is used when no other account buys the group.
	// Default: 0.5.
	NoPeerSimilarity float64 `json:"no_peer_similarity"`

	// SortSpecialtyWeight and SortProbabilityWeight form the sort key.
	// Defaults: 0.4, 0.6.
	SortSpecialtyWeight   float64 `json:"sort_specialty_weight"`
	SortProbabilityWeight float64 `json:"sort_probability_weight"`
}

// PlanConfig controls sales plan generation.
type PlanConfig struct {
	// BucketSize is the number of accounts per month.
	// Default: 3.
	BucketSize int `json:"bucket_size"`

	// Horizon is the number of top recommendations spread across the plan.
	// Default: 10.
	Horizon int `json:"horizon"`

	// DefaultMonths is used when a request does not set the period.
	// Default: 3.
	DefaultMonths int `json:"default_months"`

	// MaxMonths caps the plan length.
	// Default: 24.
	MaxMonths int `json:"max_months"`
}

// TrainingConfig contains model training parameters.
type TrainingConfig struct {
	// MinSamples is the minimum number of observed (account, product) pairs.
	// Below it, training fails with InsufficientDataError.
	// Default: 10.
	MinSamples int `json:"min_samples"`

	// NegativeRatio is the number of unobserved pairs sampled per observed pair
	// as negative examples for the success model.
	// Default: 1.0.
	NegativeRatio float64 `json:"negative_ratio"`

	// Timeout is the maximum time allowed for a training run.
	// Default: 10m.
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	forest := learn.DefaultForestConfig()
	forest.Seed = 42

	return &Config{
		Weights: ScoreWeights{
			Revenue:     0.30,
			Probability: 0.25,
			Similarity:  0.20,
			Specialty:   0.25,
		},
		Scales: ScoreScales{
			Probability: 1e6,
			Specialty:   1e5,
		},
		Tiers: TierThresholds{
			Small:  10_000_000,
			Medium: 50_000_000,
			Large:  100_000_000,
		},
		Group: GroupConfig{
			SimilarityWeight:      0.4,
			SpecialtyWeight:       0.3,
			GrowthWeight:          0.3,
			MinProbability:        0.1,
			MaxProbability:        0.98,
			NoPeerSimilarity:      0.5,
			SortSpecialtyWeight:   0.4,
			SortProbabilityWeight: 0.6,
		},
		Plan: PlanConfig{
			BucketSize:    3,
			Horizon:       10,
			DefaultMonths: 3,
			MaxMonths:     24,
		},
		Training: TrainingConfig{
			MinSamples:    10,
			NegativeRatio: 1.0,
			Timeout:       10 * time.Minute,
		},
		Forest:        forest,
		Boosting:      learn.DefaultBoostingConfig(),
		NeighborCount: 10,
		DefaultTopN:   10,
		MaxTopN:       500,
		Seed:          42,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	w := c.Weights
	if w.Revenue < 0 || w.Probability < 0 || w.Similarity < 0 || w.Specialty < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}
	if w.Revenue+w.Probability+w.Similarity+w.Specialty == 0 {
		return fmt.Errorf("weights must not all be zero")
	}
	if c.Scales.Probability <= 0 {
		return fmt.Errorf("scales.probability must be positive, got %f", c.Scales.Probability)
	}
	if c.Scales.Specialty <= 0 {
		return fmt.Errorf("scales.specialty must be positive, got %f", c.Scales.Specialty)
	}
	if c.Tiers.Small <= 0 || c.Tiers.Medium < c.Tiers.Small || c.Tiers.Large < c.Tiers.Medium {
		return fmt.Errorf("tiers must be positive and ascending, got %+v", c.Tiers)
	}
	if c.Group.MinProbability < 0 || c.Group.MaxProbability > 1 || c.Group.MinProbability > c.Group.MaxProbability {
		return fmt.Errorf("group probability bounds must satisfy 0 <= min <= max <= 1, got [%f, %f]",
			c.Group.MinProbability, c.Group.MaxProbability)
	}
	if c.Plan.BucketSize < 1 {
		return fmt.Errorf("plan.bucket_size must be positive, got %d", c.Plan.BucketSize)
	}
	if c.Plan.Horizon < 1 {
		return fmt.Errorf("plan.horizon must be positive, got %d", c.Plan.Horizon)
	}
	if c.Plan.DefaultMonths < 1 || c.Plan.MaxMonths < c.Plan.DefaultMonths {
		return fmt.Errorf("plan months must satisfy 1 <= default <= max, got %d, %d", c.Plan.DefaultMonths, c.Plan.MaxMonths)
	}
	if c.Training.MinSamples < 1 {
		return fmt.Errorf("training.min_samples must be positive, got %d", c.Training.MinSamples)
	}
	if c.Training.NegativeRatio < 0 {
		return fmt.Errorf("training.negative_ratio must be non-negative, got %f", c.Training.NegativeRatio)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Forest.Trees < 1 {
		return fmt.Errorf("forest.trees must be positive, got %d", c.Forest.Trees)
	}
	if c.Boosting.Rounds < 1 {
		return fmt.Errorf("boosting.rounds must be positive, got %d", c.Boosting.Rounds)
	}
	if c.Boosting.LearningRate <= 0 || c.Boosting.LearningRate > 1 {
		return fmt.Errorf("boosting.learning_rate must be in (0, 1], got %f", c.Boosting.LearningRate)
	}
	if c.NeighborCount < 1 {
		return fmt.Errorf("neighbor_count must be positive, got %d", c.NeighborCount)
	}
	if c.DefaultTopN < 1 {
		return fmt.Errorf("default_top_n must be positive, got %d", c.DefaultTopN)
	}
	if c.MaxTopN < c.DefaultTopN {
		return fmt.Errorf("max_top_n must be >= default_top_n, got %d < %d", c.MaxTopN, c.DefaultTopN)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}
