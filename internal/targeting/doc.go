// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

/*
Package targeting ranks customer accounts to approach for a product group.

The package turns a set of historical sales transactions into a [State]:
customer and product profiles, an account x product interaction matrix
with cosine similarity, and optionally two trained models (a random-forest
revenue regressor and a gradient-boosted success classifier from the
learn subpackage).

# Ranking Paths

Two ranking paths share the same [Recommendation] output:

  - Model path ([State.RecommendTargets]): predicted revenue, success
    probability, neighbour similarity and specialty match are blended
    into a composite score with configurable weights and scales.
  - Group path ([State.RecommendTargetsForGroup]): a model-free heuristic
    over account profile vectors and specialty match. It is used when the
    models are not trained or there is too little data to train them.

[State.Recommend] picks the model path when available.

# Analytics

Besides ranking, a State answers market opportunity, monthly sales plan,
RFM segmentation, churn risk and cross-selling queries.

# Concurrency

A State is immutable and every query is safe for concurrent use.
[Engine] holds the published State behind an atomic pointer and
serialises rebuilds; a rebuild attempted while another runs fails with
[ErrTrainingInProgress].

# Usage

	engine, err := targeting.NewEngine(targeting.DefaultConfig(), logger)
	if err != nil {
	    return err
	}
	if err := engine.Reload(ctx, txns); err != nil {
	    return err
	}
	recs, mode, err := engine.Recommend(ctx, "아모잘탄", targeting.DefaultRecommendOptions())
*/
package targeting
