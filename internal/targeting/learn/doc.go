// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

// Package learn implements the tree-ensemble models used by the targeting engine.
//
// # Models
//
//   - Tree: a CART regression tree (variance-reduction splits)
//   - RandomForestRegressor: bagged regression trees, averaged
//   - GradientBoostingClassifier: log-loss boosting over regression trees
//
// # Determinism
//
// Every model takes an explicit seed. Each forest tree derives its own
// source from the base seed and its index, so parallel training yields the
// same ensemble as sequential training.
//
// # Cancellation
//
// Fit checks the context between trees (forest) and between rounds
// (boosting). A cancelled fit returns ctx.Err() and leaves the model
// untrained.
package learn
