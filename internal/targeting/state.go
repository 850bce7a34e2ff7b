// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"fmt"
	"time"
)

// State is the derived view of one transaction set: profiles, the
// interaction matrix and, once trained, the predictive models.
//
// A State is never modified after construction. Every query method is
// read-only and safe for concurrent use; rebuilding produces a new State.
type State struct {
	config     *Config
	preparedAt time.Time

	ds        *dataset
	customers []CustomerProfile
	products  []ProductProfile
	matrix    *InteractionMatrix
	regional  map[regionProduct]float64
	managers  []string

	models *Models

	// version is set by Engine when the state is published.
	version int64
}

// Prepare indexes the transactions and builds every profile and the
// interaction matrix. The models are not trained; see WithModels.
func Prepare(ctx context.Context, cfg *Config, txns []Transaction) (*State, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ds, err := indexTransactions(txns)
	if err != nil {
		return nil, err
	}

	customers, err := buildCustomerProfiles(ctx, ds, cfg)
	if err != nil {
		return nil, fmt.Errorf("customer profiles: %w", err)
	}
	products, err := buildProductProfiles(ctx, ds, cfg)
	if err != nil {
		return nil, fmt.Errorf("product profiles: %w", err)
	}
	matrix, err := buildInteractionMatrix(ctx, ds, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("interaction matrix: %w", err)
	}

	return &State{
		config:     cfg.Clone(),
		preparedAt: time.Now(),
		ds:         ds,
		customers:  customers,
		products:   products,
		matrix:     matrix,
		regional:   ds.regionalDemand(),
		managers:   distinctManagers(ds),
	}, nil
}

// WithModels trains both models and returns a new State carrying them.
// The receiver is unchanged. Training is bounded by Training.Timeout.
func (s *State) WithModels(ctx context.Context) (*State, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Training.Timeout)
	defer cancel()

	models, err := trainModels(ctx, s)
	if err != nil {
		return nil, err
	}
	next := *s
	next.models = models
	return &next, nil
}

func distinctManagers(ds *dataset) []string {
	seen := make(map[string]struct{})
	managers := make([]string, 0)
	for _, t := range ds.txns {
		if t.Manager == "" {
			continue
		}
		if _, ok := seen[t.Manager]; ok {
			continue
		}
		seen[t.Manager] = struct{}{}
		managers = append(managers, t.Manager)
	}
	return managers
}

// pairFeatures is the model input for account index a and product index p.
func (s *State) pairFeatures(a, p int) []float64 {
	c := &s.customers[a]
	prod := &s.products[p]
	regional := s.regional[regionProduct{region: c.Region, product: prod.Product}]
	return featureVector(c, prod, regional)
}

// Config returns the configuration the state was built with.
func (s *State) Config() *Config { return s.config }

// PreparedAt returns the build time.
func (s *State) PreparedAt() time.Time { return s.preparedAt }

// Models returns the trained models, or nil.
func (s *State) Models() *Models { return s.models }

// ModelsTrained reports whether the model ranking path is available.
func (s *State) ModelsTrained() bool { return s.models != nil }

// Matrix returns the interaction matrix.
func (s *State) Matrix() *InteractionMatrix { return s.matrix }

// TransactionCount returns the number of rows kept after filtering.
func (s *State) TransactionCount() int { return len(s.ds.txns) }

// SkippedRows returns the number of rows dropped for non-positive revenue.
func (s *State) SkippedRows() int { return s.ds.skipped }

// Periods returns the distinct periods in ascending order.
func (s *State) Periods() []Period { return s.ds.periods }

// ProductGroups returns the product groups in first-appearance order.
func (s *State) ProductGroups() []string { return s.ds.products }

// Version returns the engine version this state was published as, or 0
// for a state that was never published.
func (s *State) Version() int64 { return s.version }

// Managers returns the distinct sales managers in first-appearance order.
func (s *State) Managers() []string { return s.managers }

// Customers returns all customer profiles in account order.
func (s *State) Customers() []CustomerProfile { return s.customers }

// Products returns all product profiles in product order.
func (s *State) Products() []ProductProfile { return s.products }

// Customer returns the profile for an account.
func (s *State) Customer(accountID string) (CustomerProfile, bool) {
	i, ok := s.ds.accountIndex[accountID]
	if !ok {
		return CustomerProfile{}, false
	}
	return s.customers[i], true
}

// Product returns the profile for a product group.
func (s *State) Product(product string) (ProductProfile, bool) {
	i, ok := s.ds.productIndex[product]
	if !ok {
		return ProductProfile{}, false
	}
	return s.products[i], true
}

// resolveTopN applies the default and the cap to a requested result size.
func (s *State) resolveTopN(n int) int {
	if n <= 0 {
		return s.config.DefaultTopN
	}
	return min(n, s.config.MaxTopN)
}

// purchased reports whether account a has revenue for product p.
func (s *State) purchased(a, p int) bool {
	return s.matrix.valueAt(a, p) > 0
}
