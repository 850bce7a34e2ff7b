// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// RebuildListener is notified after a new State has been published.
type RebuildListener func(ctx context.Context, status Status)

// Engine owns the current State and serialises rebuilds.
// It is safe for concurrent use: queries read the published State while
// at most one rebuild runs.
type Engine struct {
	config *Config
	logger zerolog.Logger

	state   atomic.Pointer[State]
	buildMu sync.Mutex
	version atomic.Int64

	training atomic.Bool

	statusMu  sync.RWMutex
	lastError string
	prepareMS int64
	trainMS   int64

	listenersMu sync.RWMutex
	listeners   []RebuildListener
}

// NewEngine creates an engine with no dataset.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "targeting").Logger(),
	}, nil
}

// OnRebuilt registers a listener called after every successful rebuild.
func (e *Engine) OnRebuilt(fn RebuildListener) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// State returns the published state or ErrNotPrepared.
func (e *Engine) State() (*State, error) {
	s := e.state.Load()
	if s == nil {
		return nil, ErrNotPrepared
	}
	return s, nil
}

// LoadAndPrepare builds profiles and the interaction matrix for txns and
// replaces the current state. Previously trained models are discarded.
func (e *Engine) LoadAndPrepare(ctx context.Context, txns []Transaction) error {
	if err := e.acquireBuildLock(); err != nil {
		return err
	}
	defer e.releaseBuildLock()

	s, err := e.prepare(ctx, txns)
	if err != nil {
		return err
	}
	e.publish(ctx, s)
	return nil
}

// BuildPredictiveModels trains both models on the current dataset and
// publishes a state carrying them.
func (e *Engine) BuildPredictiveModels(ctx context.Context) error {
	if err := e.acquireBuildLock(); err != nil {
		return err
	}
	defer e.releaseBuildLock()

	cur := e.state.Load()
	if cur == nil {
		return ErrNotPrepared
	}
	next, err := e.train(ctx, cur)
	if err != nil {
		return err
	}
	e.publish(ctx, next)
	return nil
}

// Reload prepares txns and trains the models in one rebuild. When there is
// too little data to train, the prepared state is published without models
// and ranking uses the group path.
func (e *Engine) Reload(ctx context.Context, txns []Transaction) error {
	if err := e.acquireBuildLock(); err != nil {
		return err
	}
	defer e.releaseBuildLock()

	s, err := e.prepare(ctx, txns)
	if err != nil {
		return err
	}

	trained, err := e.train(ctx, s)
	switch {
	case err == nil:
		s = trained
	case IsInsufficientData(err):
		e.logger.Warn().Err(err).Msg("predictive models unavailable, using group ranking")
	default:
		return err
	}
	e.publish(ctx, s)
	return nil
}

func (e *Engine) acquireBuildLock() error {
	if !e.buildMu.TryLock() {
		return ErrTrainingInProgress
	}
	e.training.Store(true)
	return nil
}

func (e *Engine) releaseBuildLock() {
	e.training.Store(false)
	e.buildMu.Unlock()
}

func (e *Engine) prepare(ctx context.Context, txns []Transaction) (*State, error) {
	start := time.Now()
	e.logger.Info().Int("rows", len(txns)).Msg("preparing dataset")

	s, err := Prepare(ctx, e.config, txns)
	if err != nil {
		e.recordError(err)
		return nil, err
	}

	elapsed := time.Since(start)
	e.statusMu.Lock()
	e.prepareMS = elapsed.Milliseconds()
	e.trainMS = 0
	e.statusMu.Unlock()

	e.logger.Info().
		Int("transactions", s.TransactionCount()).
		Int("skipped", s.SkippedRows()).
		Int("accounts", len(s.customers)).
		Int("products", len(s.products)).
		Dur("duration", elapsed).
		Msg("dataset prepared")
	return s, nil
}

func (e *Engine) train(ctx context.Context, s *State) (*State, error) {
	start := time.Now()
	e.logger.Info().Msg("starting model training")

	next, err := s.WithModels(ctx)
	if err != nil {
		e.recordError(err)
		return nil, err
	}

	elapsed := time.Since(start)
	e.statusMu.Lock()
	e.trainMS = elapsed.Milliseconds()
	e.statusMu.Unlock()

	e.logger.Info().
		Int("samples", next.models.Samples).
		Int("negatives", next.models.Negatives).
		Dur("duration", elapsed).
		Msg("model training complete")
	return next, nil
}

func (e *Engine) recordError(err error) {
	e.statusMu.Lock()
	e.lastError = err.Error()
	e.statusMu.Unlock()
	e.logger.Error().Err(err).Msg("rebuild failed")
}

// publish runs under the build lock. The version is stamped on the state
// before it becomes visible, so a reader never sees a state without its
// version.
func (e *Engine) publish(ctx context.Context, s *State) {
	s.version = e.version.Load() + 1
	e.state.Store(s)
	e.version.Store(s.version)

	e.statusMu.Lock()
	e.lastError = ""
	e.statusMu.Unlock()

	status := e.Status()
	e.listenersMu.RLock()
	listeners := append([]RebuildListener(nil), e.listeners...)
	e.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, status)
	}
}

// Status reports the published state and the last rebuild outcome.
func (e *Engine) Status() Status {
	e.statusMu.RLock()
	st := Status{
		Training:  e.training.Load(),
		Version:   e.version.Load(),
		PrepareMS: e.prepareMS,
		TrainMS:   e.trainMS,
		LastError: e.lastError,
	}
	e.statusMu.RUnlock()

	s := e.state.Load()
	if s == nil {
		return st
	}
	st.Prepared = true
	st.Version = s.version
	st.Transactions = s.TransactionCount()
	st.SkippedRows = s.SkippedRows()
	st.Accounts = len(s.customers)
	st.Products = len(s.products)
	st.PreparedAt = s.preparedAt
	if s.models != nil {
		st.ModelsTrained = true
		st.TrainingSamples = s.models.Samples
		st.TrainedAt = s.models.TrainedAt
	}
	return st
}

// RecommendTargets ranks with the trained models. See State.RecommendTargets.
func (e *Engine) RecommendTargets(ctx context.Context, product string, opts RecommendOptions) ([]Recommendation, error) {
	s, err := e.State()
	if err != nil {
		return []Recommendation{}, err
	}
	return s.RecommendTargets(ctx, product, opts)
}

// RecommendTargetsForGroup ranks with the group path.
func (e *Engine) RecommendTargetsForGroup(ctx context.Context, group string, opts RecommendOptions) ([]Recommendation, error) {
	s, err := e.State()
	if err != nil {
		return []Recommendation{}, err
	}
	return s.RecommendTargetsForGroup(ctx, group, opts)
}

// Recommend ranks with the models when trained and the group path otherwise.
func (e *Engine) Recommend(ctx context.Context, product string, opts RecommendOptions) ([]Recommendation, RankingMode, error) {
	s, err := e.State()
	if err != nil {
		return []Recommendation{}, ModeGroup, err
	}
	return s.Recommend(ctx, product, opts)
}

// AnalyzeMarketOpportunity delegates to the current state.
func (e *Engine) AnalyzeMarketOpportunity(product string) (*MarketOpportunity, error) {
	s, err := e.State()
	if err != nil {
		return nil, err
	}
	return s.AnalyzeMarketOpportunity(product)
}

// AnalyzeGroupMarketOpportunity delegates to the current state.
func (e *Engine) AnalyzeGroupMarketOpportunity(group string) (*MarketOpportunity, error) {
	s, err := e.State()
	if err != nil {
		return nil, err
	}
	return s.AnalyzeGroupMarketOpportunity(group)
}

// GenerateGroupSalesPlan delegates to the current state.
func (e *Engine) GenerateGroupSalesPlan(ctx context.Context, group string, months int) (*SalesPlan, error) {
	s, err := e.State()
	if err != nil {
		return nil, err
	}
	return s.GenerateGroupSalesPlan(ctx, group, months)
}

// Segments delegates to the current state.
func (e *Engine) Segments(ctx context.Context) ([]CustomerSegment, error) {
	s, err := e.State()
	if err != nil {
		return nil, err
	}
	return s.Segments(ctx)
}

// ProductGroups returns the product groups of the current state.
func (e *Engine) ProductGroups() ([]string, error) {
	s, err := e.State()
	if err != nil {
		return nil, err
	}
	return s.ProductGroups(), nil
}

// Managers returns the sales managers of the current state.
func (e *Engine) Managers() ([]string, error) {
	s, err := e.State()
	if err != nil {
		return nil, err
	}
	return s.Managers(), nil
}
