// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/salesradar/internal/config"
	"github.com/tomtom215/salesradar/internal/metrics"
	"github.com/tomtom215/salesradar/internal/store"
	"github.com/tomtom215/salesradar/internal/targeting"
)

// Reload triggers, used as the metrics label.
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerWatch    = "watch"
	TriggerAdmin    = "admin"
)

const breakerName = "dataset-loader"

// ErrReloadRejected is returned while the loader circuit breaker is open.
var ErrReloadRejected = errors.New("dataset reload rejected: loader circuit open")

// DatasetLoader reads the sales export. Satisfied by *store.Store.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*store.Dataset, error)
}

// TargetingEngine is the part of *targeting.Engine the reload loop drives.
type TargetingEngine interface {
	LoadAndPrepare(ctx context.Context, txns []targeting.Transaction) error
	Reload(ctx context.Context, txns []targeting.Transaction) error
}

// ReloadServiceConfig holds configuration for the reload service.
type ReloadServiceConfig struct {
	// Path is the CSV or XLSX sales export.
	Path string

	// LoadOnStartup loads the dataset when the service starts.
	LoadOnStartup bool

	// TrainOnLoad trains the predictive models after each load. When false
	// only profiles are rebuilt and ranking uses the group path.
	TrainOnLoad bool

	// Interval is the scheduled reload period. Zero disables it.
	Interval time.Duration

	// Watch reloads when the data file changes.
	Watch bool

	// BreakerFailures consecutive load failures open the circuit breaker.
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration

	// Timeout bounds a single load plus rebuild.
	Timeout time.Duration
}

// ReloadServiceConfigFrom maps the data section of the application config.
func ReloadServiceConfigFrom(cfg *config.DataConfig) ReloadServiceConfig {
	return ReloadServiceConfig{
		Path:            cfg.Path,
		LoadOnStartup:   cfg.LoadOnStartup,
		TrainOnLoad:     cfg.TrainOnLoad,
		Interval:        cfg.ReloadInterval,
		Watch:           cfg.Watch,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	}
}

// ReloadService keeps the targeting engine in sync with the data file. It
// loads on startup, on a schedule, on file change and on demand. Loads go
// through a circuit breaker so a broken file is not re-read on every tick.
type ReloadService struct {
	loader  DatasetLoader
	engine  TargetingEngine
	config  ReloadServiceConfig
	logger  zerolog.Logger
	breaker *gobreaker.CircuitBreaker[*store.Dataset]
	trigger chan string
	name    string

	// runMu serialises reloads from the loop and from ReloadNow.
	runMu sync.Mutex
}

// NewReloadService creates the reload service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReloadService(loader DatasetLoader, engine TargetingEngine, cfg ReloadServiceConfig, logger zerolog.Logger) *ReloadService {
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 3
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}

	s := &ReloadService{
		loader:  loader,
		engine:  engine,
		config:  cfg,
		logger:  logger.With().Str("service", "reload").Logger(),
		trigger: make(chan string, 1),
		name:    "reload-service",
	}
	s.breaker = gobreaker.NewCircuitBreaker[*store.Dataset](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
			s.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Loader circuit breaker state changed")
		},
	})
	metrics.SetCircuitBreakerState(breakerName, int(gobreaker.StateClosed))
	return s
}

// Serve implements suture.Service.
func (s *ReloadService) Serve(ctx context.Context) error {
	s.logger.Info().
		Str("path", s.config.Path).
		Bool("load_on_startup", s.config.LoadOnStartup).
		Dur("interval", s.config.Interval).
		Bool("watch", s.config.Watch).
		Msg("reload service starting")

	if s.config.LoadOnStartup {
		if _, err := s.reload(ctx, TriggerStartup); err != nil {
			s.logger.Warn().Err(err).Msg("initial dataset load failed (will retry on trigger)")
		}
	}

	if s.config.Watch && s.config.Path != "" {
		stop, err := config.WatchFile(s.config.Path, func() { s.Trigger(TriggerWatch) }, func(err error) {
			s.logger.Warn().Err(err).Msg("data file watch error")
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("data file watch unavailable")
		} else {
			defer func() { _ = stop() }()
		}
	}

	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reload service shutting down")
			return ctx.Err()
		case <-tick:
			if _, err := s.reload(ctx, TriggerSchedule); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled reload failed")
			}
		case reason := <-s.trigger:
			if _, err := s.reload(ctx, reason); err != nil {
				s.logger.Warn().Err(err).Str("trigger", reason).Msg("triggered reload failed")
			}
		}
	}
}

// Trigger asks the running service to reload. Triggers arriving while one
// is already pending are coalesced.
func (s *ReloadService) Trigger(reason string) {
	select {
	case s.trigger <- reason:
	default:
	}
}

// ReloadNow loads and rebuilds synchronously and returns the elapsed time.
func (s *ReloadService) ReloadNow(ctx context.Context) (time.Duration, error) {
	return s.reload(ctx, TriggerAdmin)
}

// Path is the data file being served.
func (s *ReloadService) Path() string {
	return s.config.Path
}

func (s *ReloadService) reload(ctx context.Context, trigger string) (time.Duration, error) {
	if s.config.Path == "" {
		return 0, fmt.Errorf("no data path configured")
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	err := s.run(ctx)
	took := time.Since(start)

	switch {
	case err == nil:
		metrics.RecordReload(trigger, "success")
		s.logger.Info().Str("trigger", trigger).Dur("duration", took).Msg("dataset reloaded")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordReload(trigger, "rejected")
		err = fmt.Errorf("%w: %v", ErrReloadRejected, err)
	case errors.Is(err, targeting.ErrTrainingInProgress):
		metrics.RecordReload(trigger, "busy")
	default:
		metrics.RecordReload(trigger, "failure")
	}
	return took, err
}

func (s *ReloadService) run(ctx context.Context) error {
	ds, err := s.breaker.Execute(func() (*store.Dataset, error) {
		return s.loader.Load(ctx, s.config.Path)
	})
	if err != nil {
		return err
	}
	if s.config.TrainOnLoad {
		return s.engine.Reload(ctx, ds.Transactions)
	}
	return s.engine.LoadAndPrepare(ctx, ds.Transactions)
}

// String returns the service name for logging.
func (s *ReloadService) String() string {
	return s.name
}
