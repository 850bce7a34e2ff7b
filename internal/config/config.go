// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package config

import "time"

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Database  DatabaseConfig  `koanf:"database"`
	Targeting TargetingConfig `koanf:"targeting"`
	Cache     CacheConfig     `koanf:"cache"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DataConfig describes the sales dataset and how it is refreshed.
//
// Environment Variables:
//   - DATA_PATH: CSV or XLSX sales export (default: data/sales.csv)
//   - DATA_RELOAD_INTERVAL: periodic reload, 0 disables (default: 0)
//   - DATA_WATCH: reload when the file changes (default: true)
//   - DATA_TRAIN_ON_LOAD: train the models after every load (default: true)
type DataConfig struct {
	Path           string        `koanf:"path"`
	LoadOnStartup  bool          `koanf:"load_on_startup"`
	TrainOnLoad    bool          `koanf:"train_on_load"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
	Watch          bool          `koanf:"watch"`

	// Sheet is the worksheet read from XLSX inputs. Empty means the first sheet.
	Sheet string `koanf:"sheet"`

	// BreakerFailures is the number of consecutive failed loads that opens
	// the reload circuit breaker.
	BreakerFailures uint32 `koanf:"breaker_failures"`

	// BreakerTimeout is how long the breaker stays open before a trial load.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// DatabaseConfig holds DuckDB settings for the transaction store.
type DatabaseConfig struct {
	// Path is the DuckDB file. Empty keeps the store in memory.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// TargetingConfig holds the tunable parts of the targeting engine.
type TargetingConfig struct {
	NeighborCount int   `koanf:"neighbor_count"`
	DefaultTopN   int   `koanf:"default_top_n"`
	MaxTopN       int   `koanf:"max_top_n"`
	Workers       int   `koanf:"workers"` // 0 = GOMAXPROCS
	Seed          int64 `koanf:"seed"`

	// Composite score weights.
	WeightRevenue     float64 `koanf:"weight_revenue"`
	WeightProbability float64 `koanf:"weight_probability"`
	WeightSimilarity  float64 `koanf:"weight_similarity"`
	WeightSpecialty   float64 `koanf:"weight_specialty"`

	// Size tier lower bounds in won.
	TierSmall  float64 `koanf:"tier_small"`
	TierMedium float64 `koanf:"tier_medium"`
	TierLarge  float64 `koanf:"tier_large"`

	MinSamples    int           `koanf:"min_samples"`
	NegativeRatio float64       `koanf:"negative_ratio"`
	TrainTimeout  time.Duration `koanf:"train_timeout"`

	ForestTrees          int     `koanf:"forest_trees"`
	ForestMaxDepth       int     `koanf:"forest_max_depth"`
	BoostingRounds       int     `koanf:"boosting_rounds"`
	BoostingLearningRate float64 `koanf:"boosting_learning_rate"`
	BoostingMaxDepth     int     `koanf:"boosting_max_depth"`

	PlanHorizon    int `koanf:"plan_horizon"`
	PlanBucketSize int `koanf:"plan_bucket_size"`
	PlanMaxMonths  int `koanf:"plan_max_months"`
}

// CacheConfig controls the ranking result cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// SecurityConfig holds admin authentication and request limiting settings.
type SecurityConfig struct {
	// AdminUsername and AdminPasswordHash protect the admin endpoints with
	// HTTP basic auth. The hash is bcrypt. Empty username disables them.
	AdminUsername     string `koanf:"admin_username"`
	AdminPasswordHash string `koanf:"admin_password_hash"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// AdminEnabled reports whether admin endpoints are configured.
func (s SecurityConfig) AdminEnabled() bool {
	return s.AdminUsername != ""
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from all sources in order:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
