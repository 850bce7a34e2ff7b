// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/salesradar/config.yaml",
	"/etc/salesradar/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path:            "data/sales.csv",
			LoadOnStartup:   true,
			TrainOnLoad:     true,
			ReloadInterval:  0, // file watch only
			Watch:           true,
			BreakerFailures: 3,
			BreakerTimeout:  5 * time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "", // in-memory
			MaxMemory: "1GB",
			Threads:   0,
		},
		Targeting: TargetingConfig{
			NeighborCount:        10,
			DefaultTopN:          10,
			MaxTopN:              500,
			Workers:              0,
			Seed:                 42,
			WeightRevenue:        0.30,
			WeightProbability:    0.25,
			WeightSimilarity:     0.20,
			WeightSpecialty:      0.25,
			TierSmall:            10_000_000,
			TierMedium:           50_000_000,
			TierLarge:            100_000_000,
			MinSamples:           10,
			NegativeRatio:        1.0,
			TrainTimeout:         10 * time.Minute,
			ForestTrees:          100,
			ForestMaxDepth:       12,
			BoostingRounds:       100,
			BoostingLearningRate: 0.1,
			BoostingMaxDepth:     3,
			PlanHorizon:          10,
			PlanBucketSize:       3,
			PlanMaxMonths:        24,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 1000,
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         60 * time.Second, // model-path ranking on large datasets
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Data mappings
	"data_path":             "data.path",
	"data_load_on_startup":  "data.load_on_startup",
	"data_train_on_load":    "data.train_on_load",
	"data_reload_interval":  "data.reload_interval",
	"data_watch":            "data.watch",
	"data_sheet":            "data.sheet",
	"data_breaker_failures": "data.breaker_failures",
	"data_breaker_timeout":  "data.breaker_timeout",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Targeting mappings
	"targeting_neighbor_count":         "targeting.neighbor_count",
	"targeting_default_top_n":          "targeting.default_top_n",
	"targeting_max_top_n":              "targeting.max_top_n",
	"targeting_workers":                "targeting.workers",
	"targeting_seed":                   "targeting.seed",
	"targeting_weight_revenue":         "targeting.weight_revenue",
	"targeting_weight_probability":     "targeting.weight_probability",
	"targeting_weight_similarity":      "targeting.weight_similarity",
	"targeting_weight_specialty":       "targeting.weight_specialty",
	"targeting_min_samples":            "targeting.min_samples",
	"targeting_negative_ratio":         "targeting.negative_ratio",
	"targeting_train_timeout":          "targeting.train_timeout",
	"targeting_forest_trees":           "targeting.forest_trees",
	"targeting_forest_max_depth":       "targeting.forest_max_depth",
	"targeting_boosting_rounds":        "targeting.boosting_rounds",
	"targeting_boosting_learning_rate": "targeting.boosting_learning_rate",
	"targeting_boosting_max_depth":     "targeting.boosting_max_depth",
	"targeting_plan_horizon":           "targeting.plan_horizon",
	"targeting_plan_bucket_size":       "targeting.plan_bucket_size",
	"targeting_plan_max_months":        "targeting.plan_max_months",

	// Cache mappings
	"cache_enabled":     "cache.enabled",
	"cache_ttl":         "cache.ttl",
	"cache_max_entries": "cache.max_entries",

	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Security mappings
	"admin_username":      "security.admin_username",
	"admin_password_hash": "security.admin_password_hash",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DATA_PATH -> data.path
//   - HTTP_PORT -> server.port
//   - TARGETING_FOREST_TREES -> targeting.forest_trees
func envTransformFunc(key string) string {
	// Unmapped keys return "" so random environment variables are skipped.
	return envMappings[strings.ToLower(key)]
}

// WatchFile calls callback whenever the file at path changes. Watch errors
// are passed to onError when it is non-nil.
func WatchFile(path string, callback func(), onError func(error)) (stop func() error, err error) {
	provider := file.Provider(path)
	err = provider.Watch(func(_ interface{}, werr error) {
		if werr != nil {
			if onError != nil {
				onError(werr)
			}
			return
		}
		callback()
	})
	if err != nil {
		return nil, err
	}
	return provider.Unwatch, nil
}
