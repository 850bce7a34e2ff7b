// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateTargeting(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateData() error {
	if strings.TrimSpace(c.Data.Path) == "" {
		return fmt.Errorf("DATA_PATH is required")
	}
	if c.Data.ReloadInterval < 0 {
		return fmt.Errorf("DATA_RELOAD_INTERVAL must not be negative")
	}
	if c.Data.ReloadInterval > 0 && c.Data.ReloadInterval < time.Minute {
		return fmt.Errorf("DATA_RELOAD_INTERVAL must be at least 1m, got %v", c.Data.ReloadInterval)
	}
	if c.Data.BreakerFailures == 0 {
		return fmt.Errorf("DATA_BREAKER_FAILURES must be positive")
	}
	if c.Data.BreakerTimeout <= 0 {
		return fmt.Errorf("DATA_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

// validateTargeting checks the ranges the engine would otherwise reject at startup.
func (c *Config) validateTargeting() error {
	t := c.Targeting
	positive := []struct {
		name  string
		value int
	}{
		{"TARGETING_NEIGHBOR_COUNT", t.NeighborCount},
		{"TARGETING_DEFAULT_TOP_N", t.DefaultTopN},
		{"TARGETING_MIN_SAMPLES", t.MinSamples},
		{"TARGETING_FOREST_TREES", t.ForestTrees},
		{"TARGETING_BOOSTING_ROUNDS", t.BoostingRounds},
		{"TARGETING_PLAN_HORIZON", t.PlanHorizon},
		{"TARGETING_PLAN_BUCKET_SIZE", t.PlanBucketSize},
		{"TARGETING_PLAN_MAX_MONTHS", t.PlanMaxMonths},
	}
	for _, p := range positive {
		if p.value < 1 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}
	if t.MaxTopN < t.DefaultTopN {
		return fmt.Errorf("TARGETING_MAX_TOP_N must be >= TARGETING_DEFAULT_TOP_N")
	}
	if t.Workers < 0 {
		return fmt.Errorf("TARGETING_WORKERS must not be negative")
	}
	if t.WeightRevenue < 0 || t.WeightProbability < 0 || t.WeightSimilarity < 0 || t.WeightSpecialty < 0 {
		return fmt.Errorf("targeting weights must not be negative")
	}
	if t.TierSmall <= 0 || t.TierMedium < t.TierSmall || t.TierLarge < t.TierMedium {
		return fmt.Errorf("targeting tiers must be positive and ascending")
	}
	if t.BoostingLearningRate <= 0 || t.BoostingLearningRate > 1 {
		return fmt.Errorf("TARGETING_BOOSTING_LEARNING_RATE must be in (0, 1]")
	}
	if t.NegativeRatio < 0 {
		return fmt.Errorf("TARGETING_NEGATIVE_RATIO must not be negative")
	}
	if t.TrainTimeout <= 0 {
		return fmt.Errorf("TARGETING_TRAIN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when the cache is enabled")
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be positive when the cache is enabled")
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if err := c.validateAdminCredentials(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateAdminCredentials requires a bcrypt hash whenever an admin user is set.
// Production refuses to run without admin credentials.
func (c *Config) validateAdminCredentials() error {
	s := c.Security
	if s.AdminUsername == "" {
		if c.IsProduction() {
			return fmt.Errorf("ADMIN_USERNAME is required when ENVIRONMENT=production")
		}
		return nil
	}
	if s.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required when ADMIN_USERNAME is set")
	}
	if _, err := bcrypt.Cost([]byte(s.AdminPasswordHash)); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash: %w", err)
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
