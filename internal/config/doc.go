// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

/*
Package config provides centralized configuration management for Salesradar.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH, config.yaml or /etc/salesradar/config.yaml), then
mapped environment variables. The result is validated before it is returned.

# Sections

  - Data: the sales export path, reload interval, file watch and the
    reload circuit breaker
  - Database: DuckDB path (empty for in-memory), memory limit and threads
  - Targeting: engine weights, tiers, model sizes and plan bucketing
  - Cache: ranking result cache TTL and size
  - Server: HTTP bind address, timeouts and environment
  - Security: admin basic auth (bcrypt hash), rate limits and CORS
  - Logging: zerolog level, format and caller

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("failed to load config")
	}

Unmapped environment variables are ignored.
*/
package config
