// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

/*
Package main is the entry point for the Salesradar server.

Salesradar ranks pharmaceutical sales accounts by their likelihood of adopting
a product group, estimates the untapped market for each group and phases the
best targets into a monthly sales plan. The sales history is a CSV or XLSX
export loaded into DuckDB.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("salesradar")
	├── DataSupervisor ("data-layer")
	│   └── Dataset reload service (startup load, file watch, schedule)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Event bus (dataset.rebuilt)
	│   └── Result cache janitor
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Store: in-memory or file-backed DuckDB
 4. Targeting engine
 5. Result cache and event bus
 6. Supervisor tree and HTTP server

Every engine rebuild publishes a dataset.rebuilt event; the cache subscriber
clears the result cache and the engine gauges are refreshed.

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	DATA_PATH=data/sales.csv     # CSV or XLSX sales export
	DATA_SHEET=                  # XLSX worksheet, default first sheet
	DATA_TRAIN_ON_LOAD=true      # train the predictive models after each load
	DATA_WATCH=true              # reload when the file changes
	DATA_RELOAD_INTERVAL=0       # periodic reload, 0 disables
	DUCKDB_PATH=                 # empty keeps the store in memory
	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	ADMIN_USERNAME=admin         # enables POST /api/admin/reload
	ADMIN_PASSWORD_HASH=<bcrypt>

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests (HTTP_SHUTDOWN_TIMEOUT)
 3. Stops the reload service, event bus and cache janitor
 4. Closes the DuckDB store
 5. Reports any services that failed to stop
*/
package main
