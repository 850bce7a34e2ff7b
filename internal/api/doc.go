// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

/*
Package api serves the targeting engine over HTTP.

Routes are registered on a chi router (router.go). Every response uses the
models.APIResponse envelope:

	GET  /health                    engine state and uptime
	GET  /metrics                   Prometheus
	GET  /api/products              product groups
	GET  /api/products/summary      per-group revenue, growth and share
	GET  /api/managers              sales managers
	GET  /api/managers/{m}/recommendations
	                                top targets per product of one manager
	POST /api/recommend             group ranking
	POST /api/recommend/product     model ranking with group fallback
	GET  /api/market/{group}        market opportunity (mode=group|product)
	GET  /api/plan/{group}          sales plan (months=N, mode=group|product)
	GET  /api/segments              RFM segments
	GET  /api/churn                 churn risks
	GET  /api/cross-sell            cross-sell opportunities
	GET  /api/recommendations       sales playbook
	GET  /api/action-plan           monthly action plan (month=YYYY-MM)
	GET  /api/export/{file}         report as .xlsx or .json
	POST /api/admin/reload          reload the dataset (basic auth)

Engine errors are mapped to status codes in one place (respondEngineError):
unknown product groups and managers are 404, invalid parameters 400, an unprepared engine
503 and a rebuild in progress 409.

Every engine result is cached per engine state version when a cache is
configured. The cache is cleared on every rebuild by the event bus
subscriber wired in cmd/server.
*/
package api
