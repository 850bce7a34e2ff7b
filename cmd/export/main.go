// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

// Command export writes a targeting report for every product group in a
// sales export, without starting the server:
//
//	export --data data/sales.xlsx --out reports --format xlsx --train
package main

import (
	"os"

	"github.com/tomtom215/salesradar/internal/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logging.Error().Err(err).Msg("export failed")
		os.Exit(1)
	}
}
