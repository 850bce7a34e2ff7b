// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/salesradar/internal/config"
	"github.com/tomtom215/salesradar/internal/export"
	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/store"
	"github.com/tomtom215/salesradar/internal/targeting"
)

// exportOptions holds the command line flags.
type exportOptions struct {
	DataPath string
	Sheet    string
	OutDir   string
	Format   string
	TopN     int
	Months   int
	Train    bool
	LogLevel string
	Timeout  time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export targeting reports for every product group",
		Long: "Loads a CSV or XLSX sales export, builds the targeting engine and writes\n" +
			"one report per product group to the output directory.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.Init(logging.Config{Level: opts.LogLevel, Format: "console"})
			return runExport(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.DataPath, "data", "d", "data/sales.csv", "CSV or XLSX sales export")
	f.StringVar(&opts.Sheet, "sheet", "", "XLSX worksheet (default: first sheet)")
	f.StringVarP(&opts.OutDir, "out", "o", "reports", "output directory")
	f.StringVar(&opts.Format, "format", "xlsx", "report format: xlsx or json")
	f.IntVar(&opts.TopN, "top-n", export.DefaultOptions().TopN, "recommendations per group")
	f.IntVar(&opts.Months, "months", export.DefaultOptions().Months, "sales plan length in months")
	f.BoolVar(&opts.Train, "train", false, "train the predictive models before exporting")
	f.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.DurationVar(&opts.Timeout, "timeout", 30*time.Minute, "overall time limit")
	return cmd
}

func (o *exportOptions) validate() error {
	if o.Format != "xlsx" && o.Format != "json" {
		return fmt.Errorf("--format must be xlsx or json, got %q", o.Format)
	}
	if o.TopN < 1 || o.TopN > 500 {
		return fmt.Errorf("--top-n must be between 1 and 500, got %d", o.TopN)
	}
	if o.Months < 1 || o.Months > 24 {
		return fmt.Errorf("--months must be between 1 and 24, got %d", o.Months)
	}
	return nil
}

func runExport(parent context.Context, opts *exportOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	st, err := store.Open(&config.DatabaseConfig{}, store.WithSheet(opts.Sheet))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	ds, err := st.Load(ctx, opts.DataPath)
	if err != nil {
		return err
	}

	eng, err := targeting.NewEngine(targeting.DefaultConfig(), logging.WithComponent("targeting"))
	if err != nil {
		return fmt.Errorf("create targeting engine: %w", err)
	}
	if opts.Train {
		err = eng.Reload(ctx, ds.Transactions)
	} else {
		err = eng.LoadAndPrepare(ctx, ds.Transactions)
	}
	if err != nil {
		return fmt.Errorf("build targeting engine: %w", err)
	}

	files, err := export.ExportAll(ctx, eng, opts.OutDir, export.Options{
		TopN:   opts.TopN,
		Months: opts.Months,
		Format: opts.Format,
	})
	if err != nil {
		return err
	}
	logging.Info().
		Int("reports", len(files)).
		Int("transactions", len(ds.Transactions)).
		Int("skipped_rows", ds.Skipped).
		Str("dir", opts.OutDir).
		Msg("export complete")
	return nil
}
