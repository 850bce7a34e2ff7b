// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

// Package export renders a product group's targeting report as an XLSX
// workbook or a JSON document. A report bundles the group recommendations,
// the market analysis and the sales plan.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/metrics"
	"github.com/tomtom215/salesradar/internal/targeting"
)

// Source is the subset of the targeting engine a report is built from.
type Source interface {
	RecommendTargetsForGroup(ctx context.Context, group string, opts targeting.RecommendOptions) ([]targeting.Recommendation, error)
	AnalyzeGroupMarketOpportunity(group string) (*targeting.MarketOpportunity, error)
	GenerateGroupSalesPlan(ctx context.Context, group string, months int) (*targeting.SalesPlan, error)
	ProductGroups() ([]string, error)
}

// Options controls report contents.
type Options struct {
	TopN   int
	Months int

	// Format is the ExportAll file format, "xlsx" (default) or "json".
	Format string
}

// DefaultOptions returns 50 recommendations and a 3 month plan.
func DefaultOptions() Options {
	return Options{TopN: 50, Months: 3}
}

// Report is one product group's targeting report.
type Report struct {
	ProductGroup    string                       `json:"product_group"`
	GeneratedAt     time.Time                    `json:"generated_at"`
	Recommendations []targeting.Recommendation   `json:"recommendations"`
	Market          *targeting.MarketOpportunity `json:"market"`
	Plan            *targeting.SalesPlan         `json:"plan"`
}

// BuildReport gathers a report for group. An unknown group fails with the
// engine's *targeting.UnknownEntityError.
func BuildReport(ctx context.Context, src Source, group string, opts Options) (*Report, error) {
	if opts.TopN <= 0 {
		opts.TopN = DefaultOptions().TopN
	}

	market, err := src.AnalyzeGroupMarketOpportunity(group)
	if err != nil {
		return nil, fmt.Errorf("market analysis: %w", err)
	}

	recOpts := targeting.DefaultRecommendOptions()
	recOpts.TopN = opts.TopN
	recs, err := src.RecommendTargetsForGroup(ctx, group, recOpts)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}

	plan, err := src.GenerateGroupSalesPlan(ctx, group, opts.Months)
	if err != nil {
		return nil, fmt.Errorf("sales plan: %w", err)
	}

	return &Report{
		ProductGroup:    group,
		GeneratedAt:     time.Now().UTC(),
		Recommendations: recs,
		Market:          market,
		Plan:            plan,
	}, nil
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	start := time.Now()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	metrics.RecordExport("json", time.Since(start))
	return nil
}

// ExportAll writes one report per product group into dir and returns the
// paths written. Groups that fail are logged and skipped.
func ExportAll(ctx context.Context, src Source, dir string, opts Options) ([]string, error) {
	groups, err := src.ProductGroups()
	if err != nil {
		return nil, err
	}
	ext := "xlsx"
	if opts.Format == "json" {
		ext = "json"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	logger := logging.WithComponent("export")
	var written []string
	used := make(map[string]bool, len(groups))
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path := filepath.Join(dir, uniqueFileName(used, group, ext))
		if err := exportFile(ctx, src, group, path, ext, opts); err != nil {
			logger.Warn().Err(err).Str("group", group).Msg("Skipping group export")
			continue
		}
		written = append(written, path)
	}
	logger.Info().Int("groups", len(groups)).Int("written", len(written)).Str("dir", dir).Msg("Reports exported")
	return written, nil
}

func exportFile(ctx context.Context, src Source, group, path, ext string, opts Options) error {
	r, err := BuildReport(ctx, src, group, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path) //nolint:gosec // path is built from a sanitised group name
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	write := WriteXLSX
	if ext == "json" {
		write = WriteJSON
	}
	if err := write(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// FileName builds a download file name for group, replacing characters that
// are unsafe in paths and headers.
func FileName(group, ext string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\n', '\r':
			return '_'
		}
		return r
	}, strings.TrimSpace(group))
	if clean == "" {
		clean = "report"
	}
	return "targeting_" + clean + "." + ext
}

// uniqueFileName returns FileName(group, ext), numbered from _2 when another
// group already sanitised to the same name. Names compare case-insensitively.
func uniqueFileName(used map[string]bool, group, ext string) string {
	name := FileName(group, ext)
	base := strings.TrimSuffix(name, "."+ext)
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s_%d.%s", base, n, ext)
	}
	used[strings.ToLower(name)] = true
	return name
}
