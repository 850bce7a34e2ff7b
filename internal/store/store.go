// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

// Package store is the transaction store. It ingests the sales export (CSV
// through DuckDB's read_csv_auto, or XLSX through excelize) into a DuckDB
// table, normalises the source column names and returns typed transactions
// for the targeting engine.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/salesradar/internal/config"
	"github.com/tomtom215/salesradar/internal/logging"
)

const (
	rawTable  = "raw_transactions"
	mainTable = "transactions"
)

// Store wraps the DuckDB connection that holds the loaded dataset.
type Store struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// sheet is the worksheet read from XLSX inputs; empty means the first.
	sheet string

	// loadMu serialises loads because each one replaces both tables.
	loadMu sync.Mutex
}

// Option customises a Store.
type Option func(*Store)

// WithSheet selects the worksheet read from XLSX inputs.
func WithSheet(sheet string) Option {
	return func(s *Store) { s.sheet = sheet }
}

// Open opens DuckDB at cfg.Path, or in memory when the path is empty.
func Open(cfg *config.DatabaseConfig, opts ...Option) (*Store, error) {
	if cfg == nil {
		cfg = &config.DatabaseConfig{}
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	} else if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("duckdb", connString(path, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{conn: conn, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Debug().Str("path", path).Int("threads", cfg.Threads).Msg("Transaction store opened")
	return s, nil
}

// connString builds the DuckDB DSN. Extension autoloading is disabled so
// opening never reaches the network.
func connString(path string, cfg *config.DatabaseConfig) string {
	params := []string{
		"autoinstall_known_extensions=false",
		"autoload_known_extensions=false",
	}
	if cfg.Threads > 0 {
		params = append(params, fmt.Sprintf("threads=%d", cfg.Threads))
	}
	if cfg.MaxMemory != "" {
		params = append(params, "max_memory="+cfg.MaxMemory)
	}
	return path + "?" + strings.Join(params, "&")
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if s.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.conn.PingContext(ctx)
}

// Close closes the database. A file-backed store is checkpointed first.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if s.cfg.Path != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := s.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return s.conn.Close()
}

// Summary describes the currently loaded transactions table.
type Summary struct {
	Rows         int64   `json:"rows"`
	Accounts     int64   `json:"accounts"`
	Products     int64   `json:"products"`
	FirstPeriod  int64   `json:"first_period"`
	LastPeriod   int64   `json:"last_period"`
	TotalRevenue float64 `json:"total_revenue"`
}

// Summary aggregates the loaded table. It returns a zero Summary before the
// first load.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary

	var exists bool
	err := s.conn.QueryRowContext(ctx,
		"SELECT count(*) > 0 FROM information_schema.tables WHERE table_name = ?", mainTable).Scan(&exists)
	if err != nil {
		return sum, fmt.Errorf("check transactions table: %w", err)
	}
	if !exists {
		return sum, nil
	}

	var first, last sql.NullInt64
	var revenue sql.NullFloat64
	err = s.conn.QueryRowContext(ctx, `
		SELECT count(*), count(DISTINCT account_id), count(DISTINCT product_group),
		       min(period), max(period), sum(revenue)
		FROM `+mainTable).Scan(&sum.Rows, &sum.Accounts, &sum.Products, &first, &last, &revenue)
	if err != nil {
		return sum, fmt.Errorf("summarise transactions: %w", err)
	}
	sum.FirstPeriod, sum.LastPeriod, sum.TotalRevenue = first.Int64, last.Int64, revenue.Float64
	return sum, nil
}

// closeQuietly closes a resource on an error path where the Close error is
// not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
