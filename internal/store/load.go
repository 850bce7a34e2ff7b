// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/metrics"
	"github.com/tomtom215/salesradar/internal/targeting"
)

// ErrMissingColumns is wrapped when required source columns are absent.
var ErrMissingColumns = errors.New("missing required columns")

// ErrUnsupportedFormat is wrapped for inputs that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Dataset is the result of a Load.
type Dataset struct {
	Source       string
	Transactions []targeting.Transaction
	// TotalRows counts data rows in the source file.
	TotalRows int
	// Skipped counts rows dropped for a missing key, an invalid period or
	// non-positive revenue.
	Skipped  int
	LoadedAt time.Time
	// Columns lists the canonical column names found in the source.
	Columns []string
}

// Load ingests the CSV or XLSX file at path, replacing any previously loaded
// data, and returns its usable transactions in file order. All failures are
// returned as *targeting.DataLoadError.
func (s *Store) Load(ctx context.Context, path string) (*Dataset, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	start := time.Now()
	ds, err := s.load(ctx, path)
	metrics.RecordDBQuery("load", time.Since(start), err)
	if err != nil {
		return nil, &targeting.DataLoadError{Source: path, Err: err}
	}
	metrics.RecordDatasetLoad(len(ds.Transactions), ds.Skipped)

	logging.Info().
		Str("source", path).
		Int("rows", ds.TotalRows).
		Int("loaded", len(ds.Transactions)).
		Int("skipped", ds.Skipped).
		Dur("duration", time.Since(start)).
		Msg("Dataset loaded")
	return ds, nil
}

func (s *Store) load(ctx context.Context, path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		if err := s.ingestCSV(ctx, path); err != nil {
			return nil, err
		}
	case ".xlsx", ".xlsm":
		if err := s.ingestXLSX(ctx, path); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	raw, err := s.rawColumns(ctx)
	if err != nil {
		return nil, err
	}
	cols := columnMap(raw)
	if missing := missingColumns(cols); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	if _, err := s.conn.ExecContext(ctx, buildTransactionsSQL(cols)); err != nil {
		return nil, fmt.Errorf("build transactions table: %w", err)
	}

	var total int
	if err := s.conn.QueryRowContext(ctx, "SELECT count(*) FROM "+rawTable).Scan(&total); err != nil {
		return nil, fmt.Errorf("count source rows: %w", err)
	}

	txns, err := s.readTransactions(ctx)
	if err != nil {
		return nil, err
	}

	canonical := make([]string, 0, len(cols))
	for _, name := range raw {
		if n := normalizeColumn(name); n != "" && cols[n] == name {
			canonical = append(canonical, n)
		}
	}

	return &Dataset{
		Source:       path,
		Transactions: txns,
		TotalRows:    total,
		Skipped:      total - len(txns),
		LoadedAt:     time.Now().UTC(),
		Columns:      canonical,
	}, nil
}

// ingestCSV reads every column as text so that malformed numbers are
// handled by the typed projection rather than failing the whole load.
func (s *Store) ingestCSV(ctx context.Context, path string) error {
	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s, header=true, all_varchar=true)",
		rawTable, quoteLiteral(path))
	if _, err := s.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("read csv: %w", err)
	}
	return nil
}

// ingestXLSX copies a worksheet into a VARCHAR table. The first row holds
// the headers.
func (s *Store) ingestXLSX(ctx context.Context, path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer closeQuietly(f)

	sheet := s.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("sheet %s is empty", sheet)
	}

	headers := dedupeHeaders(rows[0])
	defs := make([]string, len(headers))
	marks := make([]string, len(headers))
	for i, h := range headers {
		defs[i] = quoteIdent(h) + " VARCHAR"
		marks[i] = "?"
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	create := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", rawTable, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create raw table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", rawTable, strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer closeQuietly(stmt)

	args := make([]interface{}, len(headers))
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		for i := range args {
			if i < len(row) {
				args[i] = row[i]
			} else {
				args[i] = nil
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit raw rows: %w", err)
	}
	return nil
}

// dedupeHeaders names blank headers and suffixes repeated ones with _1, _2
// and so on, matching read_csv_auto.
func dedupeHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "column" + strconv.Itoa(i)
		}
		name := h
		if n, ok := seen[h]; ok {
			name = h + "_" + strconv.Itoa(n)
		}
		seen[h]++
		out[i] = name
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (s *Store) rawColumns(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position", rawTable)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer closeQuietly(rows)

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func (s *Store) readTransactions(ctx context.Context) ([]targeting.Transaction, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT account_id, account_name, region, manager, product_group, product_name,
		       period, revenue, quantity, unit_price, category,
		       in_house_discount, outside_discount, has_discount
		FROM `+mainTable+` ORDER BY source_row`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer closeQuietly(rows)

	var txns []targeting.Transaction
	for rows.Next() {
		var t targeting.Transaction
		var period int
		if err := rows.Scan(
			&t.AccountID, &t.AccountName, &t.Region, &t.Manager, &t.ProductGroup, &t.ProductName,
			&period, &t.Revenue, &t.Quantity, &t.UnitPrice, &t.Category,
			&t.InHouseDiscount, &t.OutsideDiscount, &t.HasDiscount,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Period = targeting.Period(period)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}
