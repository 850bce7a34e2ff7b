// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExportOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*exportOptions)
		wantErr string
	}{
		{"defaults", func(*exportOptions) {}, ""},
		{"bad format", func(o *exportOptions) { o.Format = "csv" }, "--format"},
		{"zero top-n", func(o *exportOptions) { o.TopN = 0 }, "--top-n"},
		{"long plan", func(o *exportOptions) { o.Months = 36 }, "--months"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &exportOptions{Format: "xlsx", TopN: 50, Months: 3}
			tt.mutate(opts)
			err := opts.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := newRootCommand()
	if err := cmd.ParseFlags([]string{"--data", "x.xlsx", "--format", "json", "--top-n", "7", "--train"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	for flag, want := range map[string]string{"data": "x.xlsx", "format": "json", "top-n": "7", "train": "true"} {
		if got := cmd.Flags().Lookup(flag).Value.String(); got != want {
			t.Errorf("--%s = %q, want %q", flag, got, want)
		}
	}
}

func TestRunExport_CSV(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("기준년월,거래처코드,거래처명,품목군,품목명,총매출,담당자\n")
	for i, acct := range []string{"A01", "A02", "A03", "A04"} {
		for j, group := range []string{"G1", "G2", "G3"} {
			if (i+j)%3 == 0 {
				continue
			}
			for m := 1; m <= 3; m++ {
				fmt.Fprintf(&b, "20240%d,%s,%s내과의원,%s,%s정,\"1,000,000\",김영업\n", m, acct, acct, group, group)
			}
		}
	}
	data := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(data, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "reports")
	opts := &exportOptions{DataPath: data, OutDir: out, Format: "json", TopN: 5, Months: 2, Timeout: time.Minute}
	if err := runExport(context.Background(), opts); err != nil {
		t.Fatalf("runExport() error = %v", err)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("wrote %d reports, want 3", len(entries))
	}
}
