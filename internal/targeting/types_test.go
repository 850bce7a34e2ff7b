// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"202401", 202401, false},
		{"2024-03", 202403, false},
		{"2024-12-15", 202412, false},
		{"2024.07", 202407, false},
		{"2024/11", 202411, false},
		{" 202402 ", 202402, false},
		{"", 0, true},
		{"202413", 0, true},
		{"2024-00", 0, true},
		{"2024", 0, true},
		{"abcdef", 0, true},
		{"2024-xx", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestPeriod(t *testing.T) {
	p := NewPeriod(2024, time.February)
	if p != 202402 || p.Year() != 2024 || p.Month() != time.February {
		t.Errorf("NewPeriod() = %d (%d, %v)", p, p.Year(), p.Month())
	}
	if got := p.String(); got != "2024-02" {
		t.Errorf("String() = %q, want 2024-02", got)
	}
	if got := p.Time(); !got.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Time() = %v", got)
	}

	tests := []struct {
		p, q Period
		want int
	}{
		{202406, 202401, 5},
		{202501, 202412, 1},
		{202401, 202401, 0},
		{202312, 202401, -1},
	}
	for _, tt := range tests {
		if got := tt.p.MonthsSince(tt.q); got != tt.want {
			t.Errorf("%d.MonthsSince(%d) = %d, want %d", tt.p, tt.q, got, tt.want)
		}
	}

	if got := Period(202406).Next(); got != 202407 {
		t.Errorf("Next() = %d, want 202407", got)
	}
	if got := Period(202412).Next(); got != 202501 {
		t.Errorf("Next() = %d, want 202501", got)
	}
}

func TestEnumText(t *testing.T) {
	tests := []struct {
		name string
		got  interface{ MarshalText() ([]byte, error) }
		want string
	}{
		{"tier", TierLarge, "Large"},
		{"unknown tier", SizeTier(0), "Unknown"},
		{"facility", FacilityPharmacy, "Pharmacy"},
		{"mode", ModeGroup, "group"},
		{"segment", SegmentCannotLose, "Cannot Lose Them"},
		{"risk", RiskMedium, "medium"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.got.MarshalText()
			if err != nil || string(b) != tt.want {
				t.Errorf("MarshalText() = (%q, %v), want %q", b, err, tt.want)
			}
		})
	}

	if TierMicro.Code() != 1 || TierLarge.Code() != 4 || SizeTier(9).Code() != 1 {
		t.Error("SizeTier.Code() out of the 1..4 range")
	}
}
