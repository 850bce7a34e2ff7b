// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package export

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/salesradar/internal/metrics"
)

// Workbook sheet names.
const (
	SheetRecommendations = "추천거래처"
	SheetMarket          = "시장분석"
	SheetPlanSummary     = "영업계획_요약"
	SheetMonthlyPlan     = "월별계획"
)

// WriteXLSX renders r as a workbook with one sheet per report section.
func WriteXLSX(w io.Writer, r *Report) error {
	start := time.Now()
	f, err := NewWorkbook(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	metrics.RecordExport("xlsx", time.Since(start))
	return nil
}

// NewWorkbook builds the report workbook in memory.
func NewWorkbook(r *Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetRecommendations); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{SheetMarket, SheetPlanSummary, SheetMonthlyPlan} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetRecommendations, recommendationRows(r)},
		{SheetMarket, marketRows(r)},
		{SheetPlanSummary, planSummaryRows(r)},
		{SheetMonthlyPlan, monthlyPlanRows(r)},
	}
	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
		if err := f.SetRowStyle(s.name, 1, 1, headerStyle); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	_ = f.SetColWidth(SheetRecommendations, "A", "C", 18)
	_ = f.SetColWidth(SheetMarket, "A", "A", 24)
	_ = f.SetColWidth(SheetPlanSummary, "A", "A", 24)
	_ = f.SetColWidth(SheetMonthlyPlan, "E", "E", 60)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func recommendationRows(r *Report) [][]interface{} {
	rows := [][]interface{}{{
		"순위", "거래처코드", "거래처명", "권역", "담당자", "예상매출", "성공확률",
		"유사도", "진료과적합도", "종합점수", "규모", "기관유형", "진료과", "추천사유",
	}}
	for i, rec := range r.Recommendations {
		rows = append(rows, []interface{}{
			i + 1, rec.AccountID, rec.AccountName, rec.Region, rec.Manager,
			round(rec.PredictedRevenue, 0), round(rec.SuccessProbability, 4),
			round(rec.SimilarityScore, 4), round(rec.SpecialtyMatchScore, 2), round(rec.CompositeScore, 4),
			rec.SizeTier.String(), rec.Facility.String(), rec.Specialty,
			strings.Join(rec.ReasonTags, ", "),
		})
	}
	return rows
}

func marketRows(r *Report) [][]interface{} {
	rows := [][]interface{}{{"항목", "값"}}
	m := r.Market
	if m == nil {
		return rows
	}
	rows = append(rows,
		[]interface{}{"품목군", m.Product},
		[]interface{}{"질환분류", m.Category},
		[]interface{}{"현재 거래처 수", m.CurrentAccounts},
		[]interface{}{"전체 거래처 수", m.TotalAccounts},
		[]interface{}{"현재 침투율", percent(m.CurrentPenetration)},
		[]interface{}{"목표 침투율", percent(m.TargetPenetration)},
		[]interface{}{"잠재 거래처 수", m.PotentialAccounts},
		[]interface{}{"성장 여력", m.GrowthPotential},
		[]interface{}{"현재 매출", round(m.CurrentRevenue, 0)},
		[]interface{}{"추가 매출 기회", round(m.IncrementalRevenue, 0)},
		[]interface{}{"시장 성장률", percent(m.MarketGrowthRate)},
		[]interface{}{"경쟁 품목 수", m.Competition},
	)
	for i, s := range m.Strategies {
		rows = append(rows, []interface{}{fmt.Sprintf("전략 %d", i+1), s})
	}
	return rows
}

func planSummaryRows(r *Report) [][]interface{} {
	rows := [][]interface{}{{"항목", "값"}}
	p := r.Plan
	if p == nil {
		return rows
	}
	rows = append(rows,
		[]interface{}{"대상", p.Target},
		[]interface{}{"분석 방식", p.Mode.String()},
		[]interface{}{"계획 기간(개월)", p.PeriodMonths},
		[]interface{}{"대상 거래처 수", p.TotalAccounts},
		[]interface{}{"예상 매출", round(p.ExpectedRevenue, 0)},
	)
	for i, s := range p.KeyStrategies {
		rows = append(rows, []interface{}{fmt.Sprintf("핵심 전략 %d", i+1), s})
	}
	return rows
}

func monthlyPlanRows(r *Report) [][]interface{} {
	rows := [][]interface{}{{"월", "거래처 수", "예상매출", "평균 성공확률", "대상 거래처"}}
	if r.Plan == nil {
		return rows
	}
	for _, b := range r.Plan.Buckets {
		rows = append(rows, []interface{}{
			b.Month, b.AccountCount, round(b.ExpectedRevenue, 0),
			round(b.SuccessProbability, 4), strings.Join(b.Accounts, ", "),
		})
	}
	return rows
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
