// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package store

import (
	"fmt"
	"strings"
)

// Canonical source column names.
const (
	ColPeriod          = "기준년월"
	ColAccountID       = "거래처코드"
	ColAccountName     = "거래처명"
	ColProductGroup    = "품목군"
	ColProductName     = "품목명"
	ColRevenue         = "총매출"
	ColQuantity        = "총수량"
	ColUnitPrice       = "단가"
	ColManager         = "담당자"
	ColRegion          = "권역"
	ColCategory        = "질환분류"
	ColInHouseDiscount = "원내할인율"
	ColOutsideDiscount = "원외할인율"
)

// columnAliases maps export header variants to canonical names.
var columnAliases = map[string]string{
	"총매출(Net)":    ColRevenue,
	"총입력매출(Net)":  ColQuantity,
	"원내입력매출(Net)": "원내매출",
	"원외입력매출(Net)": "원외매출",
	"지역":          ColRegion,
}

// requiredColumns must be present after normalisation.
var requiredColumns = []string{ColPeriod, ColAccountID, ColAccountName, ColProductGroup, ColRevenue}

// normalizeColumn trims whitespace and quotes from a header and applies the
// alias table.
func normalizeColumn(name string) string {
	n := strings.TrimPrefix(name, "\ufeff")
	n = strings.TrimSpace(strings.ReplaceAll(n, `"`, ""))
	if canonical, ok := columnAliases[n]; ok {
		return canonical
	}
	return n
}

// columnMap maps canonical names to the raw header they came from. When two
// headers normalise to the same name the first one wins.
func columnMap(raw []string) map[string]string {
	m := make(map[string]string, len(raw))
	for _, name := range raw {
		n := normalizeColumn(name)
		if n == "" {
			continue
		}
		if _, dup := m[n]; !dup {
			m[n] = name
		}
	}
	return m
}

// missingColumns lists required columns absent from m.
func missingColumns(m map[string]string) []string {
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := m[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// textExpr selects a trimmed text column, or '' when the column is absent.
func textExpr(m map[string]string, col string) string {
	raw, ok := m[col]
	if !ok {
		return "''"
	}
	return fmt.Sprintf("coalesce(trim(CAST(%s AS VARCHAR)), '')", quoteIdent(raw))
}

// numExpr selects a numeric column, tolerating thousands separators and
// percent signs. Unparseable or absent values become NULL.
func numExpr(m map[string]string, col string) string {
	raw, ok := m[col]
	if !ok {
		return "CAST(NULL AS DOUBLE)"
	}
	return fmt.Sprintf(`TRY_CAST(NULLIF(regexp_replace(trim(CAST(%s AS VARCHAR)), '[,%%\s]', '', 'g'), '') AS DOUBLE)`, quoteIdent(raw))
}

// periodExpr parses YYYYMM, also accepting separators such as 2024-01.
func periodExpr(m map[string]string) string {
	return fmt.Sprintf(`TRY_CAST(left(regexp_replace(CAST(%s AS VARCHAR), '[^0-9]', '', 'g'), 6) AS INTEGER)`, quoteIdent(m[ColPeriod]))
}

// buildTransactionsSQL creates the typed transactions table from the raw
// table, keeping file order and only rows that the engine can use.
func buildTransactionsSQL(m map[string]string) string {
	hasDiscount := "false"
	var parts []string
	for _, col := range []string{ColInHouseDiscount, ColOutsideDiscount} {
		if _, ok := m[col]; ok {
			parts = append(parts, numExpr(m, col)+" IS NOT NULL")
		}
	}
	if len(parts) > 0 {
		hasDiscount = strings.Join(parts, " OR ")
	}

	return fmt.Sprintf(`
CREATE OR REPLACE TABLE %[1]s AS
WITH typed AS (
	SELECT
		rowid AS source_row,
		%[3]s AS account_id,
		%[4]s AS account_name,
		%[5]s AS region,
		%[6]s AS manager,
		%[7]s AS product_group,
		%[8]s AS product_name,
		%[9]s AS period,
		%[10]s AS revenue,
		coalesce(%[11]s, 0) AS quantity,
		coalesce(%[12]s, 0) AS unit_price,
		%[13]s AS category,
		coalesce(%[14]s, 0) AS in_house_discount,
		coalesce(%[15]s, 0) AS outside_discount,
		(%[16]s) AS has_discount
	FROM %[2]s
)
SELECT * FROM typed
WHERE account_id <> ''
  AND product_group <> ''
  AND period BETWEEN 190001 AND 999912
  AND period %% 100 BETWEEN 1 AND 12
  AND revenue > 0
ORDER BY source_row`,
		mainTable, rawTable,
		textExpr(m, ColAccountID),
		textExpr(m, ColAccountName),
		textExpr(m, ColRegion),
		textExpr(m, ColManager),
		textExpr(m, ColProductGroup),
		textExpr(m, ColProductName),
		periodExpr(m),
		numExpr(m, ColRevenue),
		numExpr(m, ColQuantity),
		numExpr(m, ColUnitPrice),
		textExpr(m, ColCategory),
		numExpr(m, ColInHouseDiscount),
		numExpr(m, ColOutsideDiscount),
		hasDiscount,
	)
}
