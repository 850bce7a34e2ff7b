// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// dataset indexes a transaction set by account and product.
// Accounts and products keep first-appearance order, which is the
// iteration order used for stable tie-breaks.
type dataset struct {
	txns       []Transaction
	categories []string

	accounts     []string
	accountIndex map[string]int
	accountRows  [][]int

	products     []string
	productIndex map[string]int
	productRows  [][]int

	periods      []Period
	totalRevenue float64
	skipped      int
}

type regionProduct struct {
	region  string
	product string
}

// indexTransactions validates and indexes the input rows. Rows with
// non-positive revenue are skipped.
func indexTransactions(txns []Transaction) (*dataset, error) {
	if len(txns) == 0 {
		return nil, &DataLoadError{Err: errors.New("transaction set is empty")}
	}

	ds := &dataset{
		txns:         make([]Transaction, 0, len(txns)),
		accountIndex: make(map[string]int),
		productIndex: make(map[string]int),
	}
	inferred := make(map[string]string)
	seenPeriods := make(map[Period]struct{})

	for i := range txns {
		t := txns[i]
		if t.AccountID == "" {
			return nil, &DataLoadError{Err: fmt.Errorf("row %d: missing account id", i)}
		}
		if t.ProductGroup == "" {
			return nil, &DataLoadError{Err: fmt.Errorf("row %d: missing product group", i)}
		}
		if t.Period <= 0 || t.Period.Month() < 1 || t.Period.Month() > 12 {
			return nil, &DataLoadError{Err: fmt.Errorf("row %d: invalid period %d", i, int(t.Period))}
		}
		if !(t.Revenue > 0) {
			ds.skipped++
			continue
		}

		row := len(ds.txns)
		ds.txns = append(ds.txns, t)

		category := t.Category
		if category == "" {
			var ok bool
			if category, ok = inferred[t.ProductName]; !ok {
				category = InferCategory(t.ProductName)
				inferred[t.ProductName] = category
			}
		}
		ds.categories = append(ds.categories, category)

		ai, ok := ds.accountIndex[t.AccountID]
		if !ok {
			ai = len(ds.accounts)
			ds.accountIndex[t.AccountID] = ai
			ds.accounts = append(ds.accounts, t.AccountID)
			ds.accountRows = append(ds.accountRows, nil)
		}
		ds.accountRows[ai] = append(ds.accountRows[ai], row)

		pi, ok := ds.productIndex[t.ProductGroup]
		if !ok {
			pi = len(ds.products)
			ds.productIndex[t.ProductGroup] = pi
			ds.products = append(ds.products, t.ProductGroup)
			ds.productRows = append(ds.productRows, nil)
		}
		ds.productRows[pi] = append(ds.productRows[pi], row)

		if _, ok := seenPeriods[t.Period]; !ok {
			seenPeriods[t.Period] = struct{}{}
			ds.periods = append(ds.periods, t.Period)
		}
		ds.totalRevenue += t.Revenue
	}

	if len(ds.txns) == 0 {
		return nil, &DataLoadError{Err: errors.New("no rows with positive revenue")}
	}
	sort.Slice(ds.periods, func(i, j int) bool { return ds.periods[i] < ds.periods[j] })
	return ds, nil
}

// regionalDemand returns the mean row revenue per region x product.
func (ds *dataset) regionalDemand() map[regionProduct]float64 {
	sums := make(map[regionProduct]float64)
	counts := make(map[regionProduct]int)
	for _, t := range ds.txns {
		k := regionProduct{region: t.Region, product: t.ProductGroup}
		sums[k] += t.Revenue
		counts[k]++
	}
	out := make(map[regionProduct]float64, len(sums))
	for k, s := range sums {
		out[k] = s / float64(counts[k])
	}
	return out
}

func buildCustomerProfiles(ctx context.Context, ds *dataset, cfg *Config) ([]CustomerProfile, error) {
	profiles := make([]CustomerProfile, len(ds.accounts))
	err := parallelFor(ctx, len(ds.accounts), cfg.Workers, func(i int) error {
		p, err := customerProfile(ds, ds.accounts[i], ds.accountRows[i], cfg.Tiers)
		if err != nil {
			return err
		}
		profiles[i] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func customerProfile(ds *dataset, id string, rows []int, tiers TierThresholds) (CustomerProfile, error) {
	if len(rows) == 0 {
		return CustomerProfile{}, &ProfileBuildError{Entity: "customer", ID: id, Reason: "no transactions"}
	}

	first := ds.txns[rows[0]]
	p := CustomerProfile{
		AccountID:        id,
		AccountName:      first.AccountName,
		Region:           first.Region,
		Manager:          first.Manager,
		TransactionCount: len(rows),
		FirstPeriod:      first.Period,
		LastPeriod:       first.Period,
	}

	byPeriod := make(map[Period]float64)
	products := make(map[string]struct{})
	categories := make(map[string]struct{})
	var inHouse, outside float64
	hasDiscount := false

	for _, r := range rows {
		t := ds.txns[r]
		p.TotalRevenue += t.Revenue
		byPeriod[t.Period] += t.Revenue
		products[t.ProductGroup] = struct{}{}
		categories[ds.categories[r]] = struct{}{}
		inHouse += t.InHouseDiscount
		outside += t.OutsideDiscount
		hasDiscount = hasDiscount || t.HasDiscount
		if t.Period < p.FirstPeriod {
			p.FirstPeriod = t.Period
		}
		if t.Period > p.LastPeriod {
			p.LastPeriod = t.Period
		}
	}

	n := float64(len(rows))
	p.AvgTransaction = p.TotalRevenue / n
	p.ActivePeriods = len(byPeriod)
	p.ProductCount = len(products)
	p.CategoryCount = len(categories)
	p.DiversityRatio = ratio(float64(p.ProductCount), float64(p.CategoryCount))
	p.GrowthRate, p.RecentRevenue, p.PriorRevenue = windowedGrowth(byPeriod)
	p.Seasonality = coefficientOfVariation(periodValues(byPeriod))
	if hasDiscount {
		p.DiscountSense = (inHouse/n + outside/n) / 2
	}
	p.RecentlyActive = p.RecentRevenue > 0
	p.SizeTier = tiers.Classify(p.TotalRevenue)
	p.Facility = InferFacility(p.AccountName)
	p.Specialty = InferSpecialty(p.AccountName)

	return p, nil
}

// categoryStats aggregates rows per category for competition and pricing.
type categoryStats struct {
	products map[string]struct{}
	revenue  float64
	quantity float64
}

func buildCategoryStats(ds *dataset) map[string]*categoryStats {
	stats := make(map[string]*categoryStats)
	for r, t := range ds.txns {
		c := ds.categories[r]
		s, ok := stats[c]
		if !ok {
			s = &categoryStats{products: make(map[string]struct{})}
			stats[c] = s
		}
		s.products[t.ProductGroup] = struct{}{}
		s.revenue += t.Revenue
		s.quantity += t.Quantity
	}
	return stats
}

func buildProductProfiles(ctx context.Context, ds *dataset, cfg *Config) ([]ProductProfile, error) {
	cats := buildCategoryStats(ds)
	totalAccounts := len(ds.accounts)

	profiles := make([]ProductProfile, len(ds.products))
	err := parallelFor(ctx, len(ds.products), cfg.Workers, func(i int) error {
		p, err := productProfile(ds, ds.products[i], ds.productRows[i], cats, totalAccounts)
		if err != nil {
			return err
		}
		profiles[i] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func productProfile(ds *dataset, product string, rows []int, cats map[string]*categoryStats, totalAccounts int) (ProductProfile, error) {
	if len(rows) == 0 {
		return ProductProfile{}, &ProfileBuildError{Entity: "product", ID: product, Reason: "no transactions"}
	}

	first := ds.txns[rows[0]]
	p := ProductProfile{
		Product:            product,
		RepresentativeName: first.ProductName,
		Category:           ds.categories[rows[0]],
	}

	byPeriod := make(map[Period]float64)
	byAccount := make(map[string]float64)
	names := make(map[string]struct{})
	for _, r := range rows {
		t := ds.txns[r]
		p.TotalRevenue += t.Revenue
		p.TotalQuantity += t.Quantity
		byPeriod[t.Period] += t.Revenue
		byAccount[t.AccountID] += t.Revenue
		names[t.ProductName] = struct{}{}
	}

	p.AvgPrice = ratio(p.TotalRevenue, p.TotalQuantity)
	p.AccountCount = len(byAccount)
	p.ProductNames = len(names)
	p.Penetration = ratio(float64(p.AccountCount), float64(totalAccounts))
	p.GrowthRate, _, _ = windowedGrowth(byPeriod)
	p.Seasonality = coefficientOfVariation(periodValues(byPeriod))
	p.MarketShare = ratio(p.TotalRevenue, ds.totalRevenue)
	p.MeanRowRevenue = p.TotalRevenue / float64(len(rows))

	if cs, ok := cats[p.Category]; ok {
		p.Competition = len(cs.products) - 1
		categoryPrice := 1.0
		if cs.quantity > 0 {
			categoryPrice = cs.revenue / cs.quantity
		}
		p.PricePositioning = 1
		if categoryPrice > 0 {
			p.PricePositioning = p.AvgPrice / categoryPrice
		}
	}

	p.Concentration = concentration(byAccount, p.TotalRevenue)
	return p, nil
}

// concentration is the revenue share of the top 20% of accounts (at least one).
func concentration(byAccount map[string]float64, total float64) float64 {
	if len(byAccount) == 0 || total == 0 {
		return 0
	}
	values := make([]float64, 0, len(byAccount))
	for _, v := range byAccount {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	top := max(1, int(float64(len(values))*0.2))
	var sum float64
	for _, v := range values[:top] {
		sum += v
	}
	return sum / total
}
