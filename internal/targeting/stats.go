// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ratio divides and maps a zero denominator to 0.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// coefficientOfVariation uses the sample standard deviation. Fewer than two
// values or a zero mean yield 0.
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m == 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(values)-1)) / m
}

// growthWindows splits ascending periods into prior and recent windows.
// Six or more periods split at the midpoint; otherwise the last three are
// recent and the rest prior.
func growthWindows(periods []Period) (prior, recent []Period) {
	n := len(periods)
	if n >= 6 {
		mid := n / 2
		return periods[:mid], periods[mid:]
	}
	if n >= 3 {
		return periods[:n-3], periods[n-3:]
	}
	return nil, periods
}

// windowedGrowth returns growth in percent with the recent and prior sums.
// Growth is 0 when the prior sum is 0.
func windowedGrowth(byPeriod map[Period]float64) (growth, recent, prior float64) {
	periods := sortedPeriods(byPeriod)
	priorP, recentP := growthWindows(periods)
	for _, p := range priorP {
		prior += byPeriod[p]
	}
	for _, p := range recentP {
		recent += byPeriod[p]
	}
	if prior > 0 {
		growth = (recent - prior) / prior * 100
	}
	return growth, recent, prior
}

func sortedPeriods(byPeriod map[Period]float64) []Period {
	periods := make([]Period, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i] < periods[j] })
	return periods
}

func periodValues(byPeriod map[Period]float64) []float64 {
	periods := sortedPeriods(byPeriod)
	values := make([]float64, len(periods))
	for i, p := range periods {
		values[i] = byPeriod[p]
	}
	return values
}

// cosine returns dot(a,b)/(|a||b|), or 0 when either norm is 0.
func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// parallelFor runs fn for every index in [0, n) across bounded workers.
// Each index is handled exactly once, so fn may write to slot i without
// synchronisation.
func parallelFor(ctx context.Context, n, workers int, fn func(i int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// trailingGrowth compares the last three periods with the up to three
// periods before them. Growth is 0 when the prior sum is 0.
func trailingGrowth(periods []Period, byPeriod map[Period]float64) (growth, recent, prior float64) {
	n := len(periods)
	start := max(0, n-3)
	for _, p := range periods[start:] {
		recent += byPeriod[p]
	}
	for _, p := range periods[max(0, start-3):start] {
		prior += byPeriod[p]
	}
	if prior > 0 {
		growth = (recent - prior) / prior * 100
	}
	return growth, recent, prior
}
