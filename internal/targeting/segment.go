// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"math"
)

// RFM scoring constants.
const (
	recencyFullDays    = 90
	recencyHalfDays    = 180
	monetaryNormalizer = 10_000_000
)

// Segments scores every account by recency, frequency and monetary value
// as of the latest period in the dataset. Results keep account order.
func (s *State) Segments(ctx context.Context) ([]CustomerSegment, error) {
	periods := s.ds.periods
	asOf := periods[len(periods)-1]
	span := asOf.MonthsSince(periods[0]) + 1

	out := make([]CustomerSegment, len(s.customers))
	err := parallelFor(ctx, len(s.customers), s.config.Workers, func(a int) error {
		out[a] = s.segment(a, asOf, span)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *State) segment(a int, asOf Period, span int) CustomerSegment {
	c := &s.customers[a]

	byPeriod := make(map[Period]float64)
	for _, r := range s.ds.accountRows[a] {
		t := &s.ds.txns[r]
		byPeriod[t.Period] += t.Revenue
	}
	growth, recent, prior := trailingGrowth(s.ds.periods, byPeriod)

	days := int(math.Round(asOf.Time().Sub(c.LastPeriod.Time()).Hours() / 24))
	recency := 0.0
	switch {
	case days <= recencyFullDays:
		recency = 1
	case days <= recencyHalfDays:
		recency = 0.5
	}
	frequency := math.Min(1, ratio(float64(c.ActivePeriods), float64(span)))
	monetary := math.Min(1, c.TotalRevenue/monetaryNormalizer)

	seg := classifySegment(recency, frequency, monetary)
	return CustomerSegment{
		AccountID:     c.AccountID,
		AccountName:   c.AccountName,
		Manager:       c.Manager,
		Region:        c.Region,
		TotalRevenue:  c.TotalRevenue,
		ProductCount:  c.ProductCount,
		ActivePeriods: c.ActivePeriods,
		DaysSinceLast: days,
		RecentRevenue: recent,
		PriorRevenue:  prior,
		GrowthRate:    growth,
		Recency:       recency,
		Frequency:     frequency,
		Monetary:      monetary,
		RFM:           (recency + frequency + monetary) / 3,
		Segment:       seg,
		Priority:      seg.Priority(),
	}
}

// classifySegment applies the segment rules in order; the first match wins.
func classifySegment(recency, frequency, monetary float64) Segment {
	recent := recency >= 0.8
	switch {
	case recent && frequency >= 0.6 && monetary >= 0.3:
		return SegmentChampions
	case recent && frequency >= 0.4:
		return SegmentLoyal
	case recent && monetary >= 0.2:
		return SegmentPotentialLoyalist
	case recent:
		return SegmentNew
	case frequency >= 0.4 && monetary >= 0.2:
		return SegmentAtRisk
	case frequency >= 0.3:
		return SegmentCannotLose
	default:
		return SegmentLost
	}
}
