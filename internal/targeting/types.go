// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a sortable year-month key encoded as YYYYMM.
type Period int

// NewPeriod builds a period from a year and month.
func NewPeriod(year int, month time.Month) Period {
	return Period(year*100 + int(month))
}

// ParsePeriod accepts YYYYMM, YYYY-MM, YYYY-MM-DD and YYYY.MM.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty period")
	}

	var year, month int
	var err error
	switch {
	case len(s) >= 7 && (s[4] == '-' || s[4] == '.' || s[4] == '/'):
		if year, err = strconv.Atoi(s[:4]); err != nil {
			return 0, fmt.Errorf("invalid period %q: %w", s, err)
		}
		if month, err = strconv.Atoi(s[5:7]); err != nil {
			return 0, fmt.Errorf("invalid period %q: %w", s, err)
		}
	case len(s) == 6:
		v, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, fmt.Errorf("invalid period %q: %w", s, convErr)
		}
		year, month = v/100, v%100
	default:
		return 0, fmt.Errorf("invalid period %q", s)
	}

	if month < 1 || month > 12 {
		return 0, fmt.Errorf("invalid period %q: month %d out of range", s, month)
	}
	return NewPeriod(year, time.Month(month)), nil
}

// Year returns the calendar year.
func (p Period) Year() int { return int(p) / 100 }

// Month returns the calendar month.
func (p Period) Month() time.Month { return time.Month(int(p) % 100) }

// Time returns the first instant of the period in UTC.
func (p Period) Time() time.Time {
	return time.Date(p.Year(), p.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsSince returns the number of whole months from q to p.
func (p Period) MonthsSince(q Period) int {
	return (p.Year()-q.Year())*12 + int(p.Month()) - int(q.Month())
}

// Next returns the following month.
func (p Period) Next() Period {
	t := p.Time().AddDate(0, 1, 0)
	return NewPeriod(t.Year(), t.Month())
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year(), int(p.Month()))
}

// Transaction is one historical sales record.
type Transaction struct {
	AccountID    string  `json:"account_id"`
	AccountName  string  `json:"account_name"`
	Region       string  `json:"region"`
	Manager      string  `json:"manager"`
	ProductGroup string  `json:"product_group"`
	ProductName  string  `json:"product_name"`
	Period       Period  `json:"period"`
	Revenue      float64 `json:"revenue"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`

	// Category is the therapeutic category when the source provides one.
	// Empty means it is inferred from ProductName.
	Category string `json:"category,omitempty"`

	// InHouseDiscount and OutsideDiscount are discount rates, when present.
	InHouseDiscount float64 `json:"in_house_discount,omitempty"`
	OutsideDiscount float64 `json:"outside_discount,omitempty"`
	HasDiscount     bool    `json:"-"`
}

// SizeTier buckets accounts by total revenue.
type SizeTier int

const (
	// TierMicro is below the small threshold.
	TierMicro SizeTier = iota + 1
	// TierSmall is below the medium threshold.
	TierSmall
	// TierMedium is below the large threshold.
	TierMedium
	// TierLarge is at or above the large threshold.
	TierLarge
)

// String returns the tier name.
func (t SizeTier) String() string {
	switch t {
	case TierMicro:
		return "Micro"
	case TierSmall:
		return "Small"
	case TierMedium:
		return "Medium"
	case TierLarge:
		return "Large"
	default:
		return "Unknown"
	}
}

// Code returns the numeric encoding used by the models (Micro=1 ... Large=4).
func (t SizeTier) Code() float64 {
	if t < TierMicro || t > TierLarge {
		return 1
	}
	return float64(t)
}

// MarshalText encodes the tier by name.
func (t SizeTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// FacilityType classifies an account by its name.
type FacilityType int

const (
	// FacilityUnknown matched no facility keyword.
	FacilityUnknown FacilityType = iota
	// FacilityHospital is a hospital, medical center or similar.
	FacilityHospital
	// FacilityClinic is a clinic.
	FacilityClinic
	// FacilityPharmacy is a pharmacy.
	FacilityPharmacy
)

// String returns the facility name.
func (f FacilityType) String() string {
	switch f {
	case FacilityHospital:
		return "Hospital"
	case FacilityClinic:
		return "Clinic"
	case FacilityPharmacy:
		return "Pharmacy"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the facility type by name.
func (f FacilityType) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// CustomerProfile aggregates one account's purchase behaviour.
type CustomerProfile struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Region      string `json:"region"`
	Manager     string `json:"manager"`

	TotalRevenue     float64 `json:"total_revenue"`
	AvgTransaction   float64 `json:"avg_transaction"`
	TransactionCount int     `json:"transaction_count"`
	ActivePeriods    int     `json:"active_periods"`
	ProductCount     int     `json:"product_count"`
	CategoryCount    int     `json:"category_count"`
	GrowthRate       float64 `json:"growth_rate"`
	Seasonality      float64 `json:"seasonality"`
	DiscountSense    float64 `json:"discount_sensitivity"`
	DiversityRatio   float64 `json:"diversity_ratio"`
	RecentRevenue    float64 `json:"recent_revenue"`
	PriorRevenue     float64 `json:"prior_revenue"`
	FirstPeriod      Period  `json:"first_period"`
	LastPeriod       Period  `json:"last_period"`
	RecentlyActive   bool    `json:"recently_active"`

	SizeTier  SizeTier     `json:"size_tier"`
	Facility  FacilityType `json:"facility_type"`
	Specialty string       `json:"specialty"`
}

// ProductProfile aggregates one product group's market position.
type ProductProfile struct {
	Product            string  `json:"product"`
	RepresentativeName string  `json:"representative_name"`
	Category           string  `json:"category"`
	TotalRevenue       float64 `json:"total_revenue"`
	TotalQuantity      float64 `json:"total_quantity"`
	AvgPrice           float64 `json:"avg_price"`
	AccountCount       int     `json:"account_count"`
	ProductNames       int     `json:"product_names"`
	Penetration        float64 `json:"penetration"`
	GrowthRate         float64 `json:"growth_rate"`
	Seasonality        float64 `json:"seasonality"`
	Competition        int     `json:"competition"`
	PricePositioning   float64 `json:"price_positioning"`
	Concentration      float64 `json:"concentration"`
	MarketShare        float64 `json:"market_share"`
	MeanRowRevenue     float64 `json:"mean_row_revenue"`
}

// Recommendation is one ranked target account.
type Recommendation struct {
	AccountID           string       `json:"account_id"`
	AccountName         string       `json:"account_name"`
	Region              string       `json:"region"`
	Manager             string       `json:"manager"`
	PredictedRevenue    float64      `json:"predicted_revenue"`
	SuccessProbability  float64      `json:"success_probability"`
	SimilarityScore     float64      `json:"similarity_score"`
	SpecialtyMatchScore float64      `json:"specialty_match_score"`
	CompositeScore      float64      `json:"composite_score"`
	ReasonTags          []string     `json:"reason_tags"`
	SizeTier            SizeTier     `json:"size_tier"`
	Facility            FacilityType `json:"facility_type"`
	Specialty           string       `json:"specialty"`
	ProductCount        int          `json:"product_count"`
	GrowthRate          float64      `json:"growth_rate"`
}

// RecommendOptions narrows a ranking request.
type RecommendOptions struct {
	// TopN is the result size. Zero uses the configured default.
	TopN int

	// ExcludeExisting drops accounts that already buy the target.
	ExcludeExisting bool

	// Manager restricts candidates to one sales manager when non-empty.
	Manager string
}

// DefaultRecommendOptions returns TopN 10 with existing purchasers excluded.
func DefaultRecommendOptions() RecommendOptions {
	return RecommendOptions{TopN: 10, ExcludeExisting: true}
}

// RankingMode records which ranking path produced a result.
type RankingMode int

const (
	// ModeModel ranks with the trained revenue and success models.
	ModeModel RankingMode = iota
	// ModeGroup ranks with the model-free group heuristic.
	ModeGroup
)

// String returns the mode name.
func (m RankingMode) String() string {
	switch m {
	case ModeModel:
		return "model"
	case ModeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// MarshalText encodes the mode by name.
func (m RankingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// MarketOpportunity estimates the untapped accounts for a product.
type MarketOpportunity struct {
	Product            string   `json:"product"`
	Category           string   `json:"category"`
	CurrentAccounts    int      `json:"current_accounts"`
	TotalAccounts      int      `json:"total_accounts"`
	CurrentPenetration float64  `json:"current_penetration"`
	TargetPenetration  float64  `json:"target_penetration"`
	PotentialAccounts  int      `json:"potential_accounts"`
	GrowthPotential    int      `json:"growth_potential"`
	CurrentRevenue     float64  `json:"current_revenue"`
	IncrementalRevenue float64  `json:"incremental_revenue"`
	MarketGrowthRate   float64  `json:"market_growth_rate"`
	Competition        int      `json:"competition"`
	ProductCount       int      `json:"product_count,omitempty"`
	Strategies         []string `json:"strategies"`
}

// PlanBucket is one month of a sales plan.
type PlanBucket struct {
	Month              int      `json:"month"`
	AccountCount       int      `json:"account_count"`
	ExpectedRevenue    float64  `json:"expected_revenue"`
	Accounts           []string `json:"accounts"`
	AccountIDs         []string `json:"account_ids"`
	SuccessProbability float64  `json:"success_probability"`
}

// SalesPlan phases the top recommendations into monthly buckets.
type SalesPlan struct {
	Target          string             `json:"target"`
	Mode            RankingMode        `json:"mode"`
	PeriodMonths    int                `json:"period_months"`
	TotalAccounts   int                `json:"total_accounts"`
	ExpectedRevenue float64            `json:"expected_revenue"`
	Buckets         []PlanBucket       `json:"buckets"`
	Market          *MarketOpportunity `json:"market"`
	KeyStrategies   []string           `json:"key_strategies"`
}

// Segment is an RFM customer segment.
type Segment int

const (
	// SegmentChampions buys recently, often and a lot.
	SegmentChampions Segment = iota
	// SegmentLoyal buys recently and often.
	SegmentLoyal
	// SegmentPotentialLoyalist buys recently with meaningful spend.
	SegmentPotentialLoyalist
	// SegmentNew buys recently but little else is known.
	SegmentNew
	// SegmentAtRisk used to buy often but not recently.
	SegmentAtRisk
	// SegmentCannotLose bought regularly in the past.
	SegmentCannotLose
	// SegmentLost matches none of the above.
	SegmentLost
)

// String returns the segment name.
func (s Segment) String() string {
	switch s {
	case SegmentChampions:
		return "Champions"
	case SegmentLoyal:
		return "Loyal Customers"
	case SegmentPotentialLoyalist:
		return "Potential Loyalists"
	case SegmentNew:
		return "New Customers"
	case SegmentAtRisk:
		return "At Risk"
	case SegmentCannotLose:
		return "Cannot Lose Them"
	case SegmentLost:
		return "Lost"
	default:
		return "Unknown"
	}
}

// Priority returns the follow-up priority (1 is most urgent).
func (s Segment) Priority() int {
	switch s {
	case SegmentChampions:
		return 1
	case SegmentLoyal, SegmentAtRisk:
		return 2
	case SegmentPotentialLoyalist, SegmentCannotLose:
		return 3
	case SegmentNew:
		return 4
	default:
		return 5
	}
}

// MarshalText encodes the segment by name.
func (s Segment) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CustomerSegment is the RFM analysis of one account.
type CustomerSegment struct {
	AccountID     string  `json:"account_id"`
	AccountName   string  `json:"account_name"`
	Manager       string  `json:"manager"`
	Region        string  `json:"region"`
	TotalRevenue  float64 `json:"total_revenue"`
	ProductCount  int     `json:"product_count"`
	ActivePeriods int     `json:"active_periods"`
	DaysSinceLast int     `json:"days_since_last"`
	RecentRevenue float64 `json:"recent_revenue"`
	PriorRevenue  float64 `json:"prior_revenue"`
	GrowthRate    float64 `json:"growth_rate"`
	Recency       float64 `json:"recency"`
	Frequency     float64 `json:"frequency"`
	Monetary      float64 `json:"monetary"`
	RFM           float64 `json:"rfm"`
	Segment       Segment `json:"segment"`
	Priority      int     `json:"priority"`
}

// RiskLevel grades churn risk.
type RiskLevel int

const (
	// RiskSafe scores below 15.
	RiskSafe RiskLevel = iota
	// RiskLow scores 15 to 29.
	RiskLow
	// RiskMedium scores 30 to 49.
	RiskMedium
	// RiskHigh scores 50 or more.
	RiskHigh
)

// String returns the level name.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "safe"
	}
}

// MarshalText encodes the level by name.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ChurnRisk flags an account that may stop buying.
type ChurnRisk struct {
	AccountID     string    `json:"account_id"`
	AccountName   string    `json:"account_name"`
	Manager       string    `json:"manager"`
	Score         int       `json:"score"`
	Level         RiskLevel `json:"level"`
	Factors       []string  `json:"factors"`
	TotalRevenue  float64   `json:"total_revenue"`
	RecentRevenue float64   `json:"recent_revenue"`
	GrowthRate    float64   `json:"growth_rate"`
}

// CrossSell lists product groups similar accounts buy and this one does not.
type CrossSell struct {
	AccountID    string   `json:"account_id"`
	AccountName  string   `json:"account_name"`
	ProductCount int      `json:"product_count"`
	Suggested    []string `json:"suggested"`
}

// Neighbor is one entry of a similarity lookup.
type Neighbor struct {
	ID         string  `json:"id"`
	Index      int     `json:"-"`
	Similarity float64 `json:"similarity"`
}

// Status summarises the engine's current state.
type Status struct {
	Prepared        bool      `json:"prepared"`
	ModelsTrained   bool      `json:"models_trained"`
	Training        bool      `json:"training"`
	Version         int64     `json:"version"`
	Transactions    int       `json:"transactions"`
	SkippedRows     int       `json:"skipped_rows"`
	Accounts        int       `json:"accounts"`
	Products        int       `json:"products"`
	TrainingSamples int       `json:"training_samples"`
	PreparedAt      time.Time `json:"prepared_at"`
	TrainedAt       time.Time `json:"trained_at,omitempty"`
	PrepareMS       int64     `json:"prepare_ms"`
	TrainMS         int64     `json:"train_ms"`
	LastError       string    `json:"last_error,omitempty"`
}
