package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

/*
COMPUTE → result structures. Every calculator returns a fresh value that holds no
reference to the input RecordSet.
*/

// RevenueMetrics holds the scalar revenue, order and growth metrics of a set.
type RevenueMetrics struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	TotalItemsSold    int             `json:"total_items_sold"`
	AverageOrderValue NullFloat       `json:"average_order_value"`
	AverageItemPrice  NullFloat       `json:"average_item_price"`
	MedianOrderValue  NullFloat       `json:"median_order_value"`
	RevenueStd        NullFloat       `json:"revenue_std"`

	// Growth is nil when no comparison set was supplied.
	Growth *GrowthRates `json:"growth,omitempty"`
}

// GrowthRates are (current-base)/base against a comparison set.
type GrowthRates struct {
	RevenueGrowthRate NullFloat `json:"revenue_growth_rate"`
	OrderGrowthRate   NullFloat `json:"order_growth_rate"`
	AOVGrowthRate     NullFloat `json:"aov_growth_rate"`
}

// Metric names accepted by RevenueMetrics.Lookup.
const (
	MetricTotalRevenue      = "total_revenue"
	MetricTotalOrders       = "total_orders"
	MetricTotalItemsSold    = "total_items_sold"
	MetricAverageOrderValue = "average_order_value"
	MetricAverageItemPrice  = "average_item_price"
	MetricMedianOrderValue  = "median_order_value"
	MetricRevenueStd        = "revenue_std"
	MetricRevenueGrowthRate = "revenue_growth_rate"
	MetricOrderGrowthRate   = "order_growth_rate"
	MetricAOVGrowthRate     = "aov_growth_rate"
)

// Lookup returns a metric by name. ok is false for unknown names and for growth
// rates when no comparison was computed.
func (m RevenueMetrics) Lookup(name string) (v NullFloat, ok bool) {
	switch name {
	case MetricTotalRevenue:
		f, _ := m.TotalRevenue.Float64()
		return Defined(f), true
	case MetricTotalOrders:
		return Defined(float64(m.TotalOrders)), true
	case MetricTotalItemsSold:
		return Defined(float64(m.TotalItemsSold)), true
	case MetricAverageOrderValue:
		return m.AverageOrderValue, true
	case MetricAverageItemPrice:
		return m.AverageItemPrice, true
	case MetricMedianOrderValue:
		return m.MedianOrderValue, true
	case MetricRevenueStd:
		return m.RevenueStd, true
	}
	if m.Growth == nil {
		return NullFloat{}, false
	}
	switch name {
	case MetricRevenueGrowthRate:
		return m.Growth.RevenueGrowthRate, true
	case MetricOrderGrowthRate:
		return m.Growth.OrderGrowthRate, true
	case MetricAOVGrowthRate:
		return m.Growth.AOVGrowthRate, true
	}
	return NullFloat{}, false
}

// MonthlyTrendRow is one calendar month of the trend series.
// Growth fields are undefined for the first month.
type MonthlyTrendRow struct {
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	Revenue          decimal.Decimal `json:"revenue"`
	Orders           int             `json:"orders"`
	ItemsSold        int             `json:"items_sold"`
	AvgOrderValue    NullFloat       `json:"avg_order_value"`
	RevenueMoMGrowth NullFloat       `json:"revenue_mom_growth"`
	OrdersMoMGrowth  NullFloat       `json:"orders_mom_growth"`
	AOVMoMGrowth     NullFloat       `json:"aov_mom_growth"`
}

// CategoryPerformance aggregates one product category.
type CategoryPerformance struct {
	Category     string          `json:"category"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	UniqueOrders int             `json:"unique_orders"`
	ItemsSold    int             `json:"items_sold"`
	AvgPrice     NullFloat       `json:"avg_price"`
}

// CategoryShare is a category's fraction of grand total revenue.
type CategoryShare struct {
	Category    string    `json:"category"`
	MarketShare NullFloat `json:"market_share"`
}

// CategoryItemsPerOrder is the mean number of the category's items per order containing it.
type CategoryItemsPerOrder struct {
	Category      string    `json:"category"`
	ItemsPerOrder NullFloat `json:"items_per_order"`
}

// ProductPerformance holds the three category views. All nil when the set has no category column.
type ProductPerformance struct {
	CategoryPerformance []CategoryPerformance   `json:"category_performance,omitempty"`
	MarketShare         []CategoryShare         `json:"market_share,omitempty"`
	ItemsPerOrder       []CategoryItemsPerOrder `json:"items_per_order,omitempty"`
}

// StatePerformance aggregates one customer state.
type StatePerformance struct {
	State              string          `json:"state"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalOrders        int             `json:"total_orders"`
	UniqueCustomers    int             `json:"unique_customers"`
	AvgItemPrice       NullFloat       `json:"avg_item_price"`
	RevenuePerCustomer NullFloat       `json:"revenue_per_customer"`
}

// StateCustomers is the customer-count view of a state.
type StateCustomers struct {
	State           string          `json:"state"`
	UniqueCustomers int             `json:"unique_customers"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

// GeographicPerformance holds two independently ranked views.
type GeographicPerformance struct {
	StatePerformance  []StatePerformance `json:"state_performance,omitempty"`
	TopCustomerStates []StateCustomers   `json:"top_customer_states,omitempty"`
}

// ScoreShare is the fraction of scored rows with a given review score.
type ScoreShare struct {
	Score int     `json:"score"`
	Share float64 `json:"share"`
}

// ReviewStats summarises review scores over rows that have one.
type ReviewStats struct {
	AvgReviewScore NullFloat    `json:"avg_review_score"`
	Distribution   []ScoreShare `json:"review_score_distribution"`
	NPSScore       NullFloat    `json:"nps_score"`
	ScoredRows     int          `json:"scored_rows"`
}

// DeliveryStats summarises delivery days over rows that have them.
type DeliveryStats struct {
	AvgDeliveryDays    NullFloat `json:"avg_delivery_days"`
	MedianDeliveryDays NullFloat `json:"median_delivery_days"`
	DeliveredRows      int       `json:"delivered_rows"`
}

// DeliverySatisfaction is the per-bucket review mean and order count.
type DeliverySatisfaction struct {
	DeliveryCategory string    `json:"delivery_category"`
	AvgReviewScore   NullFloat `json:"review_score"`
	UniqueOrders     int       `json:"order_id"`
}

// CustomerExperience omits every block whose source column is absent.
type CustomerExperience struct {
	Reviews              *ReviewStats           `json:"reviews,omitempty"`
	Delivery             *DeliveryStats         `json:"delivery,omitempty"`
	DeliverySatisfaction []DeliverySatisfaction `json:"delivery_satisfaction,omitempty"`
}

// AvgReviewScore is undefined when reviews are absent or none were scored.
func (cx CustomerExperience) AvgReviewScore() NullFloat {
	if cx.Reviews == nil {
		return Undefined()
	}
	return cx.Reviews.AvgReviewScore
}

// AvgDeliveryDays is undefined when delivery data is absent or empty.
func (cx CustomerExperience) AvgDeliveryDays() NullFloat {
	if cx.Delivery == nil {
		return Undefined()
	}
	return cx.Delivery.AvgDeliveryDays
}

// CohortKey addresses one cell of the retention matrix.
type CohortKey struct {
	Cohort string // first purchase month, "2006-01"
	Offset int    // whole calendar months since the cohort month
}

// CohortTable is the sparse retention matrix. An absent cell means no customer of
// the cohort was observed at that offset; it is not a zero.
type CohortTable struct {
	Cohorts []string          // ascending
	Offsets []int             // ascending
	Cells   map[CohortKey]int // distinct customers
}

// Get returns the customer count of a cell and whether the cell exists.
func (t CohortTable) Get(cohort string, offset int) (int, bool) {
	v, ok := t.Cells[CohortKey{Cohort: cohort, Offset: offset}]
	return v, ok
}

// Size is the number of customers acquired in the cohort month.
func (t CohortTable) Size(cohort string) int {
	v, _ := t.Get(cohort, 0)
	return v
}

// RetentionRates divides every present cell by its cohort's size. Absent cells stay absent.
func (t CohortTable) RetentionRates() map[CohortKey]float64 {
	out := make(map[CohortKey]float64, len(t.Cells))
	for k, v := range t.Cells {
		size := t.Size(k.Cohort)
		if size == 0 {
			continue
		}
		out[k] = float64(v) / float64(size)
	}
	return out
}

// Row returns the cohort's present offsets in ascending order.
func (t CohortTable) Row(cohort string) []CohortKey {
	var keys []CohortKey
	for k := range t.Cells {
		if k.Cohort == cohort {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Offset < keys[j].Offset })
	return keys
}

// HealthScoreBreakdown holds the four components and the weighted overall score.
type HealthScoreBreakdown struct {
	RevenueScore            float64 `json:"revenue_score"`
	CustomerExperienceScore float64 `json:"customer_experience_score"`
	OperationalScore        float64 `json:"operational_score"`
	FulfillmentScore        float64 `json:"fulfillment_score"`
	OverallHealthScore      float64 `json:"overall_health_score"`
}

// PeriodRow is one time bucket of AggregateByPeriod.
type PeriodRow struct {
	Period string             `json:"period"`
	Start  time.Time          `json:"start"`
	Values map[string]float64 `json:"values"`
}

// PeriodComparison compares one metric across two sets.
// ChangeRate is (current-previous)/previous; PercentChange is the same ×100.
type PeriodComparison struct {
	Metric         string    `json:"metric"`
	CurrentPeriod  NullFloat `json:"current_period"`
	PreviousPeriod NullFloat `json:"previous_period"`
	AbsoluteChange NullFloat `json:"absolute_change"`
	ChangeRate     NullFloat `json:"change_rate"`
	PercentChange  NullFloat `json:"percent_change"`
}

// ExecutiveSummary composes the report for one period.
type ExecutiveSummary struct {
	Period string `json:"period"`
	RevenueMetrics
	TopCategories []string `json:"top_categories,omitempty"`
	TopStates     []string `json:"top_states,omitempty"`
	CustomerExperience
	HealthScore float64 `json:"health_score"`
}

// StatusShare is one order-status line of the dataset description.
type StatusShare struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// DatasetSummary describes a RecordSet before analysis.
type DatasetSummary struct {
	Records           int             `json:"records"`
	FirstPurchase     time.Time       `json:"first_purchase"`
	LastPurchase      time.Time       `json:"last_purchase"`
	RecordsByYear     map[int]int     `json:"records_by_year"`
	StatusBreakdown   []StatusShare   `json:"status_breakdown,omitempty"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue NullFloat       `json:"average_order_value"`
}
