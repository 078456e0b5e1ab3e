package calculator

import (
	"sort"

	"ecommerce-kpi/pkg/models"
)

// SummaryTopN is how many categories and states the executive summary names.
const SummaryTopN = 5

// ExecutiveSummary composes revenue metrics (with growth when comparison is
// given), the top categories and states, customer experience and the overall
// health score under one period label.
func ExecutiveSummary(rs models.RecordSet, comparison *models.RecordSet, periodLabel string) models.ExecutiveSummary {
	s := models.ExecutiveSummary{
		Period:             periodLabel,
		RevenueMetrics:     RevenueMetrics(rs, comparison),
		CustomerExperience: CustomerExperience(rs),
		HealthScore:        HealthScore(rs, comparison).OverallHealthScore,
	}
	for _, c := range ProductPerformance(rs, SummaryTopN).CategoryPerformance {
		s.TopCategories = append(s.TopCategories, c.Category)
	}
	for _, st := range GeographicPerformance(rs, SummaryTopN).StatePerformance {
		s.TopStates = append(s.TopStates, st.State)
	}
	return s
}

// Describe gives the shape of a set: size, purchase range, rows per year, order
// status mix, revenue and AOV.
func Describe(rs models.RecordSet) models.DatasetSummary {
	d := models.DatasetSummary{
		Records:       rs.Len(),
		RecordsByYear: make(map[int]int),
		TotalRevenue:  rs.Sum(models.FieldTotalRevenue),
	}
	statuses := make(map[string]int)
	rs.Each(func(it models.SalesLineItem) {
		d.RecordsByYear[it.Year]++
		statuses[it.OrderStatus]++
		if d.FirstPurchase.IsZero() || it.PurchaseTimestamp.Before(d.FirstPurchase) {
			d.FirstPurchase = it.PurchaseTimestamp
		}
		if it.PurchaseTimestamp.After(d.LastPurchase) {
			d.LastPurchase = it.PurchaseTimestamp
		}
	})

	if rs.Capabilities().OrderStatus {
		for status, n := range statuses {
			d.StatusBreakdown = append(d.StatusBreakdown, models.StatusShare{
				Status:  status,
				Count:   n,
				Percent: float64(n) / float64(rs.Len()) * 100,
			})
		}
		sort.Slice(d.StatusBreakdown, func(i, j int) bool {
			a, b := d.StatusBreakdown[i], d.StatusBreakdown[j]
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			return a.Status < b.Status
		})
	}

	d.AverageOrderValue = RevenueMetrics(rs, nil).AverageOrderValue
	return d
}
