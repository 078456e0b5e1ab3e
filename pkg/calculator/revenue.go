package calculator

import (
	"ecommerce-kpi/pkg/models"
	"github.com/shopspring/decimal"
)

// orderValues sums total revenue per order, in first-seen order.
func orderValues(rs models.RecordSet) []decimal.Decimal {
	index := make(map[string]int)
	var values []decimal.Decimal
	rs.Each(func(it models.SalesLineItem) {
		i, ok := index[it.OrderID]
		if !ok {
			i = len(values)
			index[it.OrderID] = i
			values = append(values, decimal.Zero)
		}
		values[i] = values[i].Add(it.TotalRevenue)
	})
	return values
}

// RevenueMetrics computes the revenue, order and order-value statistics of rs.
// When comparison is non-nil the growth rates against it are added; a zero
// baseline yields an undefined rate.
func RevenueMetrics(rs models.RecordSet, comparison *models.RecordSet) models.RevenueMetrics {
	perOrder := orderValues(rs)
	values := make([]float64, len(perOrder))
	for i, v := range perOrder {
		values[i] = toFloat(v)
	}

	prices := make([]float64, 0, rs.Len())
	rs.Each(func(it models.SalesLineItem) {
		prices = append(prices, toFloat(it.Price))
	})

	m := models.RevenueMetrics{
		TotalRevenue:      rs.Sum(models.FieldTotalRevenue),
		TotalOrders:       len(perOrder),
		TotalItemsSold:    rs.Len(),
		AverageOrderValue: mean(values),
		AverageItemPrice:  mean(prices),
		MedianOrderValue:  median(values),
		RevenueStd:        sampleStd(values),
	}

	if comparison != nil {
		base := RevenueMetrics(*comparison, nil)
		m.Growth = &models.GrowthRates{
			RevenueGrowthRate: decimalRatio(m.TotalRevenue.Sub(base.TotalRevenue), base.TotalRevenue),
			OrderGrowthRate:   models.Ratio(float64(m.TotalOrders-base.TotalOrders), float64(base.TotalOrders)),
			AOVGrowthRate:     models.Change(m.AverageOrderValue, base.AverageOrderValue),
		}
	}
	return m
}
