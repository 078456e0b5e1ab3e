package calculator

import (
	"fmt"

	"ecommerce-kpi/pkg/models"
)

// MonthlyTrends returns one row per calendar month present in rs, ascending, with
// month-over-month changes against the previous row. The first row has no prior
// period, so its changes are undefined.
func MonthlyTrends(rs models.RecordSet) []models.MonthlyTrendRow {
	type yearMonth struct{ year, month int }
	months := make(map[string]yearMonth)
	groups := groupBy(rs, func(it models.SalesLineItem) (string, bool) {
		k := fmt.Sprintf("%04d-%02d", it.Year, it.Month)
		months[k] = yearMonth{it.Year, it.Month}
		return k, true
	}, []aggSpec{
		sumOf("revenue", models.FieldTotalRevenue),
		distinctOf("orders", models.FieldOrderID),
		countOf("items_sold", models.FieldOrderItemID),
	})

	rows := make([]models.MonthlyTrendRow, 0, len(groups))
	for i, g := range groups {
		ym := months[g.key]
		row := models.MonthlyTrendRow{
			Year:      ym.year,
			Month:     ym.month,
			Revenue:   g.decimal("revenue"),
			Orders:    g.count("orders"),
			ItemsSold: g.count("items_sold"),
		}
		row.AvgOrderValue = models.Ratio(toFloat(row.Revenue), float64(row.Orders))

		if i > 0 {
			prev := rows[i-1]
			row.RevenueMoMGrowth = decimalRatio(row.Revenue.Sub(prev.Revenue), prev.Revenue)
			row.OrdersMoMGrowth = models.Ratio(float64(row.Orders-prev.Orders), float64(prev.Orders))
			row.AOVMoMGrowth = models.Change(row.AvgOrderValue, prev.AvgOrderValue)
		}
		rows = append(rows, row)
	}
	return rows
}
