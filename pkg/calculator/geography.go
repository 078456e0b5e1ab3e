package calculator

import (
	"cmp"

	"ecommerce-kpi/pkg/models"
)

func state(it models.SalesLineItem) *string { return it.CustomerState }

// GeographicPerformance ranks customer states twice: by revenue and by distinct
// customers. The two rankings are independent and need not agree.
func GeographicPerformance(rs models.RecordSet, n int) models.GeographicPerformance {
	if !rs.Capabilities().Geography {
		return models.GeographicPerformance{}
	}

	groups := groupBy(rs, optionalKey(state), []aggSpec{
		sumOf("total_revenue", models.FieldTotalRevenue),
		distinctOf("total_orders", models.FieldOrderID),
		distinctOf("unique_customers", models.FieldCustomerID),
		meanOf("avg_item_price", models.FieldPrice),
	})

	states := make([]models.StatePerformance, 0, len(groups))
	for _, g := range groups {
		revenue := g.decimal("total_revenue")
		customers := g.count("unique_customers")
		states = append(states, models.StatePerformance{
			State:              g.key,
			TotalRevenue:       revenue,
			TotalOrders:        g.count("total_orders"),
			UniqueCustomers:    customers,
			AvgItemPrice:       g.mean("avg_item_price"),
			RevenuePerCustomer: models.Ratio(toFloat(revenue), float64(customers)),
		})
	}

	name := func(s models.StatePerformance) string { return s.State }
	byRevenue := topN(states, n, func(a, b models.StatePerformance) int {
		return a.TotalRevenue.Cmp(b.TotalRevenue)
	}, name)
	byCustomers := topN(states, n, func(a, b models.StatePerformance) int {
		return cmp.Compare(a.UniqueCustomers, b.UniqueCustomers)
	}, name)

	top := make([]models.StateCustomers, 0, len(byCustomers))
	for _, s := range byCustomers {
		top = append(top, models.StateCustomers{
			State:           s.State,
			UniqueCustomers: s.UniqueCustomers,
			TotalRevenue:    s.TotalRevenue,
		})
	}

	return models.GeographicPerformance{
		StatePerformance:  byRevenue,
		TopCustomerStates: top,
	}
}
