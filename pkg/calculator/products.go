package calculator

import (
	"cmp"
	"strings"

	"ecommerce-kpi/pkg/models"
)

func category(it models.SalesLineItem) *string { return it.ProductCategory }

// ProductPerformance ranks product categories. Rows without a category are left
// out of the per-category views but still count towards the grand total used for
// market share. Without a category column the result is empty.
func ProductPerformance(rs models.RecordSet, n int) models.ProductPerformance {
	if !rs.Capabilities().Category {
		return models.ProductPerformance{}
	}

	groups := groupBy(rs, optionalKey(category), []aggSpec{
		sumOf("total_revenue", models.FieldTotalRevenue),
		distinctOf("unique_orders", models.FieldOrderID),
		countOf("items_sold", models.FieldOrderItemID),
		meanOf("avg_price", models.FieldPrice),
	})

	perf := make([]models.CategoryPerformance, 0, len(groups))
	for _, g := range groups {
		perf = append(perf, models.CategoryPerformance{
			Category:     g.key,
			TotalRevenue: g.decimal("total_revenue"),
			UniqueOrders: g.count("unique_orders"),
			ItemsSold:    g.count("items_sold"),
			AvgPrice:     g.mean("avg_price"),
		})
	}
	perf = topN(perf, 0, func(a, b models.CategoryPerformance) int {
		return a.TotalRevenue.Cmp(b.TotalRevenue)
	}, func(c models.CategoryPerformance) string { return c.Category })

	grand := rs.Sum(models.FieldTotalRevenue)
	shares := make([]models.CategoryShare, 0, len(perf))
	for _, c := range perf {
		shares = append(shares, models.CategoryShare{
			Category:    c.Category,
			MarketShare: decimalRatio(c.TotalRevenue, grand),
		})
	}

	if n > 0 && len(perf) > n {
		perf = perf[:n]
		shares = shares[:n]
	}

	return models.ProductPerformance{
		CategoryPerformance: perf,
		MarketShare:         shares,
		ItemsPerOrder:       itemsPerOrder(rs, n),
	}
}

// itemsPerOrder counts each category's rows inside every order, then averages
// those counts over the orders that contain the category.
func itemsPerOrder(rs models.RecordSet, n int) []models.CategoryItemsPerOrder {
	pairs := groupBy(rs, func(it models.SalesLineItem) (string, bool) {
		if it.ProductCategory == nil {
			return "", false
		}
		return *it.ProductCategory + "\x00" + it.OrderID, true
	}, nil)

	type acc struct {
		orders int
		items  int
	}
	byCategory := make(map[string]*acc)
	var order []string
	for _, p := range pairs {
		cat, _, _ := strings.Cut(p.key, "\x00")
		a, ok := byCategory[cat]
		if !ok {
			a = &acc{}
			byCategory[cat] = a
			order = append(order, cat)
		}
		a.orders++
		a.items += p.rows
	}

	out := make([]models.CategoryItemsPerOrder, 0, len(order))
	for _, cat := range order {
		a := byCategory[cat]
		out = append(out, models.CategoryItemsPerOrder{
			Category:      cat,
			ItemsPerOrder: models.Ratio(float64(a.items), float64(a.orders)),
		})
	}
	return topN(out, n, func(a, b models.CategoryItemsPerOrder) int {
		return cmp.Compare(a.ItemsPerOrder.Or(0), b.ItemsPerOrder.Or(0))
	}, func(c models.CategoryItemsPerOrder) string { return c.Category })
}
