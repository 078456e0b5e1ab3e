package calculator

import (
	"sort"
	"time"

	"ecommerce-kpi/pkg/models"
)

// Cohorts builds the retention matrix: customers grouped by the calendar month of
// their first purchase, counted (distinct) at every month offset where they
// ordered again. Offsets are calendar-month differences, not elapsed days.
func Cohorts(rs models.RecordSet) models.CohortTable {
	first := make(map[string]time.Time)
	rs.Each(func(it models.SalesLineItem) {
		if t, ok := first[it.CustomerID]; !ok || it.PurchaseTimestamp.Before(t) {
			first[it.CustomerID] = it.PurchaseTimestamp
		}
	})

	seen := make(map[models.CohortKey]map[string]struct{})
	rs.Each(func(it models.SalesLineItem) {
		start := first[it.CustomerID]
		k := models.CohortKey{
			Cohort: cohortLabel(start),
			Offset: monthsSince(start, it.PurchaseTimestamp),
		}
		if seen[k] == nil {
			seen[k] = make(map[string]struct{})
		}
		seen[k][it.CustomerID] = struct{}{}
	})

	table := models.CohortTable{Cells: make(map[models.CohortKey]int, len(seen))}
	cohorts := make(map[string]struct{})
	offsets := make(map[int]struct{})
	for k, customers := range seen {
		table.Cells[k] = len(customers)
		cohorts[k.Cohort] = struct{}{}
		offsets[k.Offset] = struct{}{}
	}
	for c := range cohorts {
		table.Cohorts = append(table.Cohorts, c)
	}
	for o := range offsets {
		table.Offsets = append(table.Offsets, o)
	}
	sort.Strings(table.Cohorts)
	sort.Ints(table.Offsets)
	return table
}
