package export

import (
	"ecommerce-kpi/pkg/calculator"
	"ecommerce-kpi/pkg/models"
)

// Report bundles every view of one analysis run.
type Report struct {
	Summary   models.ExecutiveSummary
	Health    models.HealthScoreBreakdown
	Trends    []models.MonthlyTrendRow
	Products  models.ProductPerformance
	Geography models.GeographicPerformance
	Cohorts   models.CohortTable
}

// Build computes the report of rs. comparison may be nil; topN <= 0 keeps all
// categories and states.
func Build(rs models.RecordSet, comparison *models.RecordSet, label string, topN int) Report {
	return Report{
		Summary:   calculator.ExecutiveSummary(rs, comparison, label),
		Health:    calculator.HealthScore(rs, comparison),
		Trends:    calculator.MonthlyTrends(rs),
		Products:  calculator.ProductPerformance(rs, topN),
		Geography: calculator.GeographicPerformance(rs, topN),
		Cohorts:   calculator.Cohorts(rs),
	}
}
