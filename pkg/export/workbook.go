package export

import (
	"fmt"
	"strings"

	"ecommerce-kpi/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetSummary   = "Summary"
	SheetTrends    = "Monthly Trends"
	SheetCategory  = "Categories"
	SheetStates    = "States"
	SheetCohorts   = "Cohorts"
	SheetRetention = "Retention"
)

type sheetWriter struct {
	name  string
	write func(*excelize.File, string, Report) error
}

var sheets = []sheetWriter{
	{SheetSummary, writeSummary},
	{SheetTrends, writeTrends},
	{SheetCategory, writeCategories},
	{SheetStates, writeStates},
	{SheetCohorts, writeCohorts},
	{SheetRetention, writeRetention},
}

// WriteWorkbook saves the report as an xlsx file. Undefined values and absent
// cohort cells are left empty.
func WriteWorkbook(path string, r Report, progress bool) error {
	f := excelize.NewFile()
	defer f.Close()

	var bar *progressbar.ProgressBar
	if progress {
		bar = progressbar.Default(int64(len(sheets)), "writing workbook")
	} else {
		bar = progressbar.DefaultSilent(int64(len(sheets)), "writing workbook")
	}
	defer bar.Finish()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := s.write(f, s.name, r); err != nil {
			return fmt.Errorf("write sheet %s: %w", s.name, err)
		}
		_ = bar.Add(1)
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("sheets", len(sheets)).Msg("workbook written")
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// cellValue maps undefined to an empty cell and money to float.
func cellValue(v interface{}) interface{} {
	switch x := v.(type) {
	case models.NullFloat:
		if !x.Valid {
			return nil
		}
		return x.Float64
	case decimal.Decimal:
		return x.InexactFloat64()
	}
	return v
}

func cells(values ...interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = cellValue(v)
	}
	return out
}

func writeSummary(f *excelize.File, sheet string, r Report) error {
	s := r.Summary
	rows := [][]interface{}{
		{"metric", "value"},
		{"period", s.Period},
		{models.MetricTotalRevenue, s.TotalRevenue},
		{models.MetricTotalOrders, s.TotalOrders},
		{models.MetricTotalItemsSold, s.TotalItemsSold},
		{models.MetricAverageOrderValue, s.AverageOrderValue},
		{models.MetricAverageItemPrice, s.AverageItemPrice},
		{models.MetricMedianOrderValue, s.MedianOrderValue},
		{models.MetricRevenueStd, s.RevenueStd},
	}
	if s.Growth != nil {
		rows = append(rows,
			[]interface{}{models.MetricRevenueGrowthRate, s.Growth.RevenueGrowthRate},
			[]interface{}{models.MetricOrderGrowthRate, s.Growth.OrderGrowthRate},
			[]interface{}{models.MetricAOVGrowthRate, s.Growth.AOVGrowthRate},
		)
	}
	rows = append(rows,
		[]interface{}{"avg_review_score", s.AvgReviewScore()},
		[]interface{}{"avg_delivery_days", s.AvgDeliveryDays()},
		[]interface{}{"top_categories", strings.Join(s.TopCategories, ", ")},
		[]interface{}{"top_states", strings.Join(s.TopStates, ", ")},
		[]interface{}{"revenue_score", r.Health.RevenueScore},
		[]interface{}{"customer_experience_score", r.Health.CustomerExperienceScore},
		[]interface{}{"operational_score", r.Health.OperationalScore},
		[]interface{}{"fulfillment_score", r.Health.FulfillmentScore},
		[]interface{}{"health_score", s.HealthScore},
	)
	for i, row := range rows {
		if err := setRow(f, sheet, i+1, cells(row...)...); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}

func writeTrends(f *excelize.File, sheet string, r Report) error {
	if err := setRow(f, sheet, 1, "year", "month", "revenue", "orders", "items_sold",
		"avg_order_value", "revenue_mom_growth", "orders_mom_growth", "aov_mom_growth"); err != nil {
		return err
	}
	for i, t := range r.Trends {
		if err := setRow(f, sheet, i+2, cells(t.Year, t.Month, t.Revenue, t.Orders, t.ItemsSold,
			t.AvgOrderValue, t.RevenueMoMGrowth, t.OrdersMoMGrowth, t.AOVMoMGrowth)...); err != nil {
			return err
		}
	}
	return nil
}

func writeCategories(f *excelize.File, sheet string, r Report) error {
	if err := setRow(f, sheet, 1, "category", "total_revenue", "unique_orders", "items_sold",
		"avg_price", "market_share", "items_per_order"); err != nil {
		return err
	}
	share := make(map[string]models.NullFloat, len(r.Products.MarketShare))
	for _, s := range r.Products.MarketShare {
		share[s.Category] = s.MarketShare
	}
	perOrder := make(map[string]models.NullFloat, len(r.Products.ItemsPerOrder))
	for _, p := range r.Products.ItemsPerOrder {
		perOrder[p.Category] = p.ItemsPerOrder
	}
	for i, c := range r.Products.CategoryPerformance {
		if err := setRow(f, sheet, i+2, cells(c.Category, c.TotalRevenue, c.UniqueOrders, c.ItemsSold,
			c.AvgPrice, share[c.Category], perOrder[c.Category])...); err != nil {
			return err
		}
	}
	return nil
}

func writeStates(f *excelize.File, sheet string, r Report) error {
	if err := setRow(f, sheet, 1, "state", "total_revenue", "total_orders", "unique_customers",
		"avg_item_price", "revenue_per_customer"); err != nil {
		return err
	}
	for i, s := range r.Geography.StatePerformance {
		if err := setRow(f, sheet, i+2, cells(s.State, s.TotalRevenue, s.TotalOrders, s.UniqueCustomers,
			s.AvgItemPrice, s.RevenuePerCustomer)...); err != nil {
			return err
		}
	}
	return nil
}

func cohortHeader(t models.CohortTable) []interface{} {
	header := []interface{}{"cohort"}
	for _, off := range t.Offsets {
		header = append(header, fmt.Sprintf("M%d", off))
	}
	return header
}

func writeCohorts(f *excelize.File, sheet string, r Report) error {
	t := r.Cohorts
	if err := setRow(f, sheet, 1, cohortHeader(t)...); err != nil {
		return err
	}
	for i, c := range t.Cohorts {
		row := []interface{}{c}
		for _, off := range t.Offsets {
			if n, ok := t.Get(c, off); ok {
				row = append(row, n)
			} else {
				row = append(row, nil)
			}
		}
		if err := setRow(f, sheet, i+2, row...); err != nil {
			return err
		}
	}
	return nil
}

func writeRetention(f *excelize.File, sheet string, r Report) error {
	t := r.Cohorts
	rates := t.RetentionRates()
	if err := setRow(f, sheet, 1, cohortHeader(t)...); err != nil {
		return err
	}
	for i, c := range t.Cohorts {
		row := []interface{}{c}
		for _, off := range t.Offsets {
			if v, ok := rates[models.CohortKey{Cohort: c, Offset: off}]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		if err := setRow(f, sheet, i+2, row...); err != nil {
			return err
		}
	}
	return nil
}
