package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"ecommerce-kpi/pkg/calculator"
	"ecommerce-kpi/pkg/models"
)

const (
	formatJSON   = "json"
	formatPretty = "pretty"
	formatText   = "text"
)

// cohortRow is one cohort of the retention matrix, keyed "M<offset>".
type cohortRow struct {
	Cohort    string             `json:"cohort"`
	Size      int                `json:"size"`
	Customers map[string]int     `json:"customers"`
	Retention map[string]float64 `json:"retention"`
}

type cohortView struct {
	Offsets []int       `json:"offsets"`
	Cohorts []cohortRow `json:"cohorts"`
}

func newCohortView(t models.CohortTable) cohortView {
	rates := t.RetentionRates()
	v := cohortView{Offsets: t.Offsets, Cohorts: make([]cohortRow, 0, len(t.Cohorts))}
	for _, c := range t.Cohorts {
		row := cohortRow{
			Cohort:    c,
			Size:      t.Size(c),
			Customers: make(map[string]int),
			Retention: make(map[string]float64),
		}
		for _, k := range t.Row(c) {
			name := fmt.Sprintf("M%d", k.Offset)
			row.Customers[name] = t.Cells[k]
			if r, ok := rates[k]; ok {
				row.Retention[name] = r
			}
		}
		v.Cohorts = append(v.Cohorts, row)
	}
	return v
}

func render(w io.Writer, v any, format string) error {
	switch format {
	case formatText:
		if ok, err := renderText(w, v); ok || err != nil {
			return err
		}
		return writeJSON(w, v, true)
	case formatJSON:
		return writeJSON(w, v, false)
	default:
		return writeJSON(w, v, true)
	}
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func num(n models.NullFloat) string {
	if !n.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", n.Float64)
}

func pct(n models.NullFloat) string {
	if !n.Valid {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", n.Float64*100)
}

// renderText prints the line-oriented form of the views that have one.
// ok is false for other values.
func renderText(w io.Writer, v any) (ok bool, err error) {
	var b strings.Builder
	switch x := v.(type) {
	case models.ExecutiveSummary:
		fmt.Fprintf(&b, "period ; %s\n", x.Period)
		fmt.Fprintf(&b, "total_revenue ; %s\n", x.TotalRevenue.StringFixed(2))
		fmt.Fprintf(&b, "total_orders ; %d\n", x.TotalOrders)
		fmt.Fprintf(&b, "average_order_value ; %s\n", num(x.AverageOrderValue))
		if x.Growth != nil {
			fmt.Fprintf(&b, "revenue_growth ; %s\n", pct(x.Growth.RevenueGrowthRate))
			fmt.Fprintf(&b, "order_growth ; %s\n", pct(x.Growth.OrderGrowthRate))
		}
		fmt.Fprintf(&b, "top_categories ; %s\n", strings.Join(x.TopCategories, ", "))
		fmt.Fprintf(&b, "top_states ; %s\n", strings.Join(x.TopStates, ", "))
		fmt.Fprintf(&b, "avg_review_score ; %s\n", num(x.AvgReviewScore()))
		fmt.Fprintf(&b, "avg_delivery_days ; %s\n", num(x.AvgDeliveryDays()))
		fmt.Fprintf(&b, "health_score ; %.1f\n", x.HealthScore)
	case []models.MonthlyTrendRow:
		for _, r := range x {
			month := time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC)
			fmt.Fprintf(&b, "%s ; %s ; orders=%d ; items=%d ; aov=%s ; revenue_mom=%s\n",
				calculator.FormatMonth(month), r.Revenue.StringFixed(2), r.Orders, r.ItemsSold,
				num(r.AvgOrderValue), pct(r.RevenueMoMGrowth))
		}
	case cohortView:
		for _, c := range x.Cohorts {
			fmt.Fprintf(&b, "%s ; size=%d", c.Cohort, c.Size)
			for _, off := range x.Offsets {
				if off == 0 {
					continue
				}
				name := fmt.Sprintf("M%d", off)
				if n, found := c.Customers[name]; found {
					fmt.Fprintf(&b, " ; %s=%d (%.1f%%)", name, n, c.Retention[name]*100)
				} else {
					fmt.Fprintf(&b, " ; %s=-", name)
				}
			}
			b.WriteString("\n")
		}
	case models.HealthScoreBreakdown:
		fmt.Fprintf(&b, "revenue ; %.1f\n", x.RevenueScore)
		fmt.Fprintf(&b, "customer_experience ; %.1f\n", x.CustomerExperienceScore)
		fmt.Fprintf(&b, "operational ; %.1f\n", x.OperationalScore)
		fmt.Fprintf(&b, "fulfillment ; %.1f\n", x.FulfillmentScore)
		fmt.Fprintf(&b, "overall ; %.1f\n", x.OverallHealthScore)
	case []models.PeriodComparison:
		for _, c := range x {
			fmt.Fprintf(&b, "%s ; current=%s ; previous=%s ; change=%s\n",
				c.Metric, num(c.CurrentPeriod), num(c.PreviousPeriod), pct(c.ChangeRate))
		}
	case []models.PeriodRow:
		for _, r := range x {
			keys := make([]string, 0, len(r.Values))
			for k := range r.Values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			b.WriteString(r.Period)
			for _, k := range keys {
				fmt.Fprintf(&b, " ; %s=%s", k, strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", r.Values[k]), "0"), "."))
			}
			b.WriteString("\n")
		}
	default:
		return false, nil
	}
	_, err = io.WriteString(w, b.String())
	return true, err
}
