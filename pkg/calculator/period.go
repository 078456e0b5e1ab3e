package calculator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce-kpi/pkg/models"
)

var (
	ErrUnknownMetric      = errors.New("unknown metric")
	ErrUnknownGranularity = errors.New("unknown granularity")
)

// Granularity is the bucket size of AggregateByPeriod.
type Granularity string

const (
	Day     Granularity = "day"
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// ParseGranularity accepts day, week, month, quarter or year.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Day, Week, Month, Quarter, Year:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
}

// bucket returns the start of t's period and its label. Weeks run Monday to
// Sunday and are labelled "start/end".
func (g Granularity) bucket(t time.Time) (time.Time, string) {
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case Day:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return start, start.Format("2006-01-02")
	case Week:
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		start := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
		return start, start.Format("2006-01-02") + "/" + start.AddDate(0, 0, 6).Format("2006-01-02")
	case Month:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.Format("2006-01")
	case Quarter:
		q := (int(m)-1)/3 + 1
		start := time.Date(y, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, loc)
		return start, fmt.Sprintf("%04dQ%d", y, q)
	default:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return start, fmt.Sprintf("%04d", y)
	}
}

// DefaultPeriodMetrics are aggregated when the caller names none.
var DefaultPeriodMetrics = []models.Field{models.FieldTotalRevenue, models.FieldOrderID, models.FieldCustomerID}

// AggregateByPeriod buckets rows by purchase time. Identifier fields are counted
// distinct per bucket, every other field is summed. Buckets are ascending.
func AggregateByPeriod(rs models.RecordSet, g Granularity, metrics []models.Field) ([]models.PeriodRow, error) {
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		metrics = DefaultPeriodMetrics
	}
	specs := make([]aggSpec, 0, len(metrics))
	for _, f := range metrics {
		if !f.Known() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, f)
		}
		specs = append(specs, specFor(f))
	}

	starts := make(map[string]time.Time)
	groups := groupBy(rs, func(it models.SalesLineItem) (string, bool) {
		start, label := g.bucket(it.PurchaseTimestamp)
		starts[label] = start
		return label, true
	}, specs)

	rows := make([]models.PeriodRow, 0, len(groups))
	for _, grp := range groups {
		row := models.PeriodRow{
			Period: grp.key,
			Start:  starts[grp.key],
			Values: make(map[string]float64, len(specs)),
		}
		for _, s := range specs {
			row.Values[s.name] = grp.value(s)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DefaultComparisonMetrics are compared when the caller names none.
var DefaultComparisonMetrics = []string{
	models.MetricTotalRevenue,
	models.MetricTotalOrders,
	models.MetricAverageOrderValue,
}

// ComparePeriods computes the revenue metrics of both sets and reports, per
// metric, both values, their difference and the relative change. The change is
// undefined when the previous value is zero or either value is undefined.
func ComparePeriods(current, previous models.RecordSet, metrics []string) ([]models.PeriodComparison, error) {
	if len(metrics) == 0 {
		metrics = DefaultComparisonMetrics
	}
	cur := RevenueMetrics(current, nil)
	prev := RevenueMetrics(previous, nil)

	out := make([]models.PeriodComparison, 0, len(metrics))
	for _, name := range metrics {
		c, ok := cur.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
		}
		p, _ := prev.Lookup(name)

		row := models.PeriodComparison{
			Metric:         name,
			CurrentPeriod:  c,
			PreviousPeriod: p,
			ChangeRate:     models.Change(c, p),
		}
		if c.Valid && p.Valid {
			row.AbsoluteChange = models.Defined(c.Float64 - p.Float64)
		}
		if row.ChangeRate.Valid {
			row.PercentChange = models.Defined(row.ChangeRate.Float64 * 100)
		}
		out = append(out, row)
	}
	return out, nil
}
