package ingest

import (
	"fmt"
	"strings"
	"time"

	"ecommerce-kpi/pkg/calculator"
	"ecommerce-kpi/pkg/models"
	"github.com/rs/zerolog/log"
)

// Filter narrows a RecordSet by status and purchase date. Zero fields are
// unbounded. Month applies only together with Year. Start and End are
// inclusive.
type Filter struct {
	Year          int
	Month         int
	Start         time.Time
	End           time.Time
	DeliveredOnly bool
}

// MonthWindow builds a filter covering whole months, given as "MMYYYY".
// Either bound may be empty.
func MonthWindow(startMMYYYY, endMMYYYY string) (Filter, error) {
	var f Filter
	if startMMYYYY != "" {
		start, err := calculator.ParseMonth(startMMYYYY)
		if err != nil {
			return f, fmt.Errorf("start month: %w", err)
		}
		f.Start = start
	}
	if endMMYYYY != "" {
		end, err := calculator.ParseMonth(endMMYYYY)
		if err != nil {
			return f, fmt.Errorf("end month: %w", err)
		}
		f.End = calculator.MonthEnd(end)
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return f, fmt.Errorf("end month %s before start month %s", endMMYYYY, startMMYYYY)
	}
	return f, nil
}

// Windows resolves the analysed period of p and the period it is compared
// with. An explicit CompareStart wins, with CompareEnd defaulting to it.
// Otherwise a period bounded on both sides is compared with the one just
// before it. The comparison is nil when neither applies.
func Windows(p models.ReportParams) (Filter, *Filter, error) {
	current, err := MonthWindow(p.StartMonthInclusive, p.EndMonthInclusive)
	if err != nil {
		return Filter{}, nil, err
	}
	current.DeliveredOnly = p.DeliveredOnly

	if p.CompareStart == "" {
		if p.CompareEnd != "" {
			return Filter{}, nil, fmt.Errorf("comparison end month %s given without a start month", p.CompareEnd)
		}
		prev, ok := current.Preceding()
		if !ok {
			return current, nil, nil
		}
		return current, &prev, nil
	}

	end := p.CompareEnd
	if end == "" {
		end = p.CompareStart
	}
	prev, err := MonthWindow(p.CompareStart, end)
	if err != nil {
		return Filter{}, nil, fmt.Errorf("comparison period: %w", err)
	}
	prev.DeliveredOnly = p.DeliveredOnly
	return current, &prev, nil
}

// Preceding covers as many whole months as f, ending right before f's first
// month. ok is false unless f is bounded on both sides.
func (f Filter) Preceding() (Filter, bool) {
	if f.Start.IsZero() || f.End.IsZero() {
		return Filter{}, false
	}
	months := calculator.MonthsBetweenInclusive(f.Start, f.End)
	if len(months) == 0 {
		return Filter{}, false
	}
	first := months[0]
	return Filter{
		Start:         first.AddDate(0, -len(months), 0),
		End:           first.Add(-time.Nanosecond),
		DeliveredOnly: f.DeliveredOnly,
	}, true
}

// Keep reports whether a row passes the filter.
func (f Filter) Keep(it models.SalesLineItem) bool {
	if f.DeliveredOnly && it.OrderStatus != models.StatusDelivered {
		return false
	}
	if f.Year != 0 {
		if it.Year != f.Year {
			return false
		}
		if f.Month != 0 && it.Month != f.Month {
			return false
		}
	}
	ts := it.PurchaseTimestamp
	if !f.Start.IsZero() && ts.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && ts.After(f.End) {
		return false
	}
	return true
}

// Apply returns the rows of rs that pass the filter.
func (f Filter) Apply(rs models.RecordSet) models.RecordSet {
	out := rs.Filter(f.Keep)
	log.Info().Int("records", out.Len()).Str("filters", f.String()).Msg("records filtered")
	return out
}

func (f Filter) String() string {
	var parts []string
	if f.DeliveredOnly {
		parts = append(parts, "delivered only")
	}
	if f.Year != 0 {
		parts = append(parts, fmt.Sprintf("year %d", f.Year))
		if f.Month != 0 {
			parts = append(parts, fmt.Sprintf("month %d", f.Month))
		}
	}
	if !f.Start.IsZero() {
		parts = append(parts, "from "+f.Start.Format(time.DateOnly))
	}
	if !f.End.IsZero() {
		parts = append(parts, "to "+f.End.Format(time.DateOnly))
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, ", ")
}
