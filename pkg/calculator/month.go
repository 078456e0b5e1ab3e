package calculator

import (
	"fmt"
	"time"
)

// ParseMonth("MMYYYY") -> first day of the month, UTC.
func ParseMonth(mmyyyy string) (time.Time, error) {
	if len(mmyyyy) != 6 {
		return time.Time{}, fmt.Errorf("expected MMYYYY (e.g. 012025), got %q", mmyyyy)
	}
	for _, c := range mmyyyy {
		if c < '0' || c > '9' {
			return time.Time{}, fmt.Errorf("expected MMYYYY digits, got %q", mmyyyy)
		}
	}
	month := int(mmyyyy[0]-'0')*10 + int(mmyyyy[1]-'0')
	year := int(mmyyyy[2]-'0')*1000 + int(mmyyyy[3]-'0')*100 + int(mmyyyy[4]-'0')*10 + int(mmyyyy[5]-'0')
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month %d", month)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// MonthsBetweenInclusive lists the first day of every month from start to end.
func MonthsBetweenInclusive(start, end time.Time) []time.Time {
	cur := monthStart(start)
	last := monthStart(end)
	var out []time.Time
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// FormatMonth renders "MM/YYYY".
func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year())
}

// MonthEnd is the last instant of t's month.
func MonthEnd(t time.Time) time.Time {
	return monthStart(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// monthsSince is the calendar-month distance from `from` to `to`; the day of
// month plays no part.
func monthsSince(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func cohortLabel(t time.Time) string {
	return t.Format("2006-01")
}
