package calculator

import (
	"math"
	"sort"

	"ecommerce-kpi/pkg/models"
	"github.com/shopspring/decimal"
)

func mean(values []float64) models.NullFloat {
	if len(values) == 0 {
		return models.Undefined()
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return models.Defined(total / float64(len(values)))
}

func median(values []float64) models.NullFloat {
	n := len(values)
	if n == 0 {
		return models.Undefined()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return models.Defined(sorted[n/2])
	}
	return models.Defined((sorted[n/2-1] + sorted[n/2]) / 2)
}

// sampleStd is the standard deviation with n-1 in the denominator.
func sampleStd(values []float64) models.NullFloat {
	n := len(values)
	if n < 2 {
		return models.Undefined()
	}
	m := mean(values).Float64
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return models.Defined(math.Sqrt(ss / float64(n-1)))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func decimalRatio(num, den decimal.Decimal) models.NullFloat {
	if den.IsZero() {
		return models.Undefined()
	}
	return models.Defined(toFloat(num.Div(den)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
