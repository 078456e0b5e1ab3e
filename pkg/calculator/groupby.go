package calculator

import (
	"cmp"
	"slices"
	"sort"

	"ecommerce-kpi/pkg/models"
	"github.com/shopspring/decimal"
)

// aggregator names how a field collapses inside a group.
type aggregator int

const (
	aggSum      aggregator = iota // additive quantities
	aggCount                      // rows with a value
	aggDistinct                   // distinct identifiers
	aggMean                       // mean over rows with a value
)

// aggSpec is one output column of a grouping: name ← agg(field).
type aggSpec struct {
	name  string
	field models.Field
	agg   aggregator
}

func sumOf(name string, f models.Field) aggSpec      { return aggSpec{name, f, aggSum} }
func countOf(name string, f models.Field) aggSpec    { return aggSpec{name, f, aggCount} }
func distinctOf(name string, f models.Field) aggSpec { return aggSpec{name, f, aggDistinct} }
func meanOf(name string, f models.Field) aggSpec     { return aggSpec{name, f, aggMean} }

// specFor picks the aggregator a caller-supplied metric gets: distinct count for
// identifiers, sum otherwise.
func specFor(f models.Field) aggSpec {
	if f.IsIdentifier() {
		return distinctOf(string(f), f)
	}
	return sumOf(string(f), f)
}

// group is one key of a grouping with its aggregated columns.
type group struct {
	key    string
	rows   int
	sums   map[string]decimal.Decimal
	counts map[string]int
	means  map[string]models.NullFloat
}

func (g group) decimal(name string) decimal.Decimal { return g.sums[name] }
func (g group) count(name string) int               { return g.counts[name] }
func (g group) mean(name string) models.NullFloat   { return g.means[name] }

// value returns a column as float64 whatever its aggregator.
func (g group) value(s aggSpec) float64 {
	switch s.agg {
	case aggSum:
		return toFloat(g.sums[s.name])
	case aggMean:
		return g.means[s.name].Or(0)
	default:
		return float64(g.counts[s.name])
	}
}

type accumulator struct {
	rows     int
	sums     map[string]decimal.Decimal
	n        map[string]int
	distinct map[string]map[string]struct{}
}

// keyFunc maps a row to its group key; false drops the row from the grouping.
type keyFunc func(models.SalesLineItem) (string, bool)

// groupBy runs every spec over the rows of each key and returns groups sorted by key.
func groupBy(rs models.RecordSet, key keyFunc, specs []aggSpec) []group {
	accs := make(map[string]*accumulator)
	rs.Each(func(it models.SalesLineItem) {
		k, ok := key(it)
		if !ok {
			return
		}
		acc, exists := accs[k]
		if !exists {
			acc = &accumulator{
				sums:     make(map[string]decimal.Decimal),
				n:        make(map[string]int),
				distinct: make(map[string]map[string]struct{}),
			}
			accs[k] = acc
		}
		acc.rows++
		for _, s := range specs {
			switch s.agg {
			case aggDistinct:
				id, ok := it.Identifier(s.field)
				if !ok {
					continue
				}
				set := acc.distinct[s.name]
				if set == nil {
					set = make(map[string]struct{})
					acc.distinct[s.name] = set
				}
				set[id] = struct{}{}
			default:
				if s.agg == aggCount && s.field.IsIdentifier() {
					if _, ok := it.Identifier(s.field); ok {
						acc.n[s.name]++
					}
					continue
				}
				v, ok := it.Measure(s.field)
				if !ok {
					continue
				}
				acc.sums[s.name] = acc.sums[s.name].Add(v)
				acc.n[s.name]++
			}
		}
	})

	keys := make([]string, 0, len(accs))
	for k := range accs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]group, 0, len(keys))
	for _, k := range keys {
		acc := accs[k]
		g := group{
			key:    k,
			rows:   acc.rows,
			sums:   make(map[string]decimal.Decimal),
			counts: make(map[string]int),
			means:  make(map[string]models.NullFloat),
		}
		for _, s := range specs {
			switch s.agg {
			case aggSum:
				g.sums[s.name] = acc.sums[s.name]
			case aggCount:
				g.counts[s.name] = acc.n[s.name]
			case aggDistinct:
				g.counts[s.name] = len(acc.distinct[s.name])
			case aggMean:
				if n := acc.n[s.name]; n > 0 {
					g.means[s.name] = models.Defined(toFloat(acc.sums[s.name]) / float64(n))
				} else {
					g.means[s.name] = models.Undefined()
				}
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// topN sorts a copy of items by byValue (descending), breaks ties by name
// ascending and keeps the first n. n <= 0 keeps everything.
func topN[T any](items []T, n int, byValue func(a, b T) int, name func(T) string) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		if c := byValue(b, a); c != 0 {
			return c
		}
		return cmp.Compare(name(a), name(b))
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// optionalKey keys rows by an optional string column; rows without it are dropped.
func optionalKey(get func(models.SalesLineItem) *string) keyFunc {
	return func(it models.SalesLineItem) (string, bool) {
		v := get(it)
		if v == nil {
			return "", false
		}
		return *v, true
	}
}
