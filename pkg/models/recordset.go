package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RecordSet is an immutable collection of sales line items plus the optional
// columns it carries. Calculators only read it; every filter returns a new set.
type RecordSet struct {
	items []SalesLineItem
	caps  Capabilities
}

// NewRecordSet validates and deep-copies items, so later changes to the input
// do not reach the set. A required-field violation fails fast.
func NewRecordSet(items []SalesLineItem, caps Capabilities) (RecordSet, error) {
	out := make([]SalesLineItem, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return RecordSet{}, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = it.clone()
	}
	return RecordSet{items: out, caps: caps}, nil
}

// Len returns the number of rows.
func (rs RecordSet) Len() int { return len(rs.items) }

// Capabilities returns the optional-column flags.
func (rs RecordSet) Capabilities() Capabilities { return rs.caps }

// At returns a deep copy of row i.
func (rs RecordSet) At(i int) SalesLineItem { return rs.items[i].clone() }

// Each calls fn with a deep copy of every row, in order.
func (rs RecordSet) Each(fn func(SalesLineItem)) {
	for _, it := range rs.items {
		fn(it.clone())
	}
}

// Filter returns a new set with the rows keep accepts. Capabilities carry over.
func (rs RecordSet) Filter(keep func(SalesLineItem) bool) RecordSet {
	out := make([]SalesLineItem, 0, len(rs.items))
	for _, it := range rs.items {
		if keep(it.clone()) {
			out = append(out, it)
		}
	}
	return RecordSet{items: out, caps: rs.caps}
}

// Sum adds a numeric field over all rows, skipping rows where it is missing.
func (rs RecordSet) Sum(f Field) decimal.Decimal {
	total := decimal.Zero
	for _, it := range rs.items {
		if v, ok := it.Measure(f); ok {
			total = total.Add(v)
		}
	}
	return total
}
