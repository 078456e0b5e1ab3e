package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// NullFloat carries a statistic that may have no meaningful value (division by
// a zero denominator, statistic over zero rows). Same shape as sql.NullFloat64:
// Valid=false is the undefined marker and is never confused with a computed 0.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Defined wraps v. NaN and infinities are folded into Undefined.
func Defined(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{Float64: v, Valid: true}
}

// Undefined is the explicit "no meaningful value" marker.
func Undefined() NullFloat {
	return NullFloat{}
}

// Ratio returns num/den, undefined when den is zero.
func Ratio(num, den float64) NullFloat {
	if den == 0 {
		return Undefined()
	}
	return Defined(num / den)
}

// Change returns (current-previous)/previous, undefined when either side is
// undefined or previous is zero.
func Change(current, previous NullFloat) NullFloat {
	if !current.Valid || !previous.Valid {
		return Undefined()
	}
	return Ratio(current.Float64-previous.Float64, previous.Float64)
}

// Or returns the value, or def when undefined.
func (n NullFloat) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Float64
}

func (n NullFloat) String() string {
	if !n.Valid {
		return "undefined"
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}
