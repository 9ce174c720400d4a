package types

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number reports v as a float64 when it is a numeric value. Strings and
// booleans are not numbers here; see CoerceNumber for the looser form
// used by aggregation.
func Number(v MetricValue) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// CoerceNumber widens Number with the conversions aggregation relies on:
// booleans count as 1/0 and non-empty numeric strings parse. Anything
// else is excluded from numeric aggregation.
func CoerceNumber(v MetricValue) (float64, bool) {
	if f, ok := Number(v); ok {
		return f, true
	}
	switch n := v.(type) {
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Equal compares two metric values: numbers by numeric value, strings
// and booleans by identity. Mixed or unsupported kinds are unequal.
func Equal(a, b MetricValue) bool {
	if fa, ok := Number(a); ok {
		fb, ok := Number(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return false
}

// Format renders a metric value for explanations and diffs. Numbers use
// the shortest round-trip form, so 0.78 stays "0.78".
func Format(v MetricValue) string {
	if v == nil {
		return "null"
	}
	if f, ok := Number(v); ok {
		if f == math.Trunc(f) && math.Abs(f) < 1e21 {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	switch n := v.(type) {
	case string:
		return n
	case bool:
		return strconv.FormatBool(n)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "<unprintable>"
	}
	return string(b)
}
