package source

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/evalgate/evalgate/pkg/types"
)

// passingStrings are the spellings a string cell may use to count as a
// pass for pass_rate/fail_rate, matched case-insensitively.
var passingStrings = map[string]bool{
	"success": true,
	"pass":    true,
	"passed":  true,
	"true":    true,
	"1":       true,
	"yes":     true,
	"ok":      true,
}

func applyFilter(rows []map[string]any, f *types.RowFilter) []map[string]any {
	if f == nil {
		return rows
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		v := row[f.Column]
		if f.Equals != nil && !types.Equal(v, f.Equals) {
			continue
		}
		if f.NotEquals != nil && types.Equal(v, f.NotEquals) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// columnValues collects the raw values of one column, keeping nulls but
// skipping rows where the column is absent entirely.
func columnValues(rows []map[string]any, column string) []any {
	values := make([]any, 0, len(rows))
	for _, row := range rows {
		if v, ok := row[column]; ok {
			values = append(values, v)
		}
	}
	return values
}

func aggregate(values []any, agg types.Aggregate) (types.MetricValue, error) {
	switch agg {
	case types.AggAvg:
		nums := numericValues(values)
		if len(nums) == 0 {
			return float64(0), nil
		}
		return sum(nums) / float64(len(nums)), nil
	case types.AggSum:
		return sum(numericValues(values)), nil
	case types.AggMin:
		nums := numericValues(values)
		if len(nums) == 0 {
			return float64(0), nil
		}
		m := nums[0]
		for _, f := range nums[1:] {
			m = math.Min(m, f)
		}
		return m, nil
	case types.AggMax:
		nums := numericValues(values)
		if len(nums) == 0 {
			return float64(0), nil
		}
		m := nums[0]
		for _, f := range nums[1:] {
			m = math.Max(m, f)
		}
		return m, nil
	case types.AggCount:
		n := 0
		for _, v := range values {
			if v != nil {
				n++
			}
		}
		return float64(n), nil
	case types.AggP50:
		return percentile(numericValues(values), 50), nil
	case types.AggP90:
		return percentile(numericValues(values), 90), nil
	case types.AggP95:
		return percentile(numericValues(values), 95), nil
	case types.AggP99:
		return percentile(numericValues(values), 99), nil
	case types.AggPassRate:
		return passRate(values), nil
	case types.AggFailRate:
		return 1 - passRate(values), nil
	case types.AggFirst:
		nums := numericValues(values)
		if len(nums) == 0 {
			return float64(0), nil
		}
		return nums[0], nil
	case types.AggLast:
		nums := numericValues(values)
		if len(nums) == 0 {
			return float64(0), nil
		}
		return nums[len(nums)-1], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAggregate, agg)
}

func numericValues(values []any) []float64 {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := types.CoerceNumber(v); ok {
			nums = append(nums, f)
		}
	}
	return nums
}

func sum(nums []float64) float64 {
	var total float64
	for _, f := range nums {
		total += f
	}
	return total
}

// percentile is nearest-rank: sort ascending and take the value at
// ceil(p/100*n)-1, clamped to zero.
func percentile(nums []float64, p float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// passRate counts passing values among non-null, non-empty ones:
// booleans by truth, numbers by being positive, strings by membership in
// passingStrings.
func passRate(values []any) float64 {
	total, passing := 0, 0
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		total++
		switch val := v.(type) {
		case bool:
			if val {
				passing++
			}
		case string:
			if passingStrings[strings.ToLower(strings.TrimSpace(val))] {
				passing++
			}
		default:
			if f, ok := types.Number(v); ok && f > 0 {
				passing++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(passing) / float64(total)
}
