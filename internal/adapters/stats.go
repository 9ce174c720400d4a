package adapters

import (
	"math"
	"sort"
)

func minOf(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	m := nums[0]
	for _, f := range nums[1:] {
		m = math.Min(m, f)
	}
	return m
}

func maxOf(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	m := nums[0]
	for _, f := range nums[1:] {
		m = math.Max(m, f)
	}
	return m
}

func mean(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	var total float64
	for _, f := range nums {
		total += f
	}
	return total / float64(len(nums))
}

// nearestRank matches the source normalizer's percentile method so the
// same data yields the same number either way in.
func nearestRank(nums []float64, p float64) float64 {
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
