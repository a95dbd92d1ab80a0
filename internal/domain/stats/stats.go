// Package stats provides the shared statistics primitives used by the
// analytics and performance components.
//
// All helpers follow one contract: an empty input returns 0 instead of
// raising. Dashboards render before any data exists, so callers must treat
// 0 as "no data", not as a true zero latency or duration.
package stats

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile of values using the ceil-based
// nearest-rank rule: index = ceil(p/100 * n) - 1, clamped to [0, n-1].
// p is expected in [0, 100]. Empty input returns 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Mean returns the arithmetic mean of values. Empty input returns 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle element of the sorted values. For even-length
// input it takes the lower-middle element rather than interpolating; report
// consumers depend on this exact tie-break, so it must not change.
// Empty input returns 0.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)/2]
}

// Min returns the smallest value. Empty input returns 0.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value. Empty input returns 0.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// RoundPercent rounds a percentage to the nearest integer and clamps it to
// [0, 100] for report rendering.
func RoundPercent(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
