// SPDX-License-Identifier: MIT

package threshold

import (
	"math"
	"slices"

	"github.com/katalvlaran/recurrence/distance"
	"github.com/katalvlaran/recurrence/internal/logging"
)

// Order-statistic search parameters.
const (
	// histogramBuckets is the fan-out of one refinement pass.
	histogramBuckets = 1 << 12

	// collectLimit is the largest candidate set materialised and sorted.
	collectLimit = 1 << 16
)

// selectKth returns the k-th smallest entry (1-based) of the multiset
// described by s, for 1 <= k <= s.count.
//
// Implementation:
//   - Non-negative float64 values order exactly like their IEEE-754 bit
//     patterns, so the search runs over integer keys in [bits(min), bits(max)].
//   - While the candidate range holds more than collectLimit entries, one
//     streaming pass histograms it into histogramBuckets equal key ranges
//     and narrows to the bucket holding rank k. Classification is integer
//     arithmetic, so no entry can fall between passes.
//   - The final candidates are collected and sorted.
//
// Complexity: at most ceil(63/12) histogram passes plus one collect pass,
// each O(N·M) time; memory O(histogramBuckets + collectLimit).
func selectKth(src distance.RowSource, o options, s summary, k int64) (float64, error) {
	lo, hi := math.Float64bits(s.min), math.Float64bits(s.max)
	rank, inRange := k, s.count
	passes := 0

	for lo < hi && inRange > collectLimit {
		width := (hi-lo)/histogramBuckets + 1
		cLo, cHi, cWidth := lo, hi, width // captured by the pass
		counts, err := reduce(src, o, reducer[[]int64]{
			zero: func() []int64 { return make([]int64, histogramBuckets) },
			add: func(acc *[]int64, vals []float64, w int64) {
				for _, v := range vals {
					if b := math.Float64bits(v); b >= cLo && b <= cHi {
						(*acc)[(b-cLo)/cWidth] += w
					}
				}
			},
			merge: func(dst, src *[]int64) {
				for i, c := range *src {
					(*dst)[i] += c
				}
			},
		})
		if err != nil {
			return 0, err
		}
		passes++

		var b int
		for b = 0; b < histogramBuckets-1 && rank > counts[b]; b++ {
			rank -= counts[b]
		}
		inRange = counts[b]
		lo += uint64(b) * width
		hi = min(lo+width-1, hi)
	}

	if lo == hi {
		logging.L().Debug("threshold: order statistic", "k", k, "passes", passes, "collected", 0)
		return math.Float64frombits(lo), nil
	}

	vals, err := collect(src, o, lo, hi)
	if err != nil {
		return 0, err
	}
	slices.Sort(vals)
	logging.L().Debug("threshold: order statistic", "k", k, "passes", passes, "collected", len(vals))

	return vals[rank-1], nil
}

// rateRank converts a rate into the 1-based rank of the cutoff entry:
// k = round(r × count), half away from zero. k == 0 means "no entry".
func rateRank(r float64, count int64) int64 {
	k := int64(math.Round(r * float64(count)))
	return min(max(k, 0), count)
}

// quantileRank returns the smallest k >= 1 with k >= q × count, the
// empirical quantile rule also used by gonum's stat.Quantile(stat.Empirical).
func quantileRank(q float64, count int64) int64 {
	k := int64(math.Ceil(q * float64(count)))
	return min(max(k, 1), count)
}

// belowMin returns a cutoff strictly below every entry >= m.
func belowMin(m float64) float64 {
	return math.Nextafter(m, math.Inf(-1))
}
