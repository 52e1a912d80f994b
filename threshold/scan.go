// SPDX-License-Identifier: MIT

package threshold

import (
	"math"
	"slices"
	"sync"

	"github.com/katalvlaran/recurrence/distance"
	"github.com/katalvlaran/recurrence/internal/parallel"
	"gonum.org/v1/gonum/floats"
)

// Entry multiset convention.
//
// Every statistic is taken over the entries of the FULL N×M matrix. A self
// source is scanned over its upper triangle only: the diagonal entry of a
// row has weight 1 (0 when excluded), each off-diagonal entry has weight 2
// because it stands for both D[i,j] and D[j,i]. Cross sources have weight 1
// everywhere.

// reducer folds weighted entries into a per-chunk state of type T. add
// receives a run of entries of one row sharing weight w.
type reducer[T any] struct {
	zero  func() T
	add   func(acc *T, vals []float64, w int64)
	merge func(dst, src *T)
}

// reduce runs r over every entry of src. Chunks are merged in row order, so
// results are deterministic for a given worker count.
func reduce[T any](src distance.RowSource, o options, r reducer[T]) (T, error) {
	type part struct {
		lo  int
		acc T
	}
	var (
		mu    sync.Mutex
		parts []part
	)
	self := src.Self()

	err := parallel.ForRows(src.Rows(), o.workers, func(lo, hi int) error {
		acc := r.zero()
		var buf []float64
		var err error
		for i := lo; i < hi; i++ {
			from := 0
			if self {
				from = i
			}
			if buf, err = src.RowRange(i, from, buf); err != nil {
				return err
			}
			if len(buf) == 0 {
				continue
			}
			for j := range buf {
				buf[j] = key(buf[j])
			}
			if !self {
				r.add(&acc, buf, 1)
				continue
			}
			if !o.excludeDiag {
				r.add(&acc, buf[:1], 1)
			}
			r.add(&acc, buf[1:], 2)
		}
		mu.Lock()
		parts = append(parts, part{lo: lo, acc: acc})
		mu.Unlock()
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	slices.SortFunc(parts, func(a, b part) int { return a.lo - b.lo })
	total := r.zero()
	for i := range parts {
		r.merge(&total, &parts[i].acc)
	}
	return total, nil
}

// key normalises -0 to +0 so that bit patterns of non-negative distances
// order exactly like their values.
func key(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

// summary holds the weighted count, sum and extrema of the entry multiset.
type summary struct {
	count    int64
	sum      float64
	min, max float64
}

var summaryReducer = reducer[summary]{
	zero: func() summary { return summary{min: math.Inf(1), max: math.Inf(-1)} },
	add: func(s *summary, vals []float64, w int64) {
		if len(vals) == 0 {
			return
		}
		s.count += w * int64(len(vals))
		s.sum += float64(w) * floats.Sum(vals)
		s.min = math.Min(s.min, floats.Min(vals))
		s.max = math.Max(s.max, floats.Max(vals))
	},
	merge: func(dst, src *summary) {
		dst.count += src.count
		dst.sum += src.sum
		dst.min = math.Min(dst.min, src.min)
		dst.max = math.Max(dst.max, src.max)
	},
}

// collect materialises the entries with bit keys in [lo, hi], repeating
// each value by its weight.
func collect(src distance.RowSource, o options, lo, hi uint64) ([]float64, error) {
	return reduce(src, o, reducer[[]float64]{
		zero: func() []float64 { return nil },
		add: func(acc *[]float64, vals []float64, w int64) {
			for _, v := range vals {
				if b := math.Float64bits(v); b < lo || b > hi {
					continue
				}
				for n := w; n > 0; n-- {
					*acc = append(*acc, v)
				}
			}
		},
		merge: func(dst, src *[]float64) { *dst = append(*dst, *src...) },
	})
}
