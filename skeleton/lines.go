// SPDX-License-Identifier: MIT

package skeleton

import (
	"cmp"
	"slices"
	"sync"

	"github.com/katalvlaran/recurrence/internal/parallel"
	"github.com/katalvlaran/recurrence/rmatrix"
)

const (
	opLines       = "Lines"
	opHistogram   = "Histogram"
	opDeterminism = "Determinism"
)

// Line is a maximal run of true entries (Start, Start+Offset),
// (Start+1, Start+1+Offset), ... of the given Length.
type Line struct {
	Offset int // j − i
	Start  int // first row
	Length int
}

// End returns the last row of the line.
func (l Line) End() int { return l.Start + l.Length - 1 }

// span returns the extent of the line along the main-diagonal direction,
// measured in i + j. Lines on neighbouring offsets run side by side iff
// their spans intersect.
func (l Line) span() (lo, hi int) {
	return 2*l.Start + l.Offset, 2*l.End() + l.Offset
}

// Cells returns the coordinates covered by the line.
func (l Line) Cells() []rmatrix.Coord {
	out := make([]rmatrix.Coord, l.Length)
	for t := range out {
		out[t] = rmatrix.Coord{I: l.Start + t, J: l.Start + t + l.Offset}
	}
	return out
}

func compareLines(a, b Line) int {
	if c := cmp.Compare(a.Offset, b.Offset); c != 0 {
		return c
	}
	return cmp.Compare(a.Start, b.Start)
}

// Lines returns every maximal diagonal line of m, ordered by offset then
// start. Any shape is accepted.
func Lines(m *rmatrix.RecurrenceMatrix, opts ...Option) ([]Line, error) {
	if m == nil {
		return nil, skeletonErrorf(opLines, ErrNilMatrix)
	}
	o := gatherOptions(opts)
	return detect(m, false, o.workers)
}

// detect finds line starts row by row in parallel: (i, j) starts a line iff
// (i−1, j−1) is false. With upperOnly only offsets >= 0 are scanned.
func detect(m *rmatrix.RecurrenceMatrix, upperOnly bool, workers int) ([]Line, error) {
	var (
		mu  sync.Mutex
		out []Line
	)
	err := parallel.ForRows(m.Rows(), workers, func(lo, hi int) error {
		var found []Line
		for i := lo; i < hi; i++ {
			for _, j := range m.Row(i) {
				if upperOnly && j < i {
					continue
				}
				if m.Has(i-1, j-1) {
					continue
				}
				n := 1
				for m.Has(i+n, j+n) {
					n++
				}
				found = append(found, Line{Offset: j - i, Start: i, Length: n})
			}
		}
		mu.Lock()
		out = append(out, found...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, compareLines)
	return out, nil
}

// hasLOI reports whether offset 0 of m is the line of identity, which
// carries no information about recurrent dynamics.
func hasLOI(m *rmatrix.RecurrenceMatrix) bool {
	return m.Kind() != rmatrix.KindCross && m.Rows() == m.Cols()
}

// Histogram counts diagonal lines by length. The line of identity of self
// and joint matrices is left out.
func Histogram(m *rmatrix.RecurrenceMatrix, opts ...Option) (map[int]int, error) {
	if m == nil {
		return nil, skeletonErrorf(opHistogram, ErrNilMatrix)
	}
	lines, err := Lines(m, opts...)
	if err != nil {
		return nil, skeletonErrorf(opHistogram, err)
	}
	skipLOI := hasLOI(m)
	out := make(map[int]int)
	for _, l := range lines {
		if skipLOI && l.Offset == 0 {
			continue
		}
		out[l.Length]++
	}
	return out, nil
}

// Determinism returns the fraction of recurrent points lying on diagonal
// lines of length >= lmin. The line of identity of self and joint matrices
// is left out of both counts. A matrix without such points yields 0.
//
// Errors: ErrNilMatrix, ErrInvalidMinLength.
func Determinism(m *rmatrix.RecurrenceMatrix, lmin int, opts ...Option) (float64, error) {
	if m == nil {
		return 0, skeletonErrorf(opDeterminism, ErrNilMatrix)
	}
	if lmin < 1 {
		return 0, skeletonErrorf(opDeterminism, ErrInvalidMinLength)
	}
	lines, err := Lines(m, opts...)
	if err != nil {
		return 0, skeletonErrorf(opDeterminism, err)
	}

	skipLOI := hasLOI(m)
	total, onLines := 0, 0
	for _, l := range lines {
		if skipLOI && l.Offset == 0 {
			continue
		}
		total += l.Length
		if l.Length >= lmin {
			onLines += l.Length
		}
	}
	if total == 0 {
		return 0, nil
	}
	return float64(onLines) / float64(total), nil
}
