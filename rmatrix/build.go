// SPDX-License-Identifier: MIT

package rmatrix

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/katalvlaran/recurrence/distance"
	"github.com/katalvlaran/recurrence/internal/logging"
	"github.com/katalvlaran/recurrence/internal/parallel"
	"github.com/katalvlaran/recurrence/threshold"
)

const (
	opBuild      = "Build"
	opNew        = "New"
	opJoint      = "Joint"
	opFromCoords = "FromCoords"
	opFromDense  = "FromDense"
)

// Build applies a resolved cutoff to src: entry (i, j) is true iff
// D[i,j] <= thr.For(i), subject to the diagonal policy for self sources.
//
// Self sources with a scalar cutoff give a symmetric matrix of which only
// the upper triangle is evaluated and stored. Per-row cutoffs break the
// symmetry, so such self matrices are evaluated and stored in full.
// Rows are filled in parallel by disjoint row ranges and concatenated in
// row order.
//
// Errors: ErrNilSource, ErrThresholdLength, and any error surfaced by src.
func Build(src distance.RowSource, thr threshold.Resolved, opts ...Option) (*RecurrenceMatrix, error) {
	if src == nil {
		return nil, rmatrixErrorf(opBuild, ErrNilSource)
	}
	rows, cols := src.Rows(), src.Cols()
	if thr.IsPerRow() && thr.Len() != rows {
		return nil, rmatrixErrorf(opBuild, fmt.Errorf("%d cutoffs for %d rows: %w", thr.Len(), rows, ErrThresholdLength))
	}
	o := gatherOptions(opts)

	self := src.Self()
	sym := self && !thr.IsPerRow()
	kind := KindCross
	if self {
		kind = KindSelf
	}

	rowPtr, colIdx, err := assemble(rows, o.workers, func(c *chunkRows, lo, hi int) error {
		var (
			buf []float64
			err error
		)
		for i := lo; i < hi; i++ {
			from := 0
			if sym {
				from = i
			}
			if buf, err = src.RowRange(i, from, buf); err != nil {
				return err
			}
			eps := thr.For(i)
			for off, d := range buf {
				j := from + off
				hit := d <= eps
				if self && i == j {
					switch o.diagonal {
					case DiagonalInclude:
						hit = true
					case DiagonalExclude:
						hit = false
					}
				}
				if hit {
					c.cols = append(c.cols, j)
				}
			}
			c.endRow()
		}
		return nil
	})
	if err != nil {
		return nil, rmatrixErrorf(opBuild, err)
	}

	m := newMatrix(rows, cols, kind, sym, rowPtr, colIdx)
	logging.L().Debug("rmatrix: built", "kind", kind.String(), "rows", rows, "cols", cols,
		"nnz", m.nnz, "rate", m.RecurrenceRate(), "diagonal", o.diagonal.String())

	return m, nil
}

// New resolves spec against src and builds the matrix in one call.
// When the diagonal of a self matrix is forced (DiagonalInclude or
// DiagonalExclude) the diagonal is left out of the threshold statistics,
// so rates refer only to entries decided by distance. With DiagonalInclude
// the realised rate of an N×N matrix is therefore (round(r·(N²−N)) + N)/N²,
// above r by up to N/N² = 1/N; DiagonalExclude gives round(r·(N²−N))/N²,
// below r by up to 1/N.
func New(src distance.RowSource, spec threshold.Spec, opts ...Option) (*RecurrenceMatrix, error) {
	if src == nil {
		return nil, rmatrixErrorf(opNew, ErrNilSource)
	}
	o := gatherOptions(opts)
	thr, err := threshold.Resolve(spec, src,
		threshold.WithWorkers(o.workers),
		threshold.WithExcludeDiagonal(src.Self() && o.diagonal != DiagonalNatural),
	)
	if err != nil {
		return nil, rmatrixErrorf(opNew, err)
	}
	return Build(src, thr, opts...)
}

// Joint returns the entrywise AND of a and b. The result is symmetric iff
// both inputs are.
//
// Errors: ErrNilMatrix, ErrShapeMismatch.
func Joint(a, b *RecurrenceMatrix) (*RecurrenceMatrix, error) {
	if a == nil || b == nil {
		return nil, rmatrixErrorf(opJoint, ErrNilMatrix)
	}
	if a.rows != b.rows || a.cols != b.cols {
		return nil, rmatrixErrorf(opJoint, fmt.Errorf("%d×%d vs %d×%d: %w",
			a.rows, a.cols, b.rows, b.cols, ErrShapeMismatch))
	}
	sym := a.sym && b.sym

	rowPtr, colIdx, err := assemble(a.rows, DefaultWorkers, func(c *chunkRows, lo, hi int) error {
		var bufA, bufB []int
		for i := lo; i < hi; i++ {
			ra, rb := a.stored(i), b.stored(i)
			if !sym {
				bufA, bufB = a.appendRow(bufA[:0], i), b.appendRow(bufB[:0], i)
				ra, rb = bufA, bufB
			}
			c.cols = intersectSorted(c.cols, ra, rb)
			c.endRow()
		}
		return nil
	})
	if err != nil {
		return nil, rmatrixErrorf(opJoint, err)
	}

	m := newMatrix(a.rows, a.cols, KindJoint, sym, rowPtr, colIdx)
	logging.L().Debug("rmatrix: joint", "rows", m.rows, "cols", m.cols, "nnz", m.nnz)

	return m, nil
}

// intersectSorted appends the common elements of the ascending slices a
// and b to dst.
func intersectSorted(dst, a, b []int) []int {
	for x, y := 0, 0; x < len(a) && y < len(b); {
		switch {
		case a[x] < b[y]:
			x++
		case a[x] > b[y]:
			y++
		default:
			dst = append(dst, a[x])
			x++
			y++
		}
	}
	return dst
}

// FromCoords builds a matrix of the given shape whose true entries are
// coords. Duplicates are ignored. Self and joint matrices whose entry set
// is symmetric are stored as symmetric.
//
// Errors: ErrBadShape (negative dimensions, unknown kind, non-square self
// matrix), ErrOutOfRange (a coordinate outside the shape).
func FromCoords(rows, cols int, kind Kind, coords []Coord) (*RecurrenceMatrix, error) {
	if rows < 0 || cols < 0 || !kind.valid() || (kind == KindSelf && rows != cols) {
		return nil, rmatrixErrorf(opFromCoords, fmt.Errorf("%s %d×%d: %w", kind, rows, cols, ErrBadShape))
	}
	for _, c := range coords {
		if c.I < 0 || c.I >= rows || c.J < 0 || c.J >= cols {
			return nil, indexErrorf(opFromCoords, c.I, c.J, ErrOutOfRange)
		}
	}

	sorted := slices.Clone(coords)
	slices.SortFunc(sorted, func(a, b Coord) int {
		if c := cmp.Compare(a.I, b.I); c != 0 {
			return c
		}
		return cmp.Compare(a.J, b.J)
	})
	sorted = slices.Compact(sorted)

	rowPtr := make([]int, rows+1)
	colIdx := make([]int, len(sorted))
	for k, c := range sorted {
		rowPtr[c.I+1]++
		colIdx[k] = c.J
	}
	for i := 0; i < rows; i++ {
		rowPtr[i+1] += rowPtr[i]
	}

	full := newMatrix(rows, cols, kind, false, rowPtr, colIdx)
	if kind == KindCross || rows != cols || !full.isSymmetric() {
		return full, nil
	}
	return full.upper(), nil
}

// FromDense builds a matrix from N rows of M booleans; see FromCoords.
//
// Errors: ErrBadShape for ragged rows and the FromCoords errors.
func FromDense(d [][]bool, kind Kind) (*RecurrenceMatrix, error) {
	rows, cols := len(d), 0
	if rows > 0 {
		cols = len(d[0])
	}
	var coords []Coord
	for i, row := range d {
		if len(row) != cols {
			return nil, rmatrixErrorf(opFromDense, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), cols, ErrBadShape))
		}
		for j, v := range row {
			if v {
				coords = append(coords, Coord{I: i, J: j})
			}
		}
	}
	return FromCoords(rows, cols, kind, coords)
}

// isSymmetric reports whether every stored (i, j) has a stored (j, i).
// Only meaningful on fully stored square matrices.
func (m *RecurrenceMatrix) isSymmetric() bool {
	for i := 0; i < m.rows; i++ {
		for _, j := range m.stored(i) {
			if _, ok := slices.BinarySearch(m.stored(j), i); !ok {
				return false
			}
		}
	}
	return true
}

// upper converts a fully stored symmetric matrix to upper-triangle storage.
func (m *RecurrenceMatrix) upper() *RecurrenceMatrix {
	rowPtr := make([]int, 1, m.rows+1)
	colIdx := make([]int, 0, (m.nnz+m.rows)/2)
	for i := 0; i < m.rows; i++ {
		row := m.stored(i)
		k, _ := slices.BinarySearch(row, i)
		colIdx = append(colIdx, row[k:]...)
		rowPtr = append(rowPtr, len(colIdx))
	}
	return newMatrix(m.rows, m.cols, m.kind, true, rowPtr, colIdx)
}

// chunkRows holds the rows [lo, lo+len(ends)) produced by one worker.
type chunkRows struct {
	lo   int
	ends []int // ends[k] is len(cols) after row lo+k
	cols []int
}

func (c *chunkRows) endRow() { c.ends = append(c.ends, len(c.cols)) }

// assemble fills rows [0, rows) in parallel chunks and concatenates them in
// row order into CSR slices.
func assemble(rows, workers int, fill func(c *chunkRows, lo, hi int) error) ([]int, []int, error) {
	var (
		mu     sync.Mutex
		chunks []*chunkRows
	)
	err := parallel.ForRows(rows, workers, func(lo, hi int) error {
		c := &chunkRows{lo: lo, ends: make([]int, 0, hi-lo)}
		if err := fill(c, lo, hi); err != nil {
			return err
		}
		mu.Lock()
		chunks = append(chunks, c)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slices.SortFunc(chunks, func(a, b *chunkRows) int { return cmp.Compare(a.lo, b.lo) })
	total := 0
	for _, c := range chunks {
		total += len(c.cols)
	}
	rowPtr := make([]int, 1, rows+1)
	colIdx := make([]int, 0, total)
	for _, c := range chunks {
		base := len(colIdx)
		for _, e := range c.ends {
			rowPtr = append(rowPtr, base+e)
		}
		colIdx = append(colIdx, c.cols...)
	}
	return rowPtr, colIdx, nil
}
