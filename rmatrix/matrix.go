// SPDX-License-Identifier: MIT

package rmatrix

import (
	"fmt"
	"iter"
	"slices"
	"sync"
)

// Kind tells how a recurrence matrix was obtained.
type Kind int

const (
	kindInvalid Kind = iota
	// KindSelf compares a trajectory with itself.
	KindSelf
	// KindCross compares two trajectories.
	KindCross
	// KindJoint is the entrywise AND of two matrices of equal shape.
	KindJoint
)

// String returns "self", "cross" or "joint".
func (k Kind) String() string {
	switch k {
	case KindSelf:
		return "self"
	case KindCross:
		return "cross"
	case KindJoint:
		return "joint"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) valid() bool { return k >= KindSelf && k <= KindJoint }

// Coord is the position of one true entry.
type Coord struct {
	I, J int
}

const (
	opAt = "RecurrenceMatrix.At"
)

// RecurrenceMatrix is an immutable sparse boolean N×M matrix in compressed
// row form: row i holds the sorted columns colIdx[rowPtr[i]:rowPtr[i+1]].
//
// A symmetric matrix stores only its upper triangle (j >= i). Reads of the
// lower triangle are answered from the transposed upper part, built once on
// first need.
type RecurrenceMatrix struct {
	rows, cols int
	kind       Kind
	sym        bool
	rowPtr     []int
	colIdx     []int
	nnz        int

	lowerOnce sync.Once
	lowerPtr  []int // symmetric only: strict lower triangle, by row
	lowerIdx  []int
}

// newMatrix assembles a matrix from finished CSR slices.
func newMatrix(rows, cols int, kind Kind, sym bool, rowPtr, colIdx []int) *RecurrenceMatrix {
	m := &RecurrenceMatrix{rows: rows, cols: cols, kind: kind, sym: sym, rowPtr: rowPtr, colIdx: colIdx}
	m.nnz = len(colIdx)
	if sym {
		diag := 0
		for i := 0; i < rows; i++ {
			if r := m.stored(i); len(r) > 0 && r[0] == i {
				diag++
			}
		}
		m.nnz = 2*len(colIdx) - diag
	}
	return m
}

// Rows returns N.
func (m *RecurrenceMatrix) Rows() int { return m.rows }

// Cols returns M.
func (m *RecurrenceMatrix) Cols() int { return m.cols }

// Kind returns how the matrix was obtained.
func (m *RecurrenceMatrix) Kind() Kind { return m.kind }

// Symmetric reports whether the matrix is known to be symmetric and is
// stored as its upper triangle.
func (m *RecurrenceMatrix) Symmetric() bool { return m.sym }

// NNZ returns the number of true entries of the full matrix.
func (m *RecurrenceMatrix) NNZ() int { return m.nnz }

// stored returns the stored columns of row i (a view).
func (m *RecurrenceMatrix) stored(i int) []int {
	return m.colIdx[m.rowPtr[i]:m.rowPtr[i+1]]
}

// At reports whether entry (i, j) is true.
// Errors: ErrOutOfRange.
func (m *RecurrenceMatrix) At(i, j int) (bool, error) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return false, indexErrorf(opAt, i, j, ErrOutOfRange)
	}
	return m.has(i, j), nil
}

// Has reports whether entry (i, j) is true; out-of-range indices are false.
func (m *RecurrenceMatrix) Has(i, j int) bool {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return false
	}
	return m.has(i, j)
}

func (m *RecurrenceMatrix) has(i, j int) bool {
	if m.sym && j < i {
		i, j = j, i
	}
	_, ok := slices.BinarySearch(m.stored(i), j)
	return ok
}

// lower builds the strict lower triangle of a symmetric matrix: row i lists
// every r < i with (r, i) stored, ascending.
func (m *RecurrenceMatrix) lower() ([]int, []int) {
	m.lowerOnce.Do(func() {
		ptr := make([]int, m.rows+1)
		for r := 0; r < m.rows; r++ {
			for _, c := range m.stored(r) {
				if c > r {
					ptr[c+1]++
				}
			}
		}
		for i := 0; i < m.rows; i++ {
			ptr[i+1] += ptr[i]
		}
		idx := make([]int, ptr[m.rows])
		next := slices.Clone(ptr[:m.rows])
		for r := 0; r < m.rows; r++ {
			for _, c := range m.stored(r) {
				if c > r {
					idx[next[c]] = r
					next[c]++
				}
			}
		}
		m.lowerPtr, m.lowerIdx = ptr, idx
	})
	return m.lowerPtr, m.lowerIdx
}

// appendRow appends the sorted columns of full row i to dst.
func (m *RecurrenceMatrix) appendRow(dst []int, i int) []int {
	if m.sym {
		ptr, idx := m.lower()
		dst = append(dst, idx[ptr[i]:ptr[i+1]]...)
	}
	return append(dst, m.stored(i)...)
}

// Row returns the sorted true columns of row i, or nil when i is out of
// range. The slice is owned by the caller.
func (m *RecurrenceMatrix) Row(i int) []int {
	if i < 0 || i >= m.rows {
		return nil
	}
	return m.appendRow(nil, i)
}

// Col returns the sorted true rows of column j, or nil when j is out of
// range.
func (m *RecurrenceMatrix) Col(j int) []int {
	if j < 0 || j >= m.cols {
		return nil
	}
	if m.sym {
		return m.appendRow(nil, j)
	}
	var out []int
	for i := 0; i < m.rows; i++ {
		if _, ok := slices.BinarySearch(m.stored(i), j); ok {
			out = append(out, i)
		}
	}
	return out
}

// All yields every true entry (i, j) in row-major order. The sequence is
// restartable and yields the same order on every call.
func (m *RecurrenceMatrix) All() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		var buf []int
		for i := 0; i < m.rows; i++ {
			buf = m.appendRow(buf[:0], i)
			for _, j := range buf {
				if !yield(i, j) {
					return
				}
			}
		}
	}
}

// Coords returns every true entry in the order of All.
func (m *RecurrenceMatrix) Coords() []Coord {
	out := make([]Coord, 0, m.nnz)
	for i, j := range m.All() {
		out = append(out, Coord{I: i, J: j})
	}
	return out
}

// RecurrenceRate returns NNZ / (N·M), or 0 for an empty shape.
func (m *RecurrenceMatrix) RecurrenceRate() float64 {
	if m.rows == 0 || m.cols == 0 {
		return 0
	}
	return float64(m.nnz) / (float64(m.rows) * float64(m.cols))
}

// RowRates returns the fraction of true entries of every row.
func (m *RecurrenceMatrix) RowRates() []float64 {
	out := make([]float64, m.rows)
	if m.cols == 0 {
		return out
	}
	var lowerPtr []int
	if m.sym {
		lowerPtr, _ = m.lower()
	}
	for i := range out {
		n := m.rowPtr[i+1] - m.rowPtr[i]
		if lowerPtr != nil {
			n += lowerPtr[i+1] - lowerPtr[i]
		}
		out[i] = float64(n) / float64(m.cols)
	}
	return out
}

// Equal reports whether both matrices have the same shape and true
// entries. Kind and storage are not compared.
func (m *RecurrenceMatrix) Equal(other *RecurrenceMatrix) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if m.rows != other.rows || m.cols != other.cols || m.nnz != other.nnz {
		return false
	}
	var a, b []int
	for i := 0; i < m.rows; i++ {
		a, b = m.appendRow(a[:0], i), other.appendRow(b[:0], i)
		if !slices.Equal(a, b) {
			return false
		}
	}
	return true
}

// Diagonal returns diagonal offset δ = j − i as a 1-D sequence: element t is
// entry (i0+t, i0+t+δ) with i0 = max(0, −δ). Offsets without cells yield nil.
func (m *RecurrenceMatrix) Diagonal(offset int) []bool {
	i0 := max(0, -offset)
	n := min(m.rows-i0, m.cols-(i0+offset))
	if n <= 0 {
		return nil
	}
	out := make([]bool, n)
	for t := range out {
		out[t] = m.has(i0+t, i0+t+offset)
	}
	return out
}

// Dense expands the matrix into N rows of M booleans. Intended for small
// matrices and tests.
func (m *RecurrenceMatrix) Dense() [][]bool {
	out := make([][]bool, m.rows)
	for i := range out {
		out[i] = make([]bool, m.cols)
	}
	for i, j := range m.All() {
		out[i][j] = true
	}
	return out
}

// String renders a short summary, e.g. "self 4×4 nnz=8 (symmetric)".
func (m *RecurrenceMatrix) String() string {
	s := fmt.Sprintf("%s %d×%d nnz=%d", m.kind, m.rows, m.cols, m.nnz)
	if m.sym {
		s += " (symmetric)"
	}
	return s
}
