// SPDX-License-Identifier: MIT

package distance

import (
	"github.com/katalvlaran/recurrence/internal/logging"
	"github.com/katalvlaran/recurrence/internal/parallel"
	"github.com/katalvlaran/recurrence/metric"
	"github.com/katalvlaran/recurrence/trajectory"
	"gonum.org/v1/gonum/mat"
)

const (
	opPairwise     = "Pairwise"
	opPairwiseSelf = "PairwiseSelf"
	opAt           = "Matrix.At"
	opRowRange     = "Matrix.RowRange"
)

// Matrix is a fully materialised distance matrix.
//
// Self matrices are stored in a gonum *mat.SymDense: only the upper triangle
// (j >= i) is computed and written, reads of the lower triangle are mirrored.
// Cross matrices are stored in a row-major *mat.Dense.
// Zero-sized matrices carry no gonum storage (gonum rejects empty shapes).
type Matrix struct {
	rows, cols int
	self       bool
	sym        *mat.SymDense // self mode
	dense      *mat.Dense    // cross mode
}

var _ RowSource = (*Matrix)(nil)

// Pairwise computes D[i,j] = m.Distance(x[i], y[j]) for all i, j.
// When x and y are the same trajectory the symmetric path of PairwiseSelf
// is taken.
//
// Errors: ErrNilInput, ErrDimensionMismatch, ErrInvalidMetric.
//
// Complexity: O(N·M·D) time, O(N·M) memory; rows are filled in parallel.
func Pairwise(x, y *trajectory.Trajectory, m metric.Metric, opts ...Option) (*Matrix, error) {
	if x != nil && x == y {
		return PairwiseSelf(x, m, opts...)
	}
	o := gatherOptions(opts)
	k, err := newKernel(opPairwise, x, y, m, false, o)
	if err != nil {
		return nil, err
	}

	out := &Matrix{rows: x.Len(), cols: y.Len()}
	if out.rows == 0 || out.cols == 0 {
		return out, nil
	}
	out.dense = mat.NewDense(out.rows, out.cols, nil)

	err = parallel.ForRows(out.rows, o.workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := k.fill(i, 0, out.dense.RawRowView(i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.L().Debug("distance: pairwise", "rows", out.rows, "cols", out.cols, "metric", metric.Name(m))

	return out, nil
}

// PairwiseSelf computes the symmetric distance matrix of x against itself.
// Only the upper triangle including the diagonal is evaluated, halving the
// metric calls. Untrusted metrics are additionally checked for symmetry
// unless disabled with WithSymmetryCheck(false).
func PairwiseSelf(x *trajectory.Trajectory, m metric.Metric, opts ...Option) (*Matrix, error) {
	o := gatherOptions(opts)
	k, err := newKernel(opPairwiseSelf, x, x, m, true, o)
	if err != nil {
		return nil, err
	}

	n := x.Len()
	out := &Matrix{rows: n, cols: n, self: true}
	if n == 0 {
		return out, nil
	}
	out.sym = mat.NewSymDense(n, nil)
	raw := out.sym.RawSymmetric()

	// Row i owns data[i*stride+i : i*stride+n]; rows never overlap.
	err = parallel.ForRows(n, o.workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			base := i * raw.Stride
			if err := k.fill(i, i, raw.Data[base+i:base+n]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.L().Debug("distance: pairwise self", "n", n, "metric", metric.Name(m))

	return out, nil
}

// Rows returns N.
func (d *Matrix) Rows() int { return d.rows }

// Cols returns M.
func (d *Matrix) Cols() int { return d.cols }

// Self reports whether the matrix is a symmetric self-distance matrix.
func (d *Matrix) Self() bool { return d.self }

// At returns D[i,j] or ErrOutOfRange.
func (d *Matrix) At(i, j int) (float64, error) {
	if i < 0 || i >= d.rows || j < 0 || j >= d.cols {
		return 0, cellErrorf(opAt, i, j, 0, ErrOutOfRange)
	}
	if d.self {
		return d.sym.At(i, j), nil
	}
	return d.dense.At(i, j), nil
}

// Row returns a copy of row i.
func (d *Matrix) Row(i int) ([]float64, error) {
	return d.RowRange(i, 0, nil)
}

// RowRange implements RowSource. It copies; the matrix is never exposed.
func (d *Matrix) RowRange(i, from int, dst []float64) ([]float64, error) {
	if i < 0 || i >= d.rows || from < 0 || from > d.cols {
		return nil, cellErrorf(opRowRange, i, from, 0, ErrOutOfRange)
	}
	dst = grow(dst, d.cols-from)
	if len(dst) == 0 {
		return dst, nil
	}
	if !d.self {
		copy(dst, d.dense.RawRowView(i)[from:])
		return dst, nil
	}

	raw := d.sym.RawSymmetric()
	for j := from; j < d.cols; j++ {
		if j >= i {
			dst[j-from] = raw.Data[i*raw.Stride+j]
		} else {
			dst[j-from] = raw.Data[j*raw.Stride+i]
		}
	}
	return dst, nil
}

// Mat exposes the underlying gonum matrix for linear-algebra consumers
// (a mat.Symmetric for self matrices). It returns nil for empty matrices.
// The returned value aliases the storage and must be treated as read-only.
func (d *Matrix) Mat() mat.Matrix {
	switch {
	case d.sym != nil:
		return d.sym
	case d.dense != nil:
		return d.dense
	}
	return nil
}

// Transpose returns Dᵀ. Self matrices are symmetric and return themselves.
func (d *Matrix) Transpose() *Matrix {
	if d.self {
		return d
	}
	out := &Matrix{rows: d.cols, cols: d.rows}
	if d.dense != nil {
		out.dense = mat.DenseCopyOf(d.dense.T())
	}
	return out
}
