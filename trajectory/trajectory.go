// SPDX-License-Identifier: MIT

// Package trajectory defines the point-cloud input of the recurrence engine:
// an ordered, immutable sequence of fixed-dimension points.
//
// Storage is a flat row-major buffer (offset = i*dim + k). Row order is
// meaningful: point i becomes row/column i of every derived matrix.
//
// Constructors copy their input, so later mutation of the caller's slices
// never leaks into a Trajectory.
package trajectory

import "math"

const (
	opNew        = "New"
	opFromFlat   = "FromFlat"
	opFromSeries = "FromSeries"
)

// Trajectory is an immutable sequence of n points of dimension dim.
// The zero value is an empty trajectory of dimension 0.
type Trajectory struct {
	n, dim int
	data   []float64 // len == n*dim
}

// New copies points into a Trajectory.
// An empty slice yields an empty trajectory of dimension 0.
//
// Errors: ErrZeroDimension for a zero-length point, ErrRagged for points of
// differing length, ErrNonFinite for NaN/±Inf coordinates.
//
// Complexity: O(n*dim).
func New(points [][]float64) (*Trajectory, error) {
	if len(points) == 0 {
		return &Trajectory{}, nil
	}
	dim := len(points[0])
	if dim == 0 {
		return nil, trajectoryErrorf(opNew, 0, ErrZeroDimension)
	}

	data := make([]float64, 0, len(points)*dim)
	for i, p := range points {
		if len(p) != dim {
			return nil, trajectoryErrorf(opNew, i, ErrRagged)
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, trajectoryErrorf(opNew, i, ErrNonFinite)
			}
		}
		data = append(data, p...)
	}

	return &Trajectory{n: len(points), dim: dim, data: data}, nil
}

// FromSeries builds a one-dimensional trajectory from a scalar series.
func FromSeries(xs []float64) (*Trajectory, error) {
	if len(xs) == 0 {
		return &Trajectory{dim: 1}, nil
	}
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, trajectoryErrorf(opFromSeries, i, ErrNonFinite)
		}
	}
	data := make([]float64, len(xs))
	copy(data, xs)

	return &Trajectory{n: len(xs), dim: 1, data: data}, nil
}

// FromFlat copies a row-major buffer of points with the given dimension.
func FromFlat(dim int, data []float64) (*Trajectory, error) {
	if dim < 1 {
		return nil, trajectoryErrorf(opFromFlat, 0, ErrZeroDimension)
	}
	if len(data)%dim != 0 {
		return nil, trajectoryErrorf(opFromFlat, len(data)/dim, ErrRagged)
	}
	for k, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, trajectoryErrorf(opFromFlat, k/dim, ErrNonFinite)
		}
	}
	buf := make([]float64, len(data))
	copy(buf, data)

	return &Trajectory{n: len(data) / dim, dim: dim, data: buf}, nil
}

// Len returns the number of points.
func (t *Trajectory) Len() int {
	if t == nil {
		return 0
	}
	return t.n
}

// Dim returns the point dimension (0 only for an empty trajectory built from
// an empty point list).
func (t *Trajectory) Dim() int {
	if t == nil {
		return 0
	}
	return t.dim
}

// Point returns a read-only view of point i. The slice aliases internal
// storage and has its capacity clipped; callers must not modify it.
// Panics if i is out of range, like slice indexing.
func (t *Trajectory) Point(i int) []float64 {
	lo := i * t.dim
	hi := lo + t.dim

	return t.data[lo:hi:hi]
}

// At returns a copy of point i.
func (t *Trajectory) At(i int) ([]float64, error) {
	if i < 0 || i >= t.Len() {
		return nil, trajectoryErrorf("At", i, ErrOutOfRange)
	}
	out := make([]float64, t.dim)
	copy(out, t.Point(i))

	return out, nil
}

// Points returns a deep copy of all points.
func (t *Trajectory) Points() [][]float64 {
	out := make([][]float64, t.Len())
	for i := range out {
		out[i] = make([]float64, t.dim)
		copy(out[i], t.Point(i))
	}

	return out
}

// Compatible reports whether two trajectories can be compared point-wise:
// equal dimensions, or at least one of them empty.
func (t *Trajectory) Compatible(other *Trajectory) bool {
	if t.Len() == 0 || other.Len() == 0 {
		return true
	}
	return t.Dim() == other.Dim()
}
