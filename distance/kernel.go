// SPDX-License-Identifier: MIT

package distance

import (
	"math"

	"github.com/katalvlaran/recurrence/metric"
	"github.com/katalvlaran/recurrence/trajectory"
)

// RowSource gives row-at-a-time access to an N×M distance matrix, either
// materialised (*Matrix) or computed on demand (*Stream). Consumers that only
// compare against a threshold never need more than one row in memory.
//
// Implementations are safe for concurrent use by multiple goroutines.
type RowSource interface {
	// Rows returns N, the number of points in the first cloud.
	Rows() int

	// Cols returns M, the number of points in the second cloud.
	Cols() int

	// Self reports whether both clouds are the same trajectory, in which
	// case the matrix is square and symmetric.
	Self() bool

	// RowRange writes D[i, from..M-1] into dst[:0] (growing it if needed)
	// and returns the filled slice. from == M yields an empty slice.
	RowRange(i, from int, dst []float64) ([]float64, error)
}

// kernel evaluates and validates single cells. It holds only read-only
// references, so one kernel is shared by all row workers.
type kernel struct {
	x, y     *trajectory.Trajectory
	m        metric.Metric
	self     bool
	trusted  bool
	checkSym bool
	eps      float64
	tag      string
}

// newKernel validates the inputs shared by every constructor.
func newKernel(tag string, x, y *trajectory.Trajectory, m metric.Metric, self bool, o options) (*kernel, error) {
	if x == nil || y == nil || m == nil {
		return nil, distanceErrorf(tag, ErrNilInput)
	}
	if !x.Compatible(y) {
		return nil, distanceErrorf(tag, ErrDimensionMismatch)
	}

	trusted := metric.Trusted(m)
	checkSym := false
	if self {
		switch o.symmetry {
		case symmetryOn:
			checkSym = true
		case symmetryAuto:
			checkSym = !trusted
		}
	}

	return &kernel{
		x:        x,
		y:        y,
		m:        m,
		self:     self,
		trusted:  trusted,
		checkSym: checkSym,
		eps:      o.eps,
		tag:      tag,
	}, nil
}

// cell returns the validated distance between x[i] and y[j].
func (k *kernel) cell(i, j int) (float64, error) {
	d := k.m.Distance(k.x.Point(i), k.y.Point(j))
	if math.IsNaN(d) || (!k.trusted && d < 0) {
		return 0, cellErrorf(k.tag, i, j, d, ErrInvalidMetric)
	}
	if k.checkSym && i != j {
		r := k.m.Distance(k.y.Point(j), k.x.Point(i))
		scale := math.Max(1, math.Max(math.Abs(d), math.Abs(r)))
		if math.IsNaN(r) || math.Abs(d-r) > k.eps*scale {
			return 0, cellErrorf(k.tag, i, j, d, ErrInvalidMetric)
		}
	}
	return d, nil
}

// fill writes D[i, from..cols-1] into dst, which must have the right length.
func (k *kernel) fill(i, from int, dst []float64) error {
	var err error
	for j := range dst {
		if dst[j], err = k.cell(i, from+j); err != nil {
			return err
		}
	}
	return nil
}

// grow returns dst resized to n, reusing its backing array when possible.
func grow(dst []float64, n int) []float64 {
	if cap(dst) < n {
		return make([]float64, n)
	}
	return dst[:n]
}
