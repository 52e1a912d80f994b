// SPDX-License-Identifier: MIT

package distance

import (
	"github.com/katalvlaran/recurrence/metric"
	"github.com/katalvlaran/recurrence/trajectory"
)

const (
	opNewStream     = "NewStream"
	opNewSelfStream = "NewSelfStream"
	opStreamRow     = "Stream.RowRange"
)

// Stream computes distance rows on demand instead of materialising the
// matrix. Peak memory is one row per consumer goroutine, O(M), which keeps
// tens of thousands of points tractable when only threshold comparisons are
// needed. Every RowRange call re-evaluates the metric.
//
// Metric contract violations surface from RowRange, not from the
// constructor, since no distance is evaluated up front.
type Stream struct {
	k          *kernel
	rows, cols int
}

var _ RowSource = (*Stream)(nil)

// NewStream prepares on-demand rows of D(x, y). Same-trajectory inputs are
// treated as self mode.
func NewStream(x, y *trajectory.Trajectory, m metric.Metric, opts ...Option) (*Stream, error) {
	if x != nil && x == y {
		return NewSelfStream(x, m, opts...)
	}
	k, err := newKernel(opNewStream, x, y, m, false, gatherOptions(opts))
	if err != nil {
		return nil, err
	}
	return &Stream{k: k, rows: x.Len(), cols: y.Len()}, nil
}

// NewSelfStream prepares on-demand rows of D(x, x).
func NewSelfStream(x *trajectory.Trajectory, m metric.Metric, opts ...Option) (*Stream, error) {
	k, err := newKernel(opNewSelfStream, x, x, m, true, gatherOptions(opts))
	if err != nil {
		return nil, err
	}
	return &Stream{k: k, rows: x.Len(), cols: x.Len()}, nil
}

// Rows returns N.
func (s *Stream) Rows() int { return s.rows }

// Cols returns M.
func (s *Stream) Cols() int { return s.cols }

// Self reports whether the stream compares a trajectory with itself.
func (s *Stream) Self() bool { return s.k.self }

// RowRange implements RowSource by evaluating the metric for each column.
func (s *Stream) RowRange(i, from int, dst []float64) ([]float64, error) {
	if i < 0 || i >= s.rows || from < 0 || from > s.cols {
		return nil, cellErrorf(opStreamRow, i, from, 0, ErrOutOfRange)
	}
	dst = grow(dst, s.cols-from)
	if err := s.k.fill(i, from, dst); err != nil {
		return nil, err
	}
	return dst, nil
}
