// SPDX-License-Identifier: MIT

package distance

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch indicates point clouds of differing dimension.
	ErrDimensionMismatch = errors.New("distance: point dimension mismatch")

	// ErrInvalidMetric indicates the metric violated its contract: a negative
	// or NaN result, or an asymmetric result where symmetry is required.
	ErrInvalidMetric = errors.New("distance: metric contract violated")

	// ErrNilInput indicates a nil trajectory or metric.
	ErrNilInput = errors.New("distance: nil trajectory or metric")

	// ErrOutOfRange indicates a row, column or range start outside the matrix.
	ErrOutOfRange = errors.New("distance: index out of range")
)

// distanceErrorf tags err with the call site.
func distanceErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// cellErrorf tags err with the cell whose distance failed validation.
func cellErrorf(tag string, i, j int, d float64, err error) error {
	return fmt.Errorf("%s(%d,%d)=%v: %w", tag, i, j, d, err)
}
